// storetest.Conformance is not run against this package: Connect assumes
// a reachable S3-compatible endpoint, which this test suite has no
// fixture for. These tests exercise the key-derivation logic directly
// instead.
package objectprovider

import "testing"

func TestKeyWithPrefix(t *testing.T) {
	p := New(Config{BucketName: "b", KeyPrefix: "/data/"})
	if got, want := p.key("users", "42"), "data/users/42.json"; got != want {
		t.Fatalf("key() = %q, want %q", got, want)
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	p := New(Config{BucketName: "b"})
	if got, want := p.key("users", "42"), "users/42.json"; got != want {
		t.Fatalf("key() = %q, want %q", got, want)
	}
}

func TestPrefixForCollection(t *testing.T) {
	p := New(Config{BucketName: "b", KeyPrefix: "data"})
	if got, want := p.prefix("users"), "data/users/"; got != want {
		t.Fatalf("prefix() = %q, want %q", got, want)
	}
}

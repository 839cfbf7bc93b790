// Package idgen generates the opaque string identifiers providers assign
// to documents created without a caller-supplied "id": a document with no
// id receives a freshly generated identifier before storage. This wraps
// google/uuid, the generator already used for id-assignment elsewhere in
// the wider dependency set this module draws on.
package idgen

import "github.com/google/uuid"

// New returns a freshly generated v4 UUID string.
func New() string {
	return uuid.NewString()
}

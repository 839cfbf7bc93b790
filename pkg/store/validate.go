package store

import "strings"

// ValidateCollection checks a collection name against spec §4.2: non-empty
// once trimmed, no path separators.
func ValidateCollection(op, name string) error {
	return validateName(op, "collection", name)
}

// ValidateID checks a document identifier against the same rule as a
// collection name.
func ValidateID(op, id string) error {
	return validateName(op, "id", id)
}

func validateName(op, kind, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Errorf(KindValidation, op, "%s must not be empty", kind)
	}
	if strings.ContainsAny(trimmed, "/\\") {
		return Errorf(KindValidation, op, "%s %q must not contain a path separator", kind, trimmed)
	}
	return nil
}

// ValidateConnected fails with Connection unless conn reports connected.
func ValidateConnected(op string, conn interface{ IsConnected() bool }) error {
	if !conn.IsConnected() {
		return Errorf(KindConnection, op, "provider is not connected")
	}
	return nil
}

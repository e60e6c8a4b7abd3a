// Package party models opaque party identifiers for the lease ledger.
//
// A party identifier names a landlord, tenant, governance authority, or
// collaborating service. Identifiers carry no internal structure; the ledger
// compares them by equality only.
package party

import "strings"

// Sentinel is the distinguished "unset" identifier. Governance collaborator
// addresses default to Sentinel until the authority configures them, and no
// setter accepts it as a value.
const Sentinel ID = "SP000000000000000000002Q6VF78"

// ID is an opaque, equality-comparable party identifier.
type ID string

// Parse trims surrounding whitespace and returns the identifier.
func Parse(raw string) ID {
	return ID(strings.TrimSpace(raw))
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// IsSentinel reports whether the identifier is the distinguished unset value.
func (id ID) IsSentinel() bool {
	return id == Sentinel
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}

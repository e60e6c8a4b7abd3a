// Package governance holds process-wide ledger configuration: the write-once
// authority, the creation fee, the registry capacity, and the collaborator
// addresses the state machine trusts for gated operations.
package governance

import (
	"sync"

	apperrors "github.com/openlease/leasehold/internal/errors"
	"github.com/openlease/leasehold/internal/ledger/party"
)

// Defaults applied when the process starts.
const (
	DefaultMaxLeases   = 10000
	DefaultCreationFee = 500
)

var (
	// ErrAuthorityNotSet indicates a gated mutation before any authority exists.
	ErrAuthorityNotSet = apperrors.New(apperrors.CodeGovernanceAuthorityNotSet, "no governance authority is configured")
	// ErrAuthorityAlreadySet indicates a second authority assignment.
	ErrAuthorityAlreadySet = apperrors.New(apperrors.CodeGovernanceAuthorityAlreadySet, "governance authority is already configured")
	// ErrSentinelAddress indicates an attempt to store the unset sentinel.
	ErrSentinelAddress = apperrors.New(apperrors.CodeNotAuthorized, "sentinel address is not assignable")
	// ErrInvalidFee indicates a negative creation fee.
	ErrInvalidFee = apperrors.New(apperrors.CodeGovernanceInvalidParameter, "creation fee must not be negative")
)

// Config is the mutable governance state. All reads and writes are linearized
// through an internal mutex so lease creation never observes a half-applied
// fee or authority change. The zero value is not usable; call New.
type Config struct {
	mu          sync.Mutex
	maxLeases   uint64
	creationFee int64
	authority   party.ID
	payment     party.ID
	escrow      party.ID
	verifier    party.ID
	arbiter     party.ID
}

// Snapshot is a consistent copy of the governance state.
type Snapshot struct {
	MaxLeases   uint64
	CreationFee int64
	Authority   party.ID
	Payment     party.ID
	Escrow      party.ID
	Verifier    party.ID
	Arbiter     party.ID
}

// New returns governance state with sentinel collaborator addresses, no
// authority, and the given capacity and fee. Non-positive arguments fall back
// to the defaults.
func New(maxLeases uint64, creationFee int64) *Config {
	if maxLeases == 0 {
		maxLeases = DefaultMaxLeases
	}
	if creationFee < 0 {
		creationFee = DefaultCreationFee
	}
	return &Config{
		maxLeases:   maxLeases,
		creationFee: creationFee,
		payment:     party.Sentinel,
		escrow:      party.Sentinel,
		verifier:    party.Sentinel,
		arbiter:     party.Sentinel,
	}
}

// SetAuthority records the authority address exactly once. The sentinel is
// rejected, and a second assignment fails.
func (c *Config) SetAuthority(addr party.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr.IsSentinel() {
		return ErrSentinelAddress
	}
	if !c.authority.IsZero() {
		return ErrAuthorityAlreadySet
	}
	c.authority = addr
	return nil
}

// SetCreationFee updates the fee charged on lease creation. The observed
// contract gates this only on an authority existing, not on caller identity.
func (c *Config) SetCreationFee(fee int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authority.IsZero() {
		return ErrAuthorityNotSet
	}
	if fee < 0 {
		return ErrInvalidFee
	}
	c.creationFee = fee
	return nil
}

// SetPaymentAddress updates the trusted payment collaborator.
func (c *Config) SetPaymentAddress(addr party.ID) error {
	return c.setCollaborator(&c.payment, addr)
}

// SetEscrowAddress updates the trusted escrow collaborator.
func (c *Config) SetEscrowAddress(addr party.ID) error {
	return c.setCollaborator(&c.escrow, addr)
}

// SetVerifierAddress updates the trusted verifier collaborator.
func (c *Config) SetVerifierAddress(addr party.ID) error {
	return c.setCollaborator(&c.verifier, addr)
}

// SetArbiterAddress updates the trusted arbiter collaborator.
func (c *Config) SetArbiterAddress(addr party.ID) error {
	return c.setCollaborator(&c.arbiter, addr)
}

func (c *Config) setCollaborator(target *party.ID, addr party.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authority.IsZero() {
		return ErrAuthorityNotSet
	}
	if addr.IsSentinel() {
		return ErrSentinelAddress
	}
	*target = addr
	return nil
}

// CreationTerms returns the authority, fee, and capacity in one consistent
// read, for use by lease creation.
func (c *Config) CreationTerms() (authority party.ID, fee int64, maxLeases uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authority, c.creationFee, c.maxLeases
}

// PaymentAddress returns the trusted payment collaborator.
func (c *Config) PaymentAddress() party.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payment
}

// EscrowAddress returns the trusted escrow collaborator.
func (c *Config) EscrowAddress() party.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.escrow
}

// VerifierAddress returns the trusted verifier collaborator.
func (c *Config) VerifierAddress() party.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifier
}

// ArbiterAddress returns the trusted arbiter collaborator.
func (c *Config) ArbiterAddress() party.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arbiter
}

// View returns a consistent snapshot of the governance state.
func (c *Config) View() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		MaxLeases:   c.maxLeases,
		CreationFee: c.creationFee,
		Authority:   c.authority,
		Payment:     c.payment,
		Escrow:      c.escrow,
		Verifier:    c.verifier,
		Arbiter:     c.arbiter,
	}
}

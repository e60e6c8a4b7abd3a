// Package engine implements the lease state machine and access-control rules.
//
// Every mutating operation reads the logical clock once, validates the caller
// and the targeted lease against governance state, and applies at most one
// atomic registry update. Failed calls leave the registry untouched.
package engine

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/openlease/leasehold/internal/errors"
	"github.com/openlease/leasehold/internal/ledger/clock"
	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/governance"
	"github.com/openlease/leasehold/internal/ledger/party"
	"github.com/openlease/leasehold/internal/ledger/storage"
)

// lockStripes bounds the per-lease mutex pool.
const lockStripes = 64

var (
	// ErrLeaseNotFound indicates the targeted lease does not exist.
	ErrLeaseNotFound = apperrors.New(apperrors.CodeLeaseNotFound, "lease not found")
	// ErrAmendmentNotFound indicates a lease has no amendment record.
	ErrAmendmentNotFound = apperrors.New(apperrors.CodeLeaseNotFound, "no amendment recorded for lease")
	// ErrMaxLeasesExceeded indicates the registry is at capacity.
	ErrMaxLeasesExceeded = apperrors.New(apperrors.CodeRegistryMaxLeasesExceeded, "lease registry is at capacity")
	// ErrIntegrationNotVerified indicates an integration checkpoint rejected
	// the caller.
	ErrIntegrationNotVerified = apperrors.New(apperrors.CodeIntegrationNotVerified, "caller is not a trusted integration")
)

// Transferrer moves the creation fee between two parties. The engine treats a
// successful call as an unconditional side effect performed exactly once per
// successful create.
type Transferrer interface {
	Transfer(ctx context.Context, amount int64, from, to party.ID) error
}

// Engine owns the lease registry and enforces every transition rule.
type Engine struct {
	store storage.RegistryStore
	gov   *governance.Config
	clock clock.Source
	fees  Transferrer

	// createMu linearizes id allocation against capacity reads.
	createMu sync.Mutex
	// stripes serialize writers of the same lease id.
	stripes [lockStripes]sync.Mutex
}

// New builds an engine over the given collaborators. All four are required.
func New(store storage.RegistryStore, gov *governance.Config, clk clock.Source, fees Transferrer) (*Engine, error) {
	if store == nil {
		return nil, errors.New("registry store is required")
	}
	if gov == nil {
		return nil, errors.New("governance config is required")
	}
	if clk == nil {
		return nil, errors.New("clock source is required")
	}
	if fees == nil {
		return nil, errors.New("fee transferrer is required")
	}
	return &Engine{store: store, gov: gov, clock: clk, fees: fees}, nil
}

func (e *Engine) leaseLock(id uint64) *sync.Mutex {
	return &e.stripes[id%lockStripes]
}

// Create validates a lease creation request, charges the creation fee, and
// stores the new pending lease. It returns the allocated lease id.
func (e *Engine) Create(ctx context.Context, caller party.ID, in domain.CreateLeaseInput) (uint64, error) {
	now := e.clock.Now()

	e.createMu.Lock()
	defer e.createMu.Unlock()

	nextID, err := e.store.LeaseCount(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageFailure, "count leases", err)
	}

	authority, fee, maxLeases := e.gov.CreationTerms()
	if nextID >= maxLeases {
		return 0, ErrMaxLeasesExceeded
	}
	if err := in.Validate(now, caller); err != nil {
		return 0, err
	}
	if authority.IsZero() {
		return 0, governance.ErrAuthorityNotSet
	}

	if err := e.fees.Transfer(ctx, fee, caller, authority); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageFailure, "transfer creation fee", err)
	}

	lease := domain.NewLease(nextID, in)
	if err := e.store.CreateLease(ctx, lease); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageFailure, "store lease", err)
	}
	return nextID, nil
}

// Activate moves a pending lease to active on behalf of the tenant.
func (e *Engine) Activate(ctx context.Context, caller party.ID, leaseID uint64) (domain.Lease, error) {
	now := e.clock.Now()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.Activate(caller, now)
	})
}

// End moves an active lease to ended on behalf of either party.
func (e *Engine) End(ctx context.Context, caller party.ID, leaseID uint64) (domain.Lease, error) {
	now := e.clock.Now()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.End(caller, now)
	})
}

// FileDispute moves an ended lease to disputed on behalf of the landlord.
func (e *Engine) FileDispute(ctx context.Context, caller party.ID, leaseID uint64) (domain.Lease, error) {
	now := e.clock.Now()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.FileDispute(caller, now)
	})
}

// ResolveDispute moves a disputed lease to a terminal resolution on behalf of
// the configured arbiter.
func (e *Engine) ResolveDispute(ctx context.Context, caller party.ID, leaseID uint64, outcome domain.LeaseState) (domain.Lease, error) {
	arbiter := e.gov.ArbiterAddress()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.ResolveDispute(caller, arbiter, outcome)
	})
}

// Renew extends an active lease near expiry on behalf of the tenant.
func (e *Engine) Renew(ctx context.Context, caller party.ID, leaseID uint64) (domain.Lease, error) {
	now := e.clock.Now()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.Renew(caller, now)
	})
}

// Update amends the duration and rent of a pending lease on behalf of the
// landlord, recording an amendment snapshot that replaces any prior one.
func (e *Engine) Update(ctx context.Context, caller party.ID, leaseID uint64, newDuration, newRent int64) (domain.Lease, error) {
	now := e.clock.Now()

	mu := e.leaseLock(leaseID)
	mu.Lock()
	defer mu.Unlock()

	lease, err := e.getLease(ctx, leaseID)
	if err != nil {
		return domain.Lease{}, err
	}
	update, err := lease.Amend(caller, now, newDuration, newRent)
	if err != nil {
		return domain.Lease{}, err
	}
	if err := e.store.AmendLease(ctx, lease, update); err != nil {
		return domain.Lease{}, apperrors.Wrap(apperrors.CodeStorageFailure, "store amendment", err)
	}
	return lease, nil
}

// RecordPayment stores a strictly increasing payment timestamp on behalf of
// the configured payment collaborator.
func (e *Engine) RecordPayment(ctx context.Context, caller party.ID, leaseID uint64, paymentTime int64) (domain.Lease, error) {
	paymentAddr := e.gov.PaymentAddress()
	return e.transition(ctx, leaseID, func(lease *domain.Lease) error {
		return lease.RecordPayment(caller, paymentAddr, paymentTime)
	})
}

// IntegrateWithEscrow is the authorization checkpoint the escrow collaborator
// calls before trusting a lease id. It mutates nothing.
func (e *Engine) IntegrateWithEscrow(ctx context.Context, caller party.ID, leaseID uint64) error {
	return e.integrationCheck(ctx, caller, leaseID, e.gov.EscrowAddress())
}

// IntegrateWithVerifier is the authorization checkpoint the verifier
// collaborator calls before trusting a lease id. It mutates nothing.
func (e *Engine) IntegrateWithVerifier(ctx context.Context, caller party.ID, leaseID uint64) error {
	return e.integrationCheck(ctx, caller, leaseID, e.gov.VerifierAddress())
}

func (e *Engine) integrationCheck(ctx context.Context, caller party.ID, leaseID uint64, trusted party.ID) error {
	if _, err := e.getLease(ctx, leaseID); err != nil {
		return err
	}
	if caller != trusted {
		return ErrIntegrationNotVerified
	}
	return nil
}

// GetLease returns the lease with the given id. No authorization check.
func (e *Engine) GetLease(ctx context.Context, leaseID uint64) (domain.Lease, error) {
	return e.getLease(ctx, leaseID)
}

// GetAmendment returns the latest amendment record for a lease.
func (e *Engine) GetAmendment(ctx context.Context, leaseID uint64) (domain.LeaseUpdate, error) {
	update, err := e.store.GetLeaseUpdate(ctx, leaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.LeaseUpdate{}, ErrAmendmentNotFound
		}
		return domain.LeaseUpdate{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get amendment", err)
	}
	return update, nil
}

// LeaseCount returns the id counter: the number of leases ever created.
func (e *Engine) LeaseCount(ctx context.Context) (uint64, error) {
	count, err := e.store.LeaseCount(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageFailure, "count leases", err)
	}
	return count, nil
}

// LeasesByLocation returns the ordered lease id sequence for a location.
func (e *Engine) LeasesByLocation(ctx context.Context, location string) ([]uint64, error) {
	ids, err := e.store.LeaseIDsByLocation(ctx, location)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "list leases by location", err)
	}
	return ids, nil
}

// Governance exposes the governance config for the configuration surface.
func (e *Engine) Governance() *governance.Config {
	return e.gov
}

// transition loads a lease, applies one domain transition to a copy, and
// persists the copy only when the transition succeeds.
func (e *Engine) transition(ctx context.Context, leaseID uint64, apply func(*domain.Lease) error) (domain.Lease, error) {
	mu := e.leaseLock(leaseID)
	mu.Lock()
	defer mu.Unlock()

	lease, err := e.getLease(ctx, leaseID)
	if err != nil {
		return domain.Lease{}, err
	}
	if err := apply(&lease); err != nil {
		return domain.Lease{}, err
	}
	if err := e.store.PutLease(ctx, lease); err != nil {
		return domain.Lease{}, apperrors.Wrap(apperrors.CodeStorageFailure, "store lease", err)
	}
	return lease, nil
}

func (e *Engine) getLease(ctx context.Context, leaseID uint64) (domain.Lease, error) {
	lease, err := e.store.GetLease(ctx, leaseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Lease{}, ErrLeaseNotFound
		}
		return domain.Lease{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get lease", err)
	}
	return lease, nil
}

// Package storage defines persistence contracts for the lease registry.
package storage

import (
	"context"
	"errors"

	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/party"
)

var (
	// ErrNotFound indicates a requested registry record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a lease id is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// FeeTransfer is one recorded fee movement between two parties.
type FeeTransfer struct {
	Amount int64
	From   party.ID
	To     party.ID
	At     int64
}

// RegistryStore owns all lease, amendment, and location-index records. Lease
// ids are dense and increasing from 0; the location index is append-only in
// creation order.
type RegistryStore interface {
	// CreateLease inserts a new lease and appends its id to the location
	// index in one atomic step.
	CreateLease(ctx context.Context, lease domain.Lease) error
	// GetLease returns the lease with the given id, or ErrNotFound.
	GetLease(ctx context.Context, id uint64) (domain.Lease, error)
	// PutLease overwrites an existing lease record.
	PutLease(ctx context.Context, lease domain.Lease) error
	// AmendLease overwrites the lease and its latest amendment record in one
	// atomic step.
	AmendLease(ctx context.Context, lease domain.Lease, update domain.LeaseUpdate) error
	// GetLeaseUpdate returns the latest amendment for a lease, or ErrNotFound.
	GetLeaseUpdate(ctx context.Context, id uint64) (domain.LeaseUpdate, error)
	// LeaseCount returns the number of stored leases, which equals the next
	// lease id.
	LeaseCount(ctx context.Context) (uint64, error)
	// LeaseIDsByLocation returns lease ids created at a location in creation
	// order. Unknown locations yield an empty slice.
	LeaseIDsByLocation(ctx context.Context, location string) ([]uint64, error)
}

// TransferLog records fee transfers executed by the ledger.
type TransferLog interface {
	// AppendTransfer records one executed fee transfer.
	AppendTransfer(ctx context.Context, transfer FeeTransfer) error
	// ListTransfers returns all recorded transfers in append order.
	ListTransfers(ctx context.Context) ([]FeeTransfer, error)
}

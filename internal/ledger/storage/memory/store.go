// Package memory provides an in-memory lease registry, used in tests and as
// the storage backend when no database path is configured.
package memory

import (
	"context"
	"sync"

	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/storage"
)

// Store keeps all registry records in process memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	leases      map[uint64]domain.Lease
	updates     map[uint64]domain.LeaseUpdate
	byLocation  map[string][]uint64
	transfers   []storage.FeeTransfer
	leaseCount  uint64
}

// New returns an empty in-memory registry.
func New() *Store {
	return &Store{
		leases:     make(map[uint64]domain.Lease),
		updates:    make(map[uint64]domain.LeaseUpdate),
		byLocation: make(map[string][]uint64),
	}
}

func cloneLease(lease domain.Lease) domain.Lease {
	if lease.EndTime != nil {
		end := *lease.EndTime
		lease.EndTime = &end
	}
	return lease
}

// CreateLease inserts a new lease and appends it to the location index.
func (s *Store) CreateLease(ctx context.Context, lease domain.Lease) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leases[lease.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.leases[lease.ID] = cloneLease(lease)
	s.byLocation[lease.Location] = append(s.byLocation[lease.Location], lease.ID)
	s.leaseCount++
	return nil
}

// GetLease returns the lease with the given id.
func (s *Store) GetLease(ctx context.Context, id uint64) (domain.Lease, error) {
	if err := ctx.Err(); err != nil {
		return domain.Lease{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	lease, ok := s.leases[id]
	if !ok {
		return domain.Lease{}, storage.ErrNotFound
	}
	return cloneLease(lease), nil
}

// PutLease overwrites an existing lease record.
func (s *Store) PutLease(ctx context.Context, lease domain.Lease) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leases[lease.ID]; !ok {
		return storage.ErrNotFound
	}
	s.leases[lease.ID] = cloneLease(lease)
	return nil
}

// AmendLease overwrites the lease and its amendment record atomically.
func (s *Store) AmendLease(ctx context.Context, lease domain.Lease, update domain.LeaseUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leases[lease.ID]; !ok {
		return storage.ErrNotFound
	}
	s.leases[lease.ID] = cloneLease(lease)
	s.updates[lease.ID] = update
	return nil
}

// GetLeaseUpdate returns the latest amendment for a lease.
func (s *Store) GetLeaseUpdate(ctx context.Context, id uint64) (domain.LeaseUpdate, error) {
	if err := ctx.Err(); err != nil {
		return domain.LeaseUpdate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	update, ok := s.updates[id]
	if !ok {
		return domain.LeaseUpdate{}, storage.ErrNotFound
	}
	return update, nil
}

// LeaseCount returns the number of stored leases.
func (s *Store) LeaseCount(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaseCount, nil
}

// LeaseIDsByLocation returns lease ids for a location in creation order.
func (s *Store) LeaseIDsByLocation(ctx context.Context, location string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byLocation[location]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out, nil
}

// AppendTransfer records one executed fee transfer.
func (s *Store) AppendTransfer(ctx context.Context, transfer storage.FeeTransfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, transfer)
	return nil
}

// ListTransfers returns all recorded transfers in append order.
func (s *Store) ListTransfers(ctx context.Context) ([]storage.FeeTransfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.FeeTransfer, len(s.transfers))
	copy(out, s.transfers)
	return out, nil
}

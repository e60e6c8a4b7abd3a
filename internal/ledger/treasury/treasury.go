// Package treasury executes creation-fee transfers and keeps an audit log of
// every movement.
package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlease/leasehold/internal/ledger/clock"
	"github.com/openlease/leasehold/internal/ledger/party"
	"github.com/openlease/leasehold/internal/ledger/storage"
)

// Ledger records fee transfers into a transfer log, stamped with the logical
// clock. A zero-amount transfer is a no-op and leaves no record.
type Ledger struct {
	log   storage.TransferLog
	clock clock.Source
}

// New builds a treasury ledger. Both collaborators are required.
func New(log storage.TransferLog, clk clock.Source) (*Ledger, error) {
	if log == nil {
		return nil, errors.New("transfer log is required")
	}
	if clk == nil {
		return nil, errors.New("clock source is required")
	}
	return &Ledger{log: log, clock: clk}, nil
}

// Transfer records one fee movement from one party to another. Negative
// amounts are rejected.
func (l *Ledger) Transfer(ctx context.Context, amount int64, from, to party.ID) error {
	if amount < 0 {
		return fmt.Errorf("transfer amount must not be negative, got %d", amount)
	}
	if amount == 0 {
		return nil
	}
	transfer := storage.FeeTransfer{
		Amount: amount,
		From:   from,
		To:     to,
		At:     l.clock.Now(),
	}
	if err := l.log.AppendTransfer(ctx, transfer); err != nil {
		return fmt.Errorf("append transfer: %w", err)
	}
	return nil
}

// Transfers returns the full audit log in append order.
func (l *Ledger) Transfers(ctx context.Context) ([]storage.FeeTransfer, error) {
	transfers, err := l.log.ListTransfers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, nil
}

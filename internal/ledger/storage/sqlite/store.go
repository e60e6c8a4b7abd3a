// Package sqlite provides a SQLite-backed lease registry implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/party"
	"github.com/openlease/leasehold/internal/ledger/storage"
	"github.com/openlease/leasehold/internal/ledger/storage/sqlite/migrations"
	"github.com/openlease/leasehold/internal/platform/storage/sqlitemigrate"
)

// Store persists lease registry state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite registry store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toNullInt(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func fromNullInt(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

const leaseColumns = `id, landlord, tenant, duration, rent_amount, deposit_amount,
	grace_period, start_time, state, lease_type, penalty_rate, max_renews,
	termination_fee, renewal_threshold, location, currency, last_payment_time,
	end_time, dispute_filed, renew_count`

// CreateLease inserts one lease record. The location index is derived from the
// leases table, so the insert itself is the atomic step.
func (s *Store) CreateLease(ctx context.Context, lease domain.Lease) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO leases (`+leaseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lease.ID,
		lease.Landlord.String(),
		lease.Tenant.String(),
		lease.Duration,
		lease.RentAmount,
		lease.DepositAmount,
		lease.GracePeriod,
		lease.StartTime,
		string(lease.State),
		string(lease.LeaseType),
		lease.PenaltyRate,
		lease.MaxRenews,
		lease.TerminationFee,
		lease.RenewalThreshold,
		lease.Location,
		string(lease.Currency),
		lease.LastPaymentTime,
		toNullInt(lease.EndTime),
		boolToInt(lease.DisputeFiled),
		lease.RenewCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create lease: %w", err)
	}
	return nil
}

// GetLease returns one lease by id.
func (s *Store) GetLease(ctx context.Context, id uint64) (domain.Lease, error) {
	if err := ctx.Err(); err != nil {
		return domain.Lease{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Lease{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = ?`, id)
	return scanLease(row)
}

// PutLease overwrites an existing lease record.
func (s *Store) PutLease(ctx context.Context, lease domain.Lease) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	result, err := s.updateLease(ctx, s.sqlDB, lease)
	if err != nil {
		return fmt.Errorf("put lease: %w", err)
	}
	return requireOneRow(result)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) updateLease(ctx context.Context, db execer, lease domain.Lease) (sql.Result, error) {
	return db.ExecContext(
		ctx,
		`UPDATE leases SET
			landlord = ?, tenant = ?, duration = ?, rent_amount = ?,
			deposit_amount = ?, grace_period = ?, start_time = ?, state = ?,
			lease_type = ?, penalty_rate = ?, max_renews = ?, termination_fee = ?,
			renewal_threshold = ?, location = ?, currency = ?, last_payment_time = ?,
			end_time = ?, dispute_filed = ?, renew_count = ?
		 WHERE id = ?`,
		lease.Landlord.String(),
		lease.Tenant.String(),
		lease.Duration,
		lease.RentAmount,
		lease.DepositAmount,
		lease.GracePeriod,
		lease.StartTime,
		string(lease.State),
		string(lease.LeaseType),
		lease.PenaltyRate,
		lease.MaxRenews,
		lease.TerminationFee,
		lease.RenewalThreshold,
		lease.Location,
		string(lease.Currency),
		lease.LastPaymentTime,
		toNullInt(lease.EndTime),
		boolToInt(lease.DisputeFiled),
		lease.RenewCount,
		lease.ID,
	)
}

// AmendLease overwrites the lease and its amendment record in one transaction.
func (s *Store) AmendLease(ctx context.Context, lease domain.Lease, update domain.LeaseUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin amendment: %w", err)
	}

	result, err := s.updateLease(ctx, tx, lease)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("amend lease: %w", err)
	}
	if err := requireOneRow(result); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO lease_updates (lease_id, duration, rent, updated_at, updater)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(lease_id) DO UPDATE SET
			duration = excluded.duration,
			rent = excluded.rent,
			updated_at = excluded.updated_at,
			updater = excluded.updater`,
		update.LeaseID,
		update.Duration,
		update.Rent,
		update.Timestamp,
		update.Updater.String(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record amendment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit amendment: %w", err)
	}
	return nil
}

// GetLeaseUpdate returns the latest amendment for a lease.
func (s *Store) GetLeaseUpdate(ctx context.Context, id uint64) (domain.LeaseUpdate, error) {
	if err := ctx.Err(); err != nil {
		return domain.LeaseUpdate{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.LeaseUpdate{}, fmt.Errorf("storage is not configured")
	}

	var (
		update  domain.LeaseUpdate
		updater string
	)
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT lease_id, duration, rent, updated_at, updater FROM lease_updates WHERE lease_id = ?`,
		id,
	)
	if err := row.Scan(&update.LeaseID, &update.Duration, &update.Rent, &update.Timestamp, &updater); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LeaseUpdate{}, storage.ErrNotFound
		}
		return domain.LeaseUpdate{}, fmt.Errorf("get lease update: %w", err)
	}
	update.Updater = party.ID(updater)
	return update, nil
}

// LeaseCount returns the number of stored leases.
func (s *Store) LeaseCount(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count uint64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leases`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count leases: %w", err)
	}
	return count, nil
}

// LeaseIDsByLocation returns lease ids for a location in creation order.
// Lease ids are dense and increasing, so id order is creation order.
func (s *Store) LeaseIDsByLocation(ctx context.Context, location string) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM leases WHERE location = ? ORDER BY id`, location)
	if err != nil {
		return nil, fmt.Errorf("list leases by location: %w", err)
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lease id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lease ids: %w", err)
	}
	return ids, nil
}

// AppendTransfer records one executed fee transfer.
func (s *Store) AppendTransfer(ctx context.Context, transfer storage.FeeTransfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO fee_transfers (amount, from_party, to_party, transferred_at) VALUES (?, ?, ?, ?)`,
		transfer.Amount,
		transfer.From.String(),
		transfer.To.String(),
		transfer.At,
	)
	if err != nil {
		return fmt.Errorf("append transfer: %w", err)
	}
	return nil
}

// ListTransfers returns all recorded transfers in append order.
func (s *Store) ListTransfers(ctx context.Context) ([]storage.FeeTransfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT amount, from_party, to_party, transferred_at FROM fee_transfers ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	transfers := []storage.FeeTransfer{}
	for rows.Next() {
		var (
			transfer storage.FeeTransfer
			from     string
			to       string
		)
		if err := rows.Scan(&transfer.Amount, &from, &to, &transfer.At); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfer.From = party.ID(from)
		transfer.To = party.ID(to)
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transfers: %w", err)
	}
	return transfers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLease(row rowScanner) (domain.Lease, error) {
	var (
		lease        domain.Lease
		landlord     string
		tenant       string
		state        string
		leaseType    string
		currency     string
		endTime      sql.NullInt64
		disputeFiled int
	)
	err := row.Scan(
		&lease.ID,
		&landlord,
		&tenant,
		&lease.Duration,
		&lease.RentAmount,
		&lease.DepositAmount,
		&lease.GracePeriod,
		&lease.StartTime,
		&state,
		&leaseType,
		&lease.PenaltyRate,
		&lease.MaxRenews,
		&lease.TerminationFee,
		&lease.RenewalThreshold,
		&lease.Location,
		&currency,
		&lease.LastPaymentTime,
		&endTime,
		&disputeFiled,
		&lease.RenewCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lease{}, storage.ErrNotFound
		}
		return domain.Lease{}, fmt.Errorf("scan lease: %w", err)
	}
	lease.Landlord = party.ID(landlord)
	lease.Tenant = party.ID(tenant)
	lease.State = domain.LeaseState(state)
	lease.LeaseType = domain.LeaseType(leaseType)
	lease.Currency = domain.Currency(currency)
	lease.EndTime = fromNullInt(endTime)
	lease.DisputeFiled = disputeFiled != 0
	return lease, nil
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

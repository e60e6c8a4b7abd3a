// Package domain models lease records and the transition rules of the lease
// ledger state machine.
package domain

import (
	apperrors "github.com/openlease/leasehold/internal/errors"
	"github.com/openlease/leasehold/internal/ledger/party"
)

// Field limits for lease records. Durations, grace periods, and thresholds are
// expressed in logical-time units.
const (
	MaxDuration         = 3650
	MaxGracePeriod      = 30
	MaxPenaltyRate      = 100
	MaxRenewals         = 10
	MaxRenewalThreshold = 100
	MaxLocationLength   = 100
)

// LeaseState is the lifecycle state of a lease.
type LeaseState string

const (
	// StatePending is the initial state of a created lease.
	StatePending LeaseState = "pending"
	// StateActive indicates a tenant-activated lease.
	StateActive LeaseState = "active"
	// StateEnded indicates a lease ended by either party after its term.
	StateEnded LeaseState = "ended"
	// StateDisputed indicates the landlord filed a dispute after the end.
	StateDisputed LeaseState = "disputed"
	// StateResolvedRefund is the terminal refund resolution.
	StateResolvedRefund LeaseState = "resolved-refund"
	// StateResolvedDeduct is the terminal deduct resolution.
	StateResolvedDeduct LeaseState = "resolved-deduct"
)

// Valid reports whether the state is one of the lifecycle states.
func (s LeaseState) Valid() bool {
	switch s {
	case StatePending, StateActive, StateEnded, StateDisputed, StateResolvedRefund, StateResolvedDeduct:
		return true
	}
	return false
}

// Terminal reports whether no operation can move the lease out of this state.
func (s LeaseState) Terminal() bool {
	return s == StateResolvedRefund || s == StateResolvedDeduct
}

// Resolution reports whether the state is a valid dispute outcome.
func (s LeaseState) Resolution() bool {
	return s == StateResolvedRefund || s == StateResolvedDeduct
}

// LeaseType categorizes the rental agreement.
type LeaseType string

const (
	// TypeResidential is a residential lease.
	TypeResidential LeaseType = "residential"
	// TypeCommercial is a commercial lease.
	TypeCommercial LeaseType = "commercial"
	// TypeShortTerm is a short-term lease.
	TypeShortTerm LeaseType = "short-term"
)

// Valid reports whether the lease type is in the allowed set.
func (t LeaseType) Valid() bool {
	switch t {
	case TypeResidential, TypeCommercial, TypeShortTerm:
		return true
	}
	return false
}

// Currency is the symbolic currency tag of a lease. No conversion logic exists.
type Currency string

const (
	// CurrencySTX tags a lease denominated in STX.
	CurrencySTX Currency = "STX"
	// CurrencyUSD tags a lease denominated in USD.
	CurrencyUSD Currency = "USD"
	// CurrencyBTC tags a lease denominated in BTC.
	CurrencyBTC Currency = "BTC"
)

// Valid reports whether the currency is in the allowed set.
func (c Currency) Valid() bool {
	switch c {
	case CurrencySTX, CurrencyUSD, CurrencyBTC:
		return true
	}
	return false
}

var (
	// ErrNotAuthorized indicates the caller may not perform the operation.
	ErrNotAuthorized = apperrors.New(apperrors.CodeNotAuthorized, "caller is not authorized for this operation")
	// ErrInvalidDuration indicates a duration outside (0, 3650].
	ErrInvalidDuration = apperrors.New(apperrors.CodeLeaseInvalidDuration, "duration must be between 1 and 3650 logical-time units")
	// ErrInvalidRent indicates a non-positive rent amount.
	ErrInvalidRent = apperrors.New(apperrors.CodeLeaseInvalidRent, "rent amount must be greater than zero")
	// ErrInvalidDeposit indicates a negative deposit amount.
	ErrInvalidDeposit = apperrors.New(apperrors.CodeLeaseInvalidDeposit, "deposit amount must not be negative")
	// ErrInvalidGracePeriod indicates a grace period above 30.
	ErrInvalidGracePeriod = apperrors.New(apperrors.CodeLeaseInvalidGracePeriod, "grace period must not exceed 30 logical-time units")
	// ErrInvalidStartTime indicates a start time before the current logical time,
	// or a payment timestamp that does not strictly increase.
	ErrInvalidStartTime = apperrors.New(apperrors.CodeLeaseInvalidStartTime, "start time must not be in the past")
	// ErrInvalidLeaseType indicates a lease type outside the allowed set.
	ErrInvalidLeaseType = apperrors.New(apperrors.CodeLeaseInvalidLeaseType, "lease type must be residential, commercial, or short-term")
	// ErrInvalidPenaltyRate indicates a penalty rate above 100 percent.
	ErrInvalidPenaltyRate = apperrors.New(apperrors.CodeLeaseInvalidPenaltyRate, "penalty rate must not exceed 100 percent")
	// ErrInvalidMaxRenews indicates a renewal cap above 10, or that the cap is
	// already reached when renewing.
	ErrInvalidMaxRenews = apperrors.New(apperrors.CodeLeaseInvalidMaxRenews, "max renewals must not exceed 10")
	// ErrInvalidTerminationFee indicates a negative termination fee.
	ErrInvalidTerminationFee = apperrors.New(apperrors.CodeLeaseInvalidTerminationFee, "termination fee must not be negative")
	// ErrInvalidRenewalThreshold indicates a threshold outside (0, 100], or that
	// renewal was attempted too far from expiry.
	ErrInvalidRenewalThreshold = apperrors.New(apperrors.CodeLeaseInvalidRenewalThreshold, "renewal threshold must be between 1 and 100 logical-time units")
	// ErrInvalidLocation indicates an empty or over-long location.
	ErrInvalidLocation = apperrors.New(apperrors.CodeLeaseInvalidLocation, "location must be a non-empty string of at most 100 characters")
	// ErrInvalidCurrency indicates a currency outside the allowed set.
	ErrInvalidCurrency = apperrors.New(apperrors.CodeLeaseInvalidCurrency, "currency must be STX, USD, or BTC")
	// ErrInvalidParty indicates the creator is not a neutral third party.
	ErrInvalidParty = apperrors.New(apperrors.CodeLeaseInvalidParty, "lease creator must differ from landlord and tenant")
	// ErrInvalidState indicates the lease state disallows the operation.
	ErrInvalidState = apperrors.New(apperrors.CodeLeaseInvalidState, "lease state does not allow this operation")
	// ErrLeaseExpired covers both temporal gates that reuse the expired signal:
	// ending a lease before its nominal end, and filing a dispute past the grace
	// window.
	ErrLeaseExpired = apperrors.New(apperrors.CodeLeaseExpired, "lease term boundary not satisfied")
	// ErrUpdateNotAllowed indicates an amendment on a non-pending lease.
	ErrUpdateNotAllowed = apperrors.New(apperrors.CodeLeaseUpdateNotAllowed, "amendments are only allowed before activation")
	// ErrDisputeAlreadyFiled indicates a second dispute filing.
	ErrDisputeAlreadyFiled = apperrors.New(apperrors.CodeDisputeAlreadyFiled, "a dispute was already filed for this lease")
	// ErrInvalidResolutionStatus indicates a dispute outcome outside the allowed set.
	ErrInvalidResolutionStatus = apperrors.New(apperrors.CodeLeaseInvalidResolutionStatus, "resolution must be resolved-refund or resolved-deduct")
)

// Lease is one rental agreement and its lifecycle state. Leases are identified
// by a dense, monotonically increasing integer id assigned at creation.
type Lease struct {
	ID               uint64
	Landlord         party.ID
	Tenant           party.ID
	Duration         int64
	RentAmount       int64
	DepositAmount    int64
	GracePeriod      int64
	StartTime        int64
	State            LeaseState
	LeaseType        LeaseType
	PenaltyRate      int64
	MaxRenews        int64
	TerminationFee   int64
	RenewalThreshold int64
	Location         string
	Currency         Currency
	LastPaymentTime  int64
	EndTime          *int64
	DisputeFiled     bool
	RenewCount       int64
}

// LeaseUpdate is the most recent amendment record for a lease. Each amendment
// overwrites the previous record.
type LeaseUpdate struct {
	LeaseID   uint64
	Duration  int64
	Rent      int64
	Timestamp int64
	Updater   party.ID
}

// CreateLeaseInput carries the parameters of a lease creation request.
type CreateLeaseInput struct {
	Landlord         party.ID
	Tenant           party.ID
	Duration         int64
	RentAmount       int64
	DepositAmount    int64
	GracePeriod      int64
	StartTime        int64
	LeaseType        LeaseType
	PenaltyRate      int64
	MaxRenews        int64
	TerminationFee   int64
	RenewalThreshold int64
	Location         string
	Currency         Currency
}

// Validate checks creation parameters in the canonical fail-fast order: the
// first violated rule determines the returned error. The capacity and
// authority gates that bracket this sequence live with the engine because they
// read registry and governance state.
func (in CreateLeaseInput) Validate(now int64, caller party.ID) error {
	if in.Duration <= 0 || in.Duration > MaxDuration {
		return ErrInvalidDuration
	}
	if in.RentAmount <= 0 {
		return ErrInvalidRent
	}
	if in.DepositAmount < 0 {
		return ErrInvalidDeposit
	}
	if in.GracePeriod > MaxGracePeriod {
		return ErrInvalidGracePeriod
	}
	if in.StartTime < now {
		return ErrInvalidStartTime
	}
	if !in.LeaseType.Valid() {
		return ErrInvalidLeaseType
	}
	if in.PenaltyRate > MaxPenaltyRate {
		return ErrInvalidPenaltyRate
	}
	if in.MaxRenews > MaxRenewals {
		return ErrInvalidMaxRenews
	}
	if in.TerminationFee < 0 {
		return ErrInvalidTerminationFee
	}
	if in.RenewalThreshold <= 0 || in.RenewalThreshold > MaxRenewalThreshold {
		return ErrInvalidRenewalThreshold
	}
	if in.Location == "" || len(in.Location) > MaxLocationLength {
		return ErrInvalidLocation
	}
	if !in.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if in.Landlord == caller || in.Tenant == caller {
		return ErrInvalidParty
	}
	return nil
}

// NewLease builds a pending lease from validated input.
func NewLease(id uint64, in CreateLeaseInput) Lease {
	return Lease{
		ID:               id,
		Landlord:         in.Landlord,
		Tenant:           in.Tenant,
		Duration:         in.Duration,
		RentAmount:       in.RentAmount,
		DepositAmount:    in.DepositAmount,
		GracePeriod:      in.GracePeriod,
		StartTime:        in.StartTime,
		State:            StatePending,
		LeaseType:        in.LeaseType,
		PenaltyRate:      in.PenaltyRate,
		MaxRenews:        in.MaxRenews,
		TerminationFee:   in.TerminationFee,
		RenewalThreshold: in.RenewalThreshold,
		Location:         in.Location,
		Currency:         in.Currency,
		LastPaymentTime:  0,
		EndTime:          nil,
		DisputeFiled:     false,
		RenewCount:       0,
	}
}

package domain

import "github.com/openlease/leasehold/internal/ledger/party"

// Transition methods mutate the receiver only when every gate passes, so a
// failed call leaves the lease unchanged. Callers are expected to work on a
// copy and persist it after a successful transition.

// Activate moves a pending lease to active. Only the tenant may activate, and
// only once the start time has been reached.
func (l *Lease) Activate(caller party.ID, now int64) error {
	if l.State != StatePending {
		return ErrInvalidState
	}
	if caller != l.Tenant {
		return ErrNotAuthorized
	}
	if now < l.StartTime {
		return ErrInvalidStartTime
	}
	end := l.StartTime + l.Duration
	l.State = StateActive
	l.LastPaymentTime = now
	l.EndTime = &end
	return nil
}

// End moves an active lease to ended once the nominal term has elapsed. Either
// party may end. The end time is overwritten with the actual end time.
//
// The "not yet reached" gate reuses the lease-expired signal; this overlap is
// part of the observable contract.
func (l *Lease) End(caller party.ID, now int64) error {
	if l.State != StateActive {
		return ErrInvalidState
	}
	if caller != l.Landlord && caller != l.Tenant {
		return ErrNotAuthorized
	}
	if now < l.StartTime+l.Duration {
		return ErrLeaseExpired
	}
	l.State = StateEnded
	l.EndTime = &now
	return nil
}

// FileDispute moves an ended lease to disputed. Only the landlord may file,
// at most once, and only within the grace window after the end time.
func (l *Lease) FileDispute(caller party.ID, now int64) error {
	if l.State != StateEnded {
		return ErrInvalidState
	}
	if caller != l.Landlord {
		return ErrNotAuthorized
	}
	if l.DisputeFiled {
		return ErrDisputeAlreadyFiled
	}
	if l.EndTime == nil {
		return ErrInvalidState
	}
	if now > *l.EndTime+l.GracePeriod {
		return ErrLeaseExpired
	}
	l.State = StateDisputed
	l.DisputeFiled = true
	return nil
}

// ResolveDispute moves a disputed lease to a terminal resolution. Only the
// configured arbiter may resolve.
func (l *Lease) ResolveDispute(caller, arbiter party.ID, outcome LeaseState) error {
	if l.State != StateDisputed {
		return ErrInvalidState
	}
	if caller != arbiter {
		return ErrNotAuthorized
	}
	if !outcome.Resolution() {
		return ErrInvalidResolutionStatus
	}
	l.State = outcome
	return nil
}

// Renew extends an active lease near expiry. Only the tenant may renew, up to
// the renewal cap, and only when no more than the renewal threshold remains
// before the end time. The duration doubles and the end time advances by the
// doubled duration.
func (l *Lease) Renew(caller party.ID, now int64) error {
	if l.State != StateActive {
		return ErrInvalidState
	}
	if caller != l.Tenant {
		return ErrNotAuthorized
	}
	if l.RenewCount >= l.MaxRenews {
		return ErrInvalidMaxRenews
	}
	if l.EndTime == nil {
		return ErrInvalidState
	}
	if *l.EndTime-now > l.RenewalThreshold {
		return ErrInvalidRenewalThreshold
	}
	l.Duration += l.Duration
	end := *l.EndTime + l.Duration
	l.EndTime = &end
	l.RenewCount++
	return nil
}

// Amend overwrites the duration and rent of a pending lease and returns the
// amendment record to persist. Only the landlord may amend.
func (l *Lease) Amend(caller party.ID, now, newDuration, newRent int64) (LeaseUpdate, error) {
	if l.State != StatePending {
		return LeaseUpdate{}, ErrUpdateNotAllowed
	}
	if caller != l.Landlord {
		return LeaseUpdate{}, ErrNotAuthorized
	}
	if newDuration <= 0 || newDuration > MaxDuration {
		return LeaseUpdate{}, ErrInvalidDuration
	}
	if newRent <= 0 {
		return LeaseUpdate{}, ErrInvalidRent
	}
	l.Duration = newDuration
	l.RentAmount = newRent
	return LeaseUpdate{
		LeaseID:   l.ID,
		Duration:  newDuration,
		Rent:      newRent,
		Timestamp: now,
		Updater:   caller,
	}, nil
}

// RecordPayment stores a strictly increasing payment timestamp on an active
// lease. Only the configured payment collaborator may record payments.
//
// A stale timestamp reuses the invalid-start-time signal; this overlap is part
// of the observable contract.
func (l *Lease) RecordPayment(caller, paymentAddr party.ID, paymentTime int64) error {
	if l.State != StateActive {
		return ErrInvalidState
	}
	if caller != paymentAddr {
		return ErrNotAuthorized
	}
	if paymentTime <= l.LastPaymentTime {
		return ErrInvalidStartTime
	}
	l.LastPaymentTime = paymentTime
	return nil
}

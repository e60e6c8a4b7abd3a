package domain

import (
	"errors"
	"testing"

	"github.com/openlease/leasehold/internal/ledger/party"
)

const (
	testArbiter = party.ID("ST5ARBITER")
	testPayment = party.ID("ST6PAYMENT")
)

func pendingLease() Lease {
	return NewLease(0, validInput())
}

func activeLease(t *testing.T) Lease {
	t.Helper()
	lease := pendingLease()
	if err := lease.Activate(testTenant, 10); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return lease
}

func endedLease(t *testing.T) Lease {
	t.Helper()
	lease := activeLease(t)
	if err := lease.End(testLandlord, 375); err != nil {
		t.Fatalf("end: %v", err)
	}
	return lease
}

func TestActivate(t *testing.T) {
	lease := pendingLease()
	if err := lease.Activate(testTenant, 10); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if lease.State != StateActive {
		t.Fatalf("expected active, got %s", lease.State)
	}
	if lease.LastPaymentTime != 10 {
		t.Fatalf("expected last payment time 10, got %d", lease.LastPaymentTime)
	}
	if lease.EndTime == nil || *lease.EndTime != 375 {
		t.Fatalf("expected end time 375, got %v", lease.EndTime)
	}
}

func TestActivateGates(t *testing.T) {
	t.Run("wrong state", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.Activate(testTenant, 10); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("wrong caller", func(t *testing.T) {
		lease := pendingLease()
		if err := lease.Activate(testLandlord, 10); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
	t.Run("before start", func(t *testing.T) {
		lease := pendingLease()
		if err := lease.Activate(testTenant, 9); !errors.Is(err, ErrInvalidStartTime) {
			t.Fatalf("expected invalid start time, got %v", err)
		}
		if lease.State != StatePending {
			t.Fatal("failed activation must not change state")
		}
	})
}

func TestEnd(t *testing.T) {
	for _, caller := range []party.ID{testLandlord, testTenant} {
		lease := activeLease(t)
		if err := lease.End(caller, 375); err != nil {
			t.Fatalf("end by %s: %v", caller, err)
		}
		if lease.State != StateEnded {
			t.Fatalf("expected ended, got %s", lease.State)
		}
		if lease.EndTime == nil || *lease.EndTime != 375 {
			t.Fatalf("expected actual end time 375, got %v", lease.EndTime)
		}
	}
}

func TestEndGates(t *testing.T) {
	t.Run("not active", func(t *testing.T) {
		lease := pendingLease()
		if err := lease.End(testLandlord, 400); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("third party", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.End(testCreator, 400); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
	t.Run("before nominal end reuses expired signal", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.End(testLandlord, 300); !errors.Is(err, ErrLeaseExpired) {
			t.Fatalf("expected lease expired signal, got %v", err)
		}
		if lease.State != StateActive {
			t.Fatal("failed end must not change state")
		}
	})
}

func TestEndOverwritesNominalEndTime(t *testing.T) {
	lease := activeLease(t)
	if err := lease.End(testTenant, 400); err != nil {
		t.Fatalf("end: %v", err)
	}
	if *lease.EndTime != 400 {
		t.Fatalf("expected end time overwritten to 400, got %d", *lease.EndTime)
	}
}

func TestFileDispute(t *testing.T) {
	lease := endedLease(t)
	if err := lease.FileDispute(testLandlord, 380); err != nil {
		t.Fatalf("file dispute: %v", err)
	}
	if lease.State != StateDisputed {
		t.Fatalf("expected disputed, got %s", lease.State)
	}
	if !lease.DisputeFiled {
		t.Fatal("expected dispute filed flag set")
	}
}

func TestFileDisputeGates(t *testing.T) {
	t.Run("not ended", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.FileDispute(testLandlord, 380); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("tenant cannot file", func(t *testing.T) {
		lease := endedLease(t)
		if err := lease.FileDispute(testTenant, 380); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
	t.Run("past grace window", func(t *testing.T) {
		// endTime=375, grace=7: 382 is the last filing time.
		lease := endedLease(t)
		if err := lease.FileDispute(testLandlord, 382); err != nil {
			t.Fatalf("filing at window edge: %v", err)
		}
		lease = endedLease(t)
		if err := lease.FileDispute(testLandlord, 383); !errors.Is(err, ErrLeaseExpired) {
			t.Fatalf("expected lease expired, got %v", err)
		}
	})
}

func TestResolveDispute(t *testing.T) {
	for _, outcome := range []LeaseState{StateResolvedRefund, StateResolvedDeduct} {
		lease := endedLease(t)
		if err := lease.FileDispute(testLandlord, 380); err != nil {
			t.Fatalf("file dispute: %v", err)
		}
		if err := lease.ResolveDispute(testArbiter, testArbiter, outcome); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if lease.State != outcome {
			t.Fatalf("expected %s, got %s", outcome, lease.State)
		}
	}
}

func TestResolveDisputeGates(t *testing.T) {
	disputed := func(t *testing.T) Lease {
		lease := endedLease(t)
		if err := lease.FileDispute(testLandlord, 380); err != nil {
			t.Fatalf("file dispute: %v", err)
		}
		return lease
	}
	t.Run("not disputed", func(t *testing.T) {
		lease := endedLease(t)
		if err := lease.ResolveDispute(testArbiter, testArbiter, StateResolvedRefund); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("not the arbiter", func(t *testing.T) {
		lease := disputed(t)
		if err := lease.ResolveDispute(testLandlord, testArbiter, StateResolvedRefund); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
	t.Run("bad outcome", func(t *testing.T) {
		lease := disputed(t)
		if err := lease.ResolveDispute(testArbiter, testArbiter, StateEnded); !errors.Is(err, ErrInvalidResolutionStatus) {
			t.Fatalf("expected invalid resolution, got %v", err)
		}
	})
}

func TestRenewDoublesDuration(t *testing.T) {
	lease := activeLease(t)
	// endTime=375, threshold=30: renew at 350 leaves 25 remaining.
	if err := lease.Renew(testTenant, 350); err != nil {
		t.Fatalf("renew: %v", err)
	}
	if lease.Duration != 730 {
		t.Fatalf("expected doubled duration 730, got %d", lease.Duration)
	}
	if *lease.EndTime != 1105 {
		t.Fatalf("expected end time 375+730=1105, got %d", *lease.EndTime)
	}
	if lease.RenewCount != 1 {
		t.Fatalf("expected renew count 1, got %d", lease.RenewCount)
	}
	if lease.State != StateActive {
		t.Fatalf("renewal must keep lease active, got %s", lease.State)
	}
}

func TestRenewBoundedByCap(t *testing.T) {
	lease := activeLease(t)
	lease.MaxRenews = 2
	if err := lease.Renew(testTenant, 350); err != nil {
		t.Fatalf("first renew: %v", err)
	}
	if err := lease.Renew(testTenant, *lease.EndTime-10); err != nil {
		t.Fatalf("second renew: %v", err)
	}
	if err := lease.Renew(testTenant, *lease.EndTime-10); !errors.Is(err, ErrInvalidMaxRenews) {
		t.Fatalf("expected renew cap error, got %v", err)
	}
	if lease.RenewCount != 2 {
		t.Fatalf("renew count must never exceed cap, got %d", lease.RenewCount)
	}
}

func TestRenewGates(t *testing.T) {
	t.Run("not active", func(t *testing.T) {
		lease := pendingLease()
		if err := lease.Renew(testTenant, 350); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("wrong caller", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.Renew(testLandlord, 350); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
	t.Run("too far from expiry", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.Renew(testTenant, 100); !errors.Is(err, ErrInvalidRenewalThreshold) {
			t.Fatalf("expected threshold error, got %v", err)
		}
	})
}

func TestAmend(t *testing.T) {
	lease := pendingLease()
	update, err := lease.Amend(testLandlord, 5, 400, 1200)
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if lease.Duration != 400 || lease.RentAmount != 1200 {
		t.Fatalf("expected amended fields, got duration=%d rent=%d", lease.Duration, lease.RentAmount)
	}
	if update.LeaseID != lease.ID || update.Duration != 400 || update.Rent != 1200 || update.Timestamp != 5 || update.Updater != testLandlord {
		t.Fatalf("unexpected amendment record: %+v", update)
	}
}

func TestAmendGates(t *testing.T) {
	tests := []struct {
		name     string
		lease    func(*testing.T) Lease
		caller   party.ID
		duration int64
		rent     int64
		want     error
	}{
		{"active lease", func(t *testing.T) Lease { return activeLease(t) }, testLandlord, 400, 1200, ErrUpdateNotAllowed},
		{"tenant cannot amend", func(*testing.T) Lease { return pendingLease() }, testTenant, 400, 1200, ErrNotAuthorized},
		{"zero duration", func(*testing.T) Lease { return pendingLease() }, testLandlord, 0, 1200, ErrInvalidDuration},
		{"duration above cap", func(*testing.T) Lease { return pendingLease() }, testLandlord, 3651, 1200, ErrInvalidDuration},
		{"zero rent", func(*testing.T) Lease { return pendingLease() }, testLandlord, 400, 0, ErrInvalidRent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease := tt.lease(t)
			if _, err := lease.Amend(tt.caller, 5, tt.duration, tt.rent); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRecordPayment(t *testing.T) {
	lease := activeLease(t)
	if err := lease.RecordPayment(testPayment, testPayment, 20); err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if lease.LastPaymentTime != 20 {
		t.Fatalf("expected last payment time 20, got %d", lease.LastPaymentTime)
	}
}

func TestRecordPaymentStrictlyIncreases(t *testing.T) {
	lease := activeLease(t)
	if err := lease.RecordPayment(testPayment, testPayment, 20); err != nil {
		t.Fatalf("record payment: %v", err)
	}
	for _, stale := range []int64{20, 15, 0} {
		if err := lease.RecordPayment(testPayment, testPayment, stale); !errors.Is(err, ErrInvalidStartTime) {
			t.Fatalf("expected stale timestamp rejection for %d, got %v", stale, err)
		}
	}
	if lease.LastPaymentTime != 20 {
		t.Fatalf("failed payment must leave record unchanged, got %d", lease.LastPaymentTime)
	}
}

func TestRecordPaymentGates(t *testing.T) {
	t.Run("not active", func(t *testing.T) {
		lease := pendingLease()
		if err := lease.RecordPayment(testPayment, testPayment, 20); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})
	t.Run("wrong caller", func(t *testing.T) {
		lease := activeLease(t)
		if err := lease.RecordPayment(testTenant, testPayment, 20); !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected not authorized, got %v", err)
		}
	})
}

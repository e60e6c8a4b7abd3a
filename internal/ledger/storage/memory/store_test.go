package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/storage"
)

func testLease(id uint64, location string) domain.Lease {
	return domain.NewLease(id, domain.CreateLeaseInput{
		Landlord:         "ST3LANDLORD",
		Tenant:           "ST4TENANT",
		Duration:         365,
		RentAmount:       1000,
		DepositAmount:    2000,
		GracePeriod:      7,
		StartTime:        10,
		LeaseType:        domain.TypeResidential,
		PenaltyRate:      5,
		MaxRenews:        2,
		TerminationFee:   500,
		RenewalThreshold: 30,
		Location:         location,
		Currency:         domain.CurrencySTX,
	})
}

func TestCreateAndGetLease(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateLease(ctx, testLease(0, "CityA")); err != nil {
		t.Fatalf("create lease: %v", err)
	}
	lease, err := store.GetLease(ctx, 0)
	if err != nil {
		t.Fatalf("get lease: %v", err)
	}
	if lease.Location != "CityA" || lease.State != domain.StatePending {
		t.Fatalf("unexpected lease: %+v", lease)
	}
}

func TestGetLeaseNotFound(t *testing.T) {
	store := New()
	if _, err := store.GetLease(context.Background(), 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateLeaseDuplicateID(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.CreateLease(ctx, testLease(0, "CityA")); err != nil {
		t.Fatalf("create lease: %v", err)
	}
	if err := store.CreateLease(ctx, testLease(0, "CityA")); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestPutLeaseRequiresExisting(t *testing.T) {
	store := New()
	if err := store.PutLease(context.Background(), testLease(3, "CityA")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPutLeaseOverwrites(t *testing.T) {
	store := New()
	ctx := context.Background()
	lease := testLease(0, "CityA")
	if err := store.CreateLease(ctx, lease); err != nil {
		t.Fatalf("create lease: %v", err)
	}
	lease.State = domain.StateActive
	end := int64(375)
	lease.EndTime = &end
	if err := store.PutLease(ctx, lease); err != nil {
		t.Fatalf("put lease: %v", err)
	}
	got, err := store.GetLease(ctx, 0)
	if err != nil {
		t.Fatalf("get lease: %v", err)
	}
	if got.State != domain.StateActive || got.EndTime == nil || *got.EndTime != 375 {
		t.Fatalf("unexpected lease after put: %+v", got)
	}
}

func TestGetLeaseReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	lease := testLease(0, "CityA")
	end := int64(375)
	lease.EndTime = &end
	if err := store.CreateLease(ctx, lease); err != nil {
		t.Fatalf("create lease: %v", err)
	}

	first, _ := store.GetLease(ctx, 0)
	*first.EndTime = 999

	second, _ := store.GetLease(ctx, 0)
	if *second.EndTime != 375 {
		t.Fatalf("store record must be isolated from caller mutation, got %d", *second.EndTime)
	}
}

func TestLeaseCount(t *testing.T) {
	store := New()
	ctx := context.Background()
	for i := uint64(0); i < 3; i++ {
		if err := store.CreateLease(ctx, testLease(i, "CityA")); err != nil {
			t.Fatalf("create lease %d: %v", i, err)
		}
	}
	count, err := store.LeaseCount(ctx)
	if err != nil {
		t.Fatalf("lease count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestLeaseIDsByLocationOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.CreateLease(ctx, testLease(0, "CityA")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateLease(ctx, testLease(1, "CityB")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateLease(ctx, testLease(2, "CityA")); err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := store.LeaseIDsByLocation(ctx, "CityA")
	if err != nil {
		t.Fatalf("by location: %v", err)
	}
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 2 {
		t.Fatalf("expected [0 2], got %v", ids)
	}

	empty, err := store.LeaseIDsByLocation(ctx, "Nowhere")
	if err != nil {
		t.Fatalf("by location: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty slice, got %v", empty)
	}
}

func TestAmendLease(t *testing.T) {
	store := New()
	ctx := context.Background()
	lease := testLease(0, "CityA")
	if err := store.CreateLease(ctx, lease); err != nil {
		t.Fatalf("create: %v", err)
	}

	lease.Duration = 400
	lease.RentAmount = 1200
	update := domain.LeaseUpdate{LeaseID: 0, Duration: 400, Rent: 1200, Timestamp: 5, Updater: "ST3LANDLORD"}
	if err := store.AmendLease(ctx, lease, update); err != nil {
		t.Fatalf("amend: %v", err)
	}

	got, err := store.GetLeaseUpdate(ctx, 0)
	if err != nil {
		t.Fatalf("get update: %v", err)
	}
	if got != update {
		t.Fatalf("unexpected update: %+v", got)
	}

	// A second amendment replaces the first.
	update2 := domain.LeaseUpdate{LeaseID: 0, Duration: 500, Rent: 1500, Timestamp: 8, Updater: "ST3LANDLORD"}
	if err := store.AmendLease(ctx, lease, update2); err != nil {
		t.Fatalf("second amend: %v", err)
	}
	got, _ = store.GetLeaseUpdate(ctx, 0)
	if got != update2 {
		t.Fatalf("expected replacement, got %+v", got)
	}
}

func TestGetLeaseUpdateNotFound(t *testing.T) {
	store := New()
	if _, err := store.GetLeaseUpdate(context.Background(), 0); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransferLog(t *testing.T) {
	store := New()
	ctx := context.Background()
	first := storage.FeeTransfer{Amount: 500, From: "ST1CREATOR", To: "ST2AUTH", At: 0}
	second := storage.FeeTransfer{Amount: 750, From: "ST9OTHER", To: "ST2AUTH", At: 4}
	if err := store.AppendTransfer(ctx, first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendTransfer(ctx, second); err != nil {
		t.Fatalf("append: %v", err)
	}
	transfers, err := store.ListTransfers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(transfers) != 2 || transfers[0] != first || transfers[1] != second {
		t.Fatalf("unexpected transfers: %+v", transfers)
	}
}

func TestContextCancellation(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.CreateLease(ctx, testLease(0, "CityA")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

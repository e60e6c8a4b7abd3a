package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/openlease/leasehold/internal/ledger/party"
)

const (
	testCreator  = party.ID("ST1CREATOR")
	testLandlord = party.ID("ST3LANDLORD")
	testTenant   = party.ID("ST4TENANT")
)

func validInput() CreateLeaseInput {
	return CreateLeaseInput{
		Landlord:         testLandlord,
		Tenant:           testTenant,
		Duration:         365,
		RentAmount:       1000,
		DepositAmount:    2000,
		GracePeriod:      7,
		StartTime:        10,
		LeaseType:        TypeResidential,
		PenaltyRate:      5,
		MaxRenews:        2,
		TerminationFee:   500,
		RenewalThreshold: 30,
		Location:         "CityA",
		Currency:         CurrencySTX,
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	if err := validInput().Validate(0, testCreator); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidateFailFastOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateLeaseInput)
		want   error
	}{
		{"zero duration", func(in *CreateLeaseInput) { in.Duration = 0 }, ErrInvalidDuration},
		{"duration above cap", func(in *CreateLeaseInput) { in.Duration = 3651 }, ErrInvalidDuration},
		{"zero rent", func(in *CreateLeaseInput) { in.RentAmount = 0 }, ErrInvalidRent},
		{"negative deposit", func(in *CreateLeaseInput) { in.DepositAmount = -1 }, ErrInvalidDeposit},
		{"grace above cap", func(in *CreateLeaseInput) { in.GracePeriod = 31 }, ErrInvalidGracePeriod},
		{"start in the past", func(in *CreateLeaseInput) { in.StartTime = -1 }, ErrInvalidStartTime},
		{"unknown lease type", func(in *CreateLeaseInput) { in.LeaseType = "houseboat" }, ErrInvalidLeaseType},
		{"penalty above 100", func(in *CreateLeaseInput) { in.PenaltyRate = 101 }, ErrInvalidPenaltyRate},
		{"renew cap above 10", func(in *CreateLeaseInput) { in.MaxRenews = 11 }, ErrInvalidMaxRenews},
		{"negative termination fee", func(in *CreateLeaseInput) { in.TerminationFee = -1 }, ErrInvalidTerminationFee},
		{"zero renewal threshold", func(in *CreateLeaseInput) { in.RenewalThreshold = 0 }, ErrInvalidRenewalThreshold},
		{"renewal threshold above 100", func(in *CreateLeaseInput) { in.RenewalThreshold = 101 }, ErrInvalidRenewalThreshold},
		{"empty location", func(in *CreateLeaseInput) { in.Location = "" }, ErrInvalidLocation},
		{"over-long location", func(in *CreateLeaseInput) { in.Location = strings.Repeat("x", 101) }, ErrInvalidLocation},
		{"unknown currency", func(in *CreateLeaseInput) { in.Currency = "EUR" }, ErrInvalidCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if err := in.Validate(0, testCreator); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateFirstViolatedRuleWins(t *testing.T) {
	in := validInput()
	in.Duration = 0
	in.RentAmount = 0
	in.Currency = "EUR"
	if err := in.Validate(0, testCreator); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected first violated rule (duration), got %v", err)
	}
}

func TestValidateRejectsSelfDealing(t *testing.T) {
	in := validInput()
	if err := in.Validate(0, testLandlord); !errors.Is(err, ErrInvalidParty) {
		t.Fatalf("expected invalid party for landlord caller, got %v", err)
	}
	if err := in.Validate(0, testTenant); !errors.Is(err, ErrInvalidParty) {
		t.Fatalf("expected invalid party for tenant caller, got %v", err)
	}
}

func TestValidateStartTimeAgainstClock(t *testing.T) {
	in := validInput()
	in.StartTime = 9
	if err := in.Validate(10, testCreator); !errors.Is(err, ErrInvalidStartTime) {
		t.Fatalf("expected invalid start time, got %v", err)
	}
	in.StartTime = 10
	if err := in.Validate(10, testCreator); err != nil {
		t.Fatalf("start time equal to now should be valid, got %v", err)
	}
}

func TestNewLeaseInitialState(t *testing.T) {
	lease := NewLease(7, validInput())
	if lease.ID != 7 {
		t.Fatalf("expected id 7, got %d", lease.ID)
	}
	if lease.State != StatePending {
		t.Fatalf("expected pending state, got %s", lease.State)
	}
	if lease.LastPaymentTime != 0 {
		t.Fatalf("expected zero last payment time, got %d", lease.LastPaymentTime)
	}
	if lease.EndTime != nil {
		t.Fatalf("expected nil end time, got %d", *lease.EndTime)
	}
	if lease.DisputeFiled {
		t.Fatal("expected dispute not filed")
	}
	if lease.RenewCount != 0 {
		t.Fatalf("expected zero renew count, got %d", lease.RenewCount)
	}
}

func TestLeaseStateSets(t *testing.T) {
	for _, s := range []LeaseState{StatePending, StateActive, StateEnded, StateDisputed, StateResolvedRefund, StateResolvedDeduct} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if LeaseState("limbo").Valid() {
		t.Fatal("expected unknown state to be invalid")
	}
	if !StateResolvedRefund.Terminal() || !StateResolvedDeduct.Terminal() {
		t.Fatal("expected resolutions to be terminal")
	}
	if StateEnded.Terminal() {
		t.Fatal("ended is quiescent, not terminal")
	}
	if !StateResolvedDeduct.Resolution() || StateDisputed.Resolution() {
		t.Fatal("resolution set mismatch")
	}
}

func TestLeaseTypeAndCurrencySets(t *testing.T) {
	for _, lt := range []LeaseType{TypeResidential, TypeCommercial, TypeShortTerm} {
		if !lt.Valid() {
			t.Fatalf("expected %s to be valid", lt)
		}
	}
	if LeaseType("industrial").Valid() {
		t.Fatal("expected unknown lease type to be invalid")
	}
	for _, c := range []Currency{CurrencySTX, CurrencyUSD, CurrencyBTC} {
		if !c.Valid() {
			t.Fatalf("expected %s to be valid", c)
		}
	}
	if Currency("EUR").Valid() {
		t.Fatal("expected unknown currency to be invalid")
	}
}

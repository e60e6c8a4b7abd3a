package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/openlease/leasehold/internal/errors"
	"github.com/openlease/leasehold/internal/ledger/domain"
	"github.com/openlease/leasehold/internal/ledger/party"
)

// CallerHeader carries the acting party identity on every mutating request.
const CallerHeader = "X-Leasehold-Caller"

type leaseResponse struct {
	ID               uint64 `json:"id"`
	Landlord         string `json:"landlord"`
	Tenant           string `json:"tenant"`
	Duration         int64  `json:"duration"`
	RentAmount       int64  `json:"rent_amount"`
	DepositAmount    int64  `json:"deposit_amount"`
	GracePeriod      int64  `json:"grace_period"`
	StartTime        int64  `json:"start_time"`
	State            string `json:"state"`
	LeaseType        string `json:"lease_type"`
	PenaltyRate      int64  `json:"penalty_rate"`
	MaxRenews        int64  `json:"max_renews"`
	TerminationFee   int64  `json:"termination_fee"`
	RenewalThreshold int64  `json:"renewal_threshold"`
	Location         string `json:"location"`
	Currency         string `json:"currency"`
	LastPaymentTime  int64  `json:"last_payment_time"`
	EndTime          *int64 `json:"end_time"`
	DisputeFiled     bool   `json:"dispute_filed"`
	RenewCount       int64  `json:"renew_count"`
}

func toLeaseResponse(lease domain.Lease) leaseResponse {
	return leaseResponse{
		ID:               lease.ID,
		Landlord:         lease.Landlord.String(),
		Tenant:           lease.Tenant.String(),
		Duration:         lease.Duration,
		RentAmount:       lease.RentAmount,
		DepositAmount:    lease.DepositAmount,
		GracePeriod:      lease.GracePeriod,
		StartTime:        lease.StartTime,
		State:            string(lease.State),
		LeaseType:        string(lease.LeaseType),
		PenaltyRate:      lease.PenaltyRate,
		MaxRenews:        lease.MaxRenews,
		TerminationFee:   lease.TerminationFee,
		RenewalThreshold: lease.RenewalThreshold,
		Location:         lease.Location,
		Currency:         string(lease.Currency),
		LastPaymentTime:  lease.LastPaymentTime,
		EndTime:          lease.EndTime,
		DisputeFiled:     lease.DisputeFiled,
		RenewCount:       lease.RenewCount,
	}
}

type amendmentResponse struct {
	LeaseID   uint64 `json:"lease_id"`
	Duration  int64  `json:"duration"`
	Rent      int64  `json:"rent"`
	Timestamp int64  `json:"timestamp"`
	Updater   string `json:"updater"`
}

// caller extracts the acting party from the request header.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (party.ID, bool) {
	caller := party.Parse(r.Header.Get(CallerHeader))
	if caller.IsZero() {
		s.writeInvalidRequest(w, r, "missing "+CallerHeader+" header")
		return "", false
	}
	return caller, true
}

func (s *Server) leaseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.writeInvalidRequest(w, r, "lease id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeInvalidRequest(w, r, "malformed request body")
		return false
	}
	return true
}

// recordOutcome tracks an operation outcome metric. Transport-level request
// problems are not ledger outcomes and are never recorded here.
func (s *Server) recordOutcome(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.GetCode(err))
	}
	s.metrics.RecordOperation(operation, outcome)
}

type createLeaseRequest struct {
	Landlord         string `json:"landlord"`
	Tenant           string `json:"tenant"`
	Duration         int64  `json:"duration"`
	RentAmount       int64  `json:"rent_amount"`
	DepositAmount    int64  `json:"deposit_amount"`
	GracePeriod      int64  `json:"grace_period"`
	StartTime        int64  `json:"start_time"`
	LeaseType        string `json:"lease_type"`
	PenaltyRate      int64  `json:"penalty_rate"`
	MaxRenews        int64  `json:"max_renews"`
	TerminationFee   int64  `json:"termination_fee"`
	RenewalThreshold int64  `json:"renewal_threshold"`
	Location         string `json:"location"`
	Currency         string `json:"currency"`
}

func (s *Server) createLease(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req createLeaseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	id, err := s.engine.Create(r.Context(), caller, domain.CreateLeaseInput{
		Landlord:         party.Parse(req.Landlord),
		Tenant:           party.Parse(req.Tenant),
		Duration:         req.Duration,
		RentAmount:       req.RentAmount,
		DepositAmount:    req.DepositAmount,
		GracePeriod:      req.GracePeriod,
		StartTime:        req.StartTime,
		LeaseType:        domain.LeaseType(req.LeaseType),
		PenaltyRate:      req.PenaltyRate,
		MaxRenews:        req.MaxRenews,
		TerminationFee:   req.TerminationFee,
		RenewalThreshold: req.RenewalThreshold,
		Location:         req.Location,
		Currency:         domain.Currency(req.Currency),
	})
	s.recordOutcome("create", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]uint64{"lease_id": id})
}

func (s *Server) getLease(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leaseID(w, r)
	if !ok {
		return
	}
	lease, err := s.engine.GetLease(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

func (s *Server) leaseCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.engine.LeaseCount(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (s *Server) leasesByLocation(w http.ResponseWriter, r *http.Request) {
	location := mux.Vars(r)["location"]
	ids, err := s.engine.LeasesByLocation(r.Context(), location)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"location":  location,
		"lease_ids": ids,
	})
}

// transitionHandler builds a handler for the single-step lease transitions.
func (s *Server) transitionHandler(operation string, apply func(r *http.Request, caller party.ID, id uint64) (domain.Lease, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := s.caller(w, r)
		if !ok {
			return
		}
		id, ok := s.leaseID(w, r)
		if !ok {
			return
		}
		lease, err := apply(r, caller, id)
		s.recordOutcome(operation, err)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, toLeaseResponse(lease))
	}
}

type resolveDisputeRequest struct {
	Outcome string `json:"outcome"`
}

func (s *Server) resolveDispute(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.leaseID(w, r)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	lease, err := s.engine.ResolveDispute(r.Context(), caller, id, domain.LeaseState(req.Outcome))
	s.recordOutcome("resolve_dispute", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

type amendLeaseRequest struct {
	Duration int64 `json:"duration"`
	Rent     int64 `json:"rent"`
}

func (s *Server) amendLease(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.leaseID(w, r)
	if !ok {
		return
	}
	var req amendLeaseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	lease, err := s.engine.Update(r.Context(), caller, id, req.Duration, req.Rent)
	s.recordOutcome("update", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

func (s *Server) getAmendment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.leaseID(w, r)
	if !ok {
		return
	}
	update, err := s.engine.GetAmendment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, amendmentResponse{
		LeaseID:   update.LeaseID,
		Duration:  update.Duration,
		Rent:      update.Rent,
		Timestamp: update.Timestamp,
		Updater:   update.Updater.String(),
	})
}

type recordPaymentRequest struct {
	PaymentTime int64 `json:"payment_time"`
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.leaseID(w, r)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	lease, err := s.engine.RecordPayment(r.Context(), caller, id, req.PaymentTime)
	s.recordOutcome("record_payment", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toLeaseResponse(lease))
}

// integrationHandler builds the escrow and verifier checkpoint handlers.
func (s *Server) integrationHandler(operation string, check func(r *http.Request, caller party.ID, id uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := s.caller(w, r)
		if !ok {
			return
		}
		id, ok := s.leaseID(w, r)
		if !ok {
			return
		}
		err := check(r, caller, id)
		s.recordOutcome(operation, err)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
	}
}

type setAddressRequest struct {
	Address string `json:"address"`
}

// addressHandler builds the governance address setter handlers.
func (s *Server) addressHandler(operation string, set func(addr party.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setAddressRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		addr := party.Parse(req.Address)
		if addr.IsZero() {
			s.writeInvalidRequest(w, r, "address is required")
			return
		}
		err := set(addr)
		s.recordOutcome(operation, err)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type setCreationFeeRequest struct {
	Fee int64 `json:"fee"`
}

func (s *Server) setCreationFee(w http.ResponseWriter, r *http.Request) {
	var req setCreationFeeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	err := s.engine.Governance().SetCreationFee(req.Fee)
	s.recordOutcome("set_creation_fee", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getGovernance(w http.ResponseWriter, r *http.Request) {
	view := s.engine.Governance().View()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"max_leases":       view.MaxLeases,
		"creation_fee":     view.CreationFee,
		"authority":        view.Authority.String(),
		"payment_address":  view.Payment.String(),
		"escrow_address":   view.Escrow.String(),
		"verifier_address": view.Verifier.String(),
		"arbiter_address":  view.Arbiter.String(),
	})
}

type advanceClockRequest struct {
	Delta int64 `json:"delta"`
}

func (s *Server) advanceClock(w http.ResponseWriter, r *http.Request) {
	var req advanceClockRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Delta < 0 {
		s.writeInvalidRequest(w, r, "delta must not be negative")
		return
	}
	s.clock.Advance(req.Delta)
	s.writeJSON(w, http.StatusOK, map[string]int64{"now": s.clock.Now()})
}

func (s *Server) getClock(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]int64{"now": s.clock.Now()})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

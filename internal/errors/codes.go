// Package errors provides structured, coded error handling for the lease ledger.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeNotAuthorized          Code = "NOT_AUTHORIZED"
	CodeIntegrationNotVerified Code = "INTEGRATION_NOT_VERIFIED"

	// Lease validation errors
	CodeLeaseInvalidDuration         Code = "LEASE_INVALID_DURATION"
	CodeLeaseInvalidRent             Code = "LEASE_INVALID_RENT"
	CodeLeaseInvalidDeposit          Code = "LEASE_INVALID_DEPOSIT"
	CodeLeaseInvalidGracePeriod      Code = "LEASE_INVALID_GRACE_PERIOD"
	CodeLeaseInvalidStartTime        Code = "LEASE_INVALID_START_TIME"
	CodeLeaseInvalidLeaseType        Code = "LEASE_INVALID_LEASE_TYPE"
	CodeLeaseInvalidPenaltyRate      Code = "LEASE_INVALID_PENALTY_RATE"
	CodeLeaseInvalidMaxRenews        Code = "LEASE_INVALID_MAX_RENEWS"
	CodeLeaseInvalidTerminationFee   Code = "LEASE_INVALID_TERMINATION_FEE"
	CodeLeaseInvalidRenewalThreshold Code = "LEASE_INVALID_RENEWAL_THRESHOLD"
	CodeLeaseInvalidLocation         Code = "LEASE_INVALID_LOCATION"
	CodeLeaseInvalidCurrency         Code = "LEASE_INVALID_CURRENCY"
	CodeLeaseInvalidParty            Code = "LEASE_INVALID_PARTY"
	CodeLeaseInvalidResolutionStatus Code = "LEASE_INVALID_RESOLUTION_STATUS"

	// Lease lifecycle errors
	CodeLeaseNotFound         Code = "LEASE_NOT_FOUND"
	CodeLeaseInvalidState     Code = "LEASE_INVALID_STATE"
	CodeLeaseExpired          Code = "LEASE_EXPIRED"
	CodeLeaseUpdateNotAllowed Code = "LEASE_UPDATE_NOT_ALLOWED"
	CodeDisputeAlreadyFiled   Code = "DISPUTE_ALREADY_FILED"

	// Registry errors
	CodeRegistryMaxLeasesExceeded Code = "REGISTRY_MAX_LEASES_EXCEEDED"

	// Governance errors
	CodeGovernanceAuthorityNotSet     Code = "GOVERNANCE_AUTHORITY_NOT_SET"
	CodeGovernanceAuthorityAlreadySet Code = "GOVERNANCE_AUTHORITY_ALREADY_SET"
	CodeGovernanceInvalidParameter    Code = "GOVERNANCE_INVALID_PARAMETER"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeLeaseInvalidDuration,
		CodeLeaseInvalidRent,
		CodeLeaseInvalidDeposit,
		CodeLeaseInvalidGracePeriod,
		CodeLeaseInvalidStartTime,
		CodeLeaseInvalidLeaseType,
		CodeLeaseInvalidPenaltyRate,
		CodeLeaseInvalidMaxRenews,
		CodeLeaseInvalidTerminationFee,
		CodeLeaseInvalidRenewalThreshold,
		CodeLeaseInvalidLocation,
		CodeLeaseInvalidCurrency,
		CodeLeaseInvalidParty,
		CodeLeaseInvalidResolutionStatus,
		CodeGovernanceInvalidParameter:
		return http.StatusBadRequest

	// Forbidden - caller identity rejected
	case CodeNotAuthorized,
		CodeIntegrationNotVerified:
		return http.StatusForbidden

	// Not found
	case CodeLeaseNotFound:
		return http.StatusNotFound

	// Conflict - state or temporal precondition not met
	case CodeLeaseInvalidState,
		CodeLeaseExpired,
		CodeLeaseUpdateNotAllowed,
		CodeDisputeAlreadyFiled,
		CodeRegistryMaxLeasesExceeded,
		CodeGovernanceAuthorityNotSet,
		CodeGovernanceAuthorityAlreadySet:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

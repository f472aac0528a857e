package auth

import (
	"errors"
	"fmt"

	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
)

// Reason is the internal cause of a rejected request. It is logged but never
// written to a response body.
type Reason int

const (
	ReasonMissingToken Reason = iota + 1
	ReasonInvalidToken
	ReasonTenantMismatch
	ReasonPrincipalNotFound
	ReasonNotOwner
	ReasonUpstreamUnavailable
	// ReasonTenantNotFound is an owner check against a tenant that does
	// not exist.
	ReasonTenantNotFound
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingToken:
		return "missing_token"
	case ReasonInvalidToken:
		return "invalid_signature_or_expiry"
	case ReasonTenantMismatch:
		return "tenant_mismatch"
	case ReasonPrincipalNotFound:
		return "principal_not_found"
	case ReasonNotOwner:
		return "not_owner"
	case ReasonUpstreamUnavailable:
		return "upstream_unavailable"
	case ReasonTenantNotFound:
		return "tenant_not_found"
	default:
		return "unknown"
	}
}

// Failure is returned by verifiers and by Chain.Authorize.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("auth: %s: %v", f.Reason, f.Err)
	}
	return "auth: " + f.Reason.String()
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(r Reason, err error) error {
	return &Failure{Reason: r, Err: err}
}

// ReasonOf extracts the Reason from err, zero if err is not an auth failure.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return 0
}

// classify turns any verifier or resolver error into the client facing
// error. Every token rejection shares one message.
func classify(err error) error {
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{Reason: ReasonUpstreamUnavailable, Err: err}
	}
	switch f.Reason {
	case ReasonUpstreamUnavailable:
		return &apperr.Error{Kind: apperr.KindInternal, Message: "Internal Server Error", Err: f}
	case ReasonTenantNotFound:
		return &apperr.Error{Kind: apperr.KindNotFound, Message: "Tenant not found", Err: f}
	}
	return &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Invalid token", Err: f}
}

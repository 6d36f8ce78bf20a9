//nolint:lll
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/state"
	"github.com/artmural/mural/storage"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 40010, 40011 and 40013 exist, 40012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound     = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody        = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedParam       = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed URL parameter")}
	ErrInsufficientFunds    = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("insufficient funds")}
	ErrInvalidRound         = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid round id")}
	ErrInvalidProposal      = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid proposal id")}
	ErrAlreadyVoted         = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already voted in this round")}
	ErrRoundNotRevealed     = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("round winner not revealed")}
	ErrRoundAlreadyRevealed = Error{Code: 40011, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("round winner already revealed")}
	ErrVoteMismatch         = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("vote does not match")}
	ErrAlreadyClaimed       = Error{Code: 40013, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("reward already claimed")}
	ErrInvalidAuthority     = Error{Code: 40014, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller is not the system authority")}
	ErrNothingToClaim       = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("nothing to claim")}
	ErrMaxProposalsReached  = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("maximum proposals per round reached")}
	ErrEscrowNotActive      = Error{Code: 40017, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("round escrow is not active")}
	ErrUnknownHandle        = Error{Code: 40018, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("unknown computation handle")}
	ErrComputationPending   = Error{Code: 40019, HTTPstatus: http.StatusGatewayTimeout, Err: fmt.Errorf("computation not finalized yet")}
	ErrNotInitialized       = Error{Code: 40020, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("system not initialized")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrComputationRejected        = Error{Code: 50003, HTTPstatus: http.StatusBadGateway, Err: fmt.Errorf("computation rejected by the cluster")}
)

// errorFrom maps a protocol error to its API error, defaulting to the
// generic server error for anything unrecognized.
func errorFrom(err error) Error {
	switch {
	case errors.Is(err, state.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, state.ErrInvalidRoundID):
		return ErrInvalidRound
	case errors.Is(err, state.ErrInvalidProposalID):
		return ErrInvalidProposal
	case errors.Is(err, state.ErrAlreadyVoted):
		return ErrAlreadyVoted
	case errors.Is(err, state.ErrRoundNotRevealed):
		return ErrRoundNotRevealed
	case errors.Is(err, state.ErrRoundAlreadyRevealed):
		return ErrRoundAlreadyRevealed
	case errors.Is(err, state.ErrVoteMismatch):
		return ErrVoteMismatch
	case errors.Is(err, state.ErrAlreadyClaimed):
		return ErrAlreadyClaimed
	case errors.Is(err, state.ErrInvalidAuthority):
		return ErrInvalidAuthority
	case errors.Is(err, state.ErrNothingToClaim):
		return ErrNothingToClaim
	case errors.Is(err, state.ErrMaxProposalsReached):
		return ErrMaxProposalsReached
	case errors.Is(err, state.ErrEscrowNotActive):
		return ErrEscrowNotActive
	case errors.Is(err, state.ErrNotInitialized):
		return ErrNotInitialized
	case errors.Is(err, mpc.ErrUnknownHandle):
		return ErrUnknownHandle
	case errors.Is(err, mpc.ErrComputationTimeout):
		return ErrComputationPending
	case errors.Is(err, mpc.ErrComputationAborted):
		return ErrComputationRejected
	case errors.Is(err, storage.ErrNotFound):
		return ErrResourceNotFound
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/types"
)

// awaitTimeout bounds how long the computation endpoint blocks before
// reporting the handle as still pending.
const awaitTimeout = 10 * time.Second

// revealWinner queues the winner reveal of the live round
// POST /rounds/reveal
func (a *API) revealWinner(w http.ResponseWriter, r *http.Request) {
	req := &RevealRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	authority, err := types.IdentityFromBytes(req.Authority)
	if err != nil {
		ErrMalformedBody.Withf("could not decode authority: %v", err).Write(w)
		return
	}
	handle, err := a.machine.RevealWinningProposal(authority)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &HandleResponse{Handle: handle.String()})
}

// createHistory archives the revealed round
// POST /rounds/history
func (a *API) createHistory(w http.ResponseWriter, r *http.Request) {
	req := &HistoryRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	caller, err := types.IdentityFromBytes(req.Caller)
	if err != nil {
		ErrMalformedBody.Withf("could not decode caller: %v", err).Write(w)
		return
	}
	hist, err := a.machine.CreateRoundHistory(req.Theme, caller)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, hist)
}

// roundHistory returns an archived round summary
// GET /rounds/history/{roundId}
func (a *API) roundHistory(w http.ResponseWriter, r *http.Request) {
	roundID, ok := urlRoundID(r)
	if !ok {
		ErrMalformedParam.With("could not decode round id").Write(w)
		return
	}
	sys, err := a.machine.Storage().SystemState()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	hist, err := a.machine.Storage().RoundHistory(sys.ID, roundID)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, hist)
}

// resetCounters runs the standalone counter reset
// POST /rounds/reset
func (a *API) resetCounters(w http.ResponseWriter, r *http.Request) {
	req := &ResetRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	authority, err := types.IdentityFromBytes(req.Authority)
	if err != nil {
		ErrMalformedBody.Withf("could not decode authority: %v", err).Write(w)
		return
	}
	if err := a.machine.ResetVoteCounters(authority); err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// roundEscrow returns a round's escrow accounting
// GET /rounds/escrow/{roundId}
func (a *API) roundEscrow(w http.ResponseWriter, r *http.Request) {
	roundID, ok := urlRoundID(r)
	if !ok {
		ErrMalformedParam.With("could not decode round id").Write(w)
		return
	}
	escrow, err := a.machine.Storage().RoundEscrow(roundID)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, escrow)
}

// claimReward pays out the caller's reward share of an archived round
// POST /rewards/claim
func (a *API) claimReward(w http.ResponseWriter, r *http.Request) {
	req := &ClaimRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	caller, err := types.IdentityFromBytes(req.Caller)
	if err != nil {
		ErrMalformedBody.Withf("could not decode caller: %v", err).Write(w)
		return
	}
	amount, err := a.machine.ClaimReward(req.RoundID, caller)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &ClaimResponse{Amount: amount})
}

// computation awaits the settlement of a computation handle
// GET /computations/{handle}
func (a *API) computation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, HandleURLParam))
	if err != nil {
		ErrMalformedParam.With("could not decode computation handle").Write(w)
		return
	}
	cb, err := a.machine.Coordinator().Await(r.Context(), mpc.Handle(id), awaitTimeout)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	resp := &ComputationResponse{Handle: cb.Handle.String(), Settled: true}
	switch {
	case cb.Err != nil:
		resp.Error = cb.Err.Error()
	case cb.Reveal != nil:
		resp.Winner = &cb.Reveal.WinningProposalID
	case cb.Verify != nil:
		resp.IsWinner = &cb.Verify.IsWinner
	case cb.Decrypt != nil:
		resp.ProposalID = &cb.Decrypt.ProposalID
	}
	httpWriteJSON(w, resp)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artmural/mural/types"
)

// submitProposal escrows the fee and appends a proposal to the live round
// POST /proposals
func (a *API) submitProposal(w http.ResponseWriter, r *http.Request) {
	req := &ProposalRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	submitter, err := types.IdentityFromBytes(req.Submitter)
	if err != nil {
		ErrMalformedBody.Withf("could not decode submitter: %v", err).Write(w)
		return
	}
	proposal, err := a.machine.SubmitProposal(req.Title, req.Description, req.URL, submitter)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, proposal)
}

// listProposals returns the live round's proposals in local index order
// GET /proposals
func (a *API) listProposals(w http.ResponseWriter, r *http.Request) {
	sys, err := a.machine.Storage().SystemState()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	meta, err := a.machine.Storage().RoundMetadata()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	proposals, err := a.machine.Storage().ListProposals(sys.ID, meta.CurrentRound)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, proposals)
}

// proposal returns one proposal by round and local index
// GET /proposals/{roundId}/{localIndex}
func (a *API) proposal(w http.ResponseWriter, r *http.Request) {
	roundID, ok := urlRoundID(r)
	if !ok {
		ErrMalformedParam.With("could not decode round id").Write(w)
		return
	}
	index, err := strconv.ParseUint(chi.URLParam(r, IndexURLParam), 10, 8)
	if err != nil {
		ErrMalformedParam.With("could not decode local index").Write(w)
		return
	}
	sys, err := a.machine.Storage().SystemState()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	proposal, err := a.machine.Storage().Proposal(sys.ID, roundID, uint8(index))
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, proposal)
}

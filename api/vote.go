package api

import (
	"encoding/json"
	"net/http"

	"github.com/artmural/mural/types"
)

// newVote creates a vote receipt and queues the confidential tally
// POST /votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	req := &VoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	voter, err := types.IdentityFromBytes(req.Voter)
	if err != nil {
		ErrMalformedBody.Withf("could not decode voter: %v", err).Write(w)
		return
	}
	pubkey, ok := fixedBytes32(req.VoterPubkey)
	if !ok {
		ErrMalformedBody.With("voter pubkey must be 32 bytes").Write(w)
		return
	}
	nonce, ok := fixedBytes16(req.TransportNonce)
	if !ok {
		ErrMalformedBody.With("transport nonce must be 16 bytes").Write(w)
		return
	}
	receipt, handle, err := a.machine.VoteForProposal(voter, req.RoundID, req.ProposalIndex,
		req.EncryptedChoice, req.TransportCiphertext, pubkey, nonce)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &VoteResponse{Receipt: receipt, Handle: handle.String()})
}

// voteReceipt returns a voter's receipt for a round
// GET /votes/{roundId}/{voter}
func (a *API) voteReceipt(w http.ResponseWriter, r *http.Request) {
	roundID, ok := urlRoundID(r)
	if !ok {
		ErrMalformedParam.With("could not decode round id").Write(w)
		return
	}
	voter, ok := urlIdentity(r, VoterURLParam)
	if !ok {
		ErrMalformedParam.With("could not decode voter").Write(w)
		return
	}
	receipt, err := a.machine.Storage().VoteReceipt(voter, roundID)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, receipt)
}

// verifyVote queues a winning-vote verification for a receipt
// POST /votes/verify
func (a *API) verifyVote(w http.ResponseWriter, r *http.Request) {
	req := &VerifyVoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	voter, err := types.IdentityFromBytes(req.Voter)
	if err != nil {
		ErrMalformedBody.Withf("could not decode voter: %v", err).Write(w)
		return
	}
	pubkey, ok := fixedBytes32(req.VoterPubkey)
	if !ok {
		ErrMalformedBody.With("voter pubkey must be 32 bytes").Write(w)
		return
	}
	nonce, ok := fixedBytes16(req.Nonce)
	if !ok {
		ErrMalformedBody.With("nonce must be 16 bytes").Write(w)
		return
	}
	handle, err := a.machine.VerifyWinningVote(voter, req.RoundID, req.Ciphertext, pubkey, nonce)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &HandleResponse{Handle: handle.String()})
}

// decryptVote queues the diagnostic decryption of a ciphertext
// POST /votes/decrypt
func (a *API) decryptVote(w http.ResponseWriter, r *http.Request) {
	req := &DecryptVoteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	pubkey, ok := fixedBytes32(req.VoterPubkey)
	if !ok {
		ErrMalformedBody.With("voter pubkey must be 32 bytes").Write(w)
		return
	}
	nonce, ok := fixedBytes16(req.Nonce)
	if !ok {
		ErrMalformedBody.With("nonce must be 16 bytes").Write(w)
		return
	}
	handle, err := a.machine.DecryptVote(req.Ciphertext, pubkey, nonce)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &HandleResponse{Handle: handle.String()})
}

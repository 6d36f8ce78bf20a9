package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/artmural/mural/crypto/ballotkey"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/state"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
	"github.com/artmural/mural/util"
)

type testServer struct {
	srv     *httptest.Server
	machine *state.Machine
	engine  *mpc.LocalEngine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	engine, err := mpc.NewLocalEngine()
	c.Assert(err, qt.IsNil)
	coord := mpc.NewCoordinator(engine)
	c.Assert(coord.Start(context.Background()), qt.IsNil)
	t.Cleanup(coord.Stop)
	machine := state.New(stg, coord)
	tallyCtx, cancelTally := context.WithCancel(context.Background())
	t.Cleanup(cancelTally)
	go applyCallbacks(tallyCtx, machine, coord.Callbacks())

	a := &API{machine: machine}
	a.initRouter()
	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, machine: machine, engine: engine}
}

// applyCallbacks stands in for the tally service. It drains settled
// computations into state until the test's cleanup cancels it.
func applyCallbacks(ctx context.Context, machine *state.Machine, callbacks <-chan *mpc.Callback) {
	for {
		var cb *mpc.Callback
		select {
		case <-ctx.Done():
			return
		case cb = <-callbacks:
		}
		if cb.Err != nil {
			continue
		}
		switch {
		case cb.VoteApplied != nil:
			_ = machine.ApplyVoteCallback(cb.VoteApplied)
		case cb.Reveal != nil:
			_ = machine.ApplyRevealCallback(cb.Reveal)
		case cb.Verify != nil:
			_ = machine.ApplyVerifyCallback(cb.Verify)
		}
	}
}

func (ts *testServer) post(t *testing.T, path string, body, out any) int {
	t.Helper()
	c := qt.New(t)
	data, err := json.Marshal(body)
	c.Assert(err, qt.IsNil)
	resp, err := http.Post(ts.srv.URL+path, "application/json", bytes.NewReader(data))
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	if out != nil && resp.StatusCode == http.StatusOK {
		c.Assert(json.Unmarshal(raw, out), qt.IsNil)
	}
	return resp.StatusCode
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	c := qt.New(t)
	resp, err := http.Get(ts.srv.URL + path)
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	if out != nil && resp.StatusCode == http.StatusOK {
		c.Assert(json.Unmarshal(raw, out), qt.IsNil)
	}
	return resp.StatusCode
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	c.Assert(ts.get(t, PingEndpoint, nil), qt.Equals, http.StatusOK)
}

func TestProposalAndVoteFlow(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)

	authority := types.Identity{0xaa}
	var sys types.SystemState
	status := ts.post(t, SystemInitEndpoint, &InitRequest{Authority: authority.Bytes()}, &sys)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(sys.SubmissionFee, qt.Equals, uint64(types.DefaultSubmissionFee))

	// proposals without funds are rejected with the insufficient funds code
	submitter := types.Identity{1}
	status = ts.post(t, ProposalsEndpoint, &ProposalRequest{
		Title: "mural", Submitter: submitter.Bytes(),
	}, nil)
	c.Assert(status, qt.Equals, http.StatusBadRequest)

	c.Assert(ts.machine.Credit(submitter, types.DefaultSubmissionFee), qt.IsNil)
	var proposal types.Proposal
	status = ts.post(t, ProposalsEndpoint, &ProposalRequest{
		Title: "mural", Description: "east wall", URL: "https://example.org",
		Submitter: submitter.Bytes(),
	}, &proposal)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(proposal.LocalIndex, qt.Equals, uint8(0))

	var proposals []*types.Proposal
	c.Assert(ts.get(t, ProposalsEndpoint, &proposals), qt.Equals, http.StatusOK)
	c.Assert(proposals, qt.HasLen, 1)

	// fetch the cluster key and cast an encrypted vote
	var keyResp EncryptionKeyResponse
	c.Assert(ts.get(t, EncryptionKeyEndpoint, &keyResp), qt.Equals, http.StatusOK)
	clusterPub, ok := fixedBytes32(keyResp.PublicKey)
	c.Assert(ok, qt.IsTrue)

	key, err := ballotkey.DeriveRoundKey(util.RandomBytes(ballotkey.SignatureSize))
	c.Assert(err, qt.IsNil)
	encrypted, err := key.SealChoice(0, clusterPub)
	c.Assert(err, qt.IsNil)
	transport, err := key.SealTransport(0, clusterPub)
	c.Assert(err, qt.IsNil)

	voter := types.Identity{2}
	nonce := key.TransportNonce(0)
	voteReq := &VoteRequest{
		Voter:               voter.Bytes(),
		RoundID:             0,
		ProposalIndex:       0,
		EncryptedChoice:     encrypted,
		TransportCiphertext: transport,
		VoterPubkey:         key.Public[:],
		TransportNonce:      nonce[:],
	}
	var voteResp VoteResponse
	c.Assert(ts.post(t, VotesEndpoint, voteReq, &voteResp), qt.Equals, http.StatusOK)
	c.Assert(voteResp.Handle, qt.Not(qt.Equals), "")

	// the tally settles through the computation endpoint
	var comp ComputationResponse
	status = ts.get(t, fmt.Sprintf("/computations/%s", voteResp.Handle), &comp)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(comp.Settled, qt.IsTrue)

	// a second vote hits the receipt slot
	c.Assert(ts.post(t, VotesEndpoint, voteReq, nil), qt.Equals, http.StatusConflict)

	var receipt types.VoteReceipt
	path := fmt.Sprintf("/votes/0/%s", voter.String())
	c.Assert(ts.get(t, path, &receipt), qt.Equals, http.StatusOK)
	c.Assert([]byte(receipt.EncryptedProposalID), qt.DeepEquals, []byte(encrypted))

	// reveal is authority gated
	status = ts.post(t, RevealEndpoint, &RevealRequest{Authority: types.Identity{0xbb}.Bytes()}, nil)
	c.Assert(status, qt.Equals, http.StatusForbidden)
	var handleResp HandleResponse
	status = ts.post(t, RevealEndpoint, &RevealRequest{Authority: authority.Bytes()}, &handleResp)
	c.Assert(status, qt.Equals, http.StatusOK)
	status = ts.get(t, fmt.Sprintf("/computations/%s", handleResp.Handle), &comp)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(comp.Winner, qt.IsNotNil)
	c.Assert(*comp.Winner, qt.Equals, uint8(0))

	// the tally service applies the reveal callback shortly after settlement
	waitFor(t, func() bool {
		sys, err := ts.machine.Storage().SystemState()
		return err == nil && sys.WinningProposalID != nil
	})

	// archive the round and read back its history and escrow
	var hist types.RoundHistory
	status = ts.post(t, HistoriesEndpoint, &HistoryRequest{
		Theme: "street art", Caller: authority.Bytes(),
	}, &hist)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(hist.WinningProposalID, qt.Equals, uint8(0))

	var escrow types.RoundEscrow
	c.Assert(ts.get(t, "/rounds/escrow/0", &escrow), qt.Equals, http.StatusOK)
	c.Assert(escrow.TotalCollected, qt.Equals, uint64(types.DefaultSubmissionFee))
	c.Assert(escrow.RoundStatus, qt.Equals, types.RoundStatusCompleted)

	// the submitter claims half the pool
	var claim ClaimResponse
	status = ts.post(t, ClaimEndpoint, &ClaimRequest{RoundID: 0, Caller: submitter.Bytes()}, &claim)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(claim.Amount, qt.Equals, uint64(types.DefaultSubmissionFee/2))
	status = ts.post(t, ClaimEndpoint, &ClaimRequest{RoundID: 0, Caller: submitter.Bytes()}, nil)
	c.Assert(status, qt.Equals, http.StatusConflict)

	var account types.Account
	path = fmt.Sprintf("/accounts/%s", submitter.String())
	c.Assert(ts.get(t, path, &account), qt.Equals, http.StatusOK)
	c.Assert(account.Balance, qt.Equals, uint64(types.DefaultSubmissionFee/2))
}

func TestUnknownComputationHandle(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t)
	status := ts.get(t, "/computations/00000000-0000-0000-0000-000000000000", nil)
	c.Assert(status, qt.Equals, http.StatusNotFound)
}

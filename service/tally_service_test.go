package service

import (
	"context"
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

func TestTallyServiceAppliesReveal(t *testing.T) {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	engine, err := mpc.NewLocalEngine()
	c.Assert(err, qt.IsNil)
	coord := mpc.NewCoordinator(engine)
	c.Assert(coord.Start(context.Background()), qt.IsNil)
	t.Cleanup(coord.Stop)

	machine := state.New(stg, coord)
	tally := NewTally(machine)
	c.Assert(tally.Start(context.Background()), qt.IsNil)
	c.Assert(tally.Start(context.Background()), qt.IsNotNil)
	t.Cleanup(tally.Stop)

	authority := types.Identity{0xaa}
	_, err = machine.InitSystem(authority, 0)
	c.Assert(err, qt.IsNil)

	submitter := types.Identity{1}
	c.Assert(machine.Credit(submitter, types.DefaultSubmissionFee), qt.IsNil)
	_, err = machine.SubmitProposal("mural", "", "", submitter)
	c.Assert(err, qt.IsNil)

	key, err := ballotkey.DeriveRoundKey(util.RandomBytes(ballotkey.SignatureSize))
	c.Assert(err, qt.IsNil)
	encrypted, err := key.SealChoice(0, engine.ClusterPubkey())
	c.Assert(err, qt.IsNil)
	transport, err := key.SealTransport(0, engine.ClusterPubkey())
	c.Assert(err, qt.IsNil)
	voter := types.Identity{2}
	_, handle, err := machine.VoteForProposal(voter, 0, 0, encrypted, transport,
		key.Public, key.TransportNonce(0))
	c.Assert(err, qt.IsNil)
	_, err = coord.Await(context.Background(), handle, time.Second)
	c.Assert(err, qt.IsNil)

	// the service, not the test, applies the reveal callback
	_, err = machine.RevealWinningProposal(authority)
	c.Assert(err, qt.IsNil)
	waitFor(t, func() bool {
		sys, err := stg.SystemState()
		return err == nil && sys.WinningProposalID != nil
	})
	sys, err := stg.SystemState()
	c.Assert(err, qt.IsNil)
	c.Assert(*sys.WinningProposalID, qt.Equals, uint8(0))
	c.Assert(*sys.WinningVoteCount, qt.Equals, uint64(1))
	escrow, err := stg.RoundEscrow(0)
	c.Assert(err, qt.IsNil)
	c.Assert(escrow.RoundStatus, qt.Equals, types.RoundStatusCompleted)
}

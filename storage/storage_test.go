package storage

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/artmural/mural/types"
)

func testIdentity(b byte) types.Identity {
	var id types.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func TestSingletons(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	_, err := stg.SystemState()
	c.Assert(err, qt.ErrorIs, ErrNotFound)

	winner := uint8(2)
	count := uint64(7)
	st := &types.SystemState{
		ID:                types.HexBytes{0xde, 0xad, 0xbe, 0xef},
		Authority:         testIdentity(1),
		Nonce:             make(types.HexBytes, types.NonceSize),
		NextProposalID:    42,
		WinningProposalID: &winner,
		WinningVoteCount:  &count,
		SubmissionFee:     types.DefaultSubmissionFee,
	}
	md := &types.RoundMetadata{CurrentRound: 3, ProposalsInCurrentRound: 5, TotalVoters: 11, RoundStarted: 1700000000}

	err = stg.Update(func(txn *Txn) error {
		if err := txn.SetSystemState(st); err != nil {
			return err
		}
		return txn.SetRoundMetadata(md)
	})
	c.Assert(err, qt.IsNil)

	gotSt, err := stg.SystemState()
	c.Assert(err, qt.IsNil)
	c.Assert(gotSt, qt.DeepEquals, st)

	gotMd, err := stg.RoundMetadata()
	c.Assert(err, qt.IsNil)
	c.Assert(gotMd, qt.DeepEquals, md)
}

func TestProposalAddressing(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	systemID := types.HexBytes{0x01, 0x02}

	for i := 0; i < 3; i++ {
		p := &types.Proposal{
			RoundID:    0,
			LocalIndex: uint8(i),
			Title:      "proposal",
			Submitter:  testIdentity(byte(i)),
		}
		err := stg.Update(func(txn *Txn) error { return txn.SetProposal(systemID, p) })
		c.Assert(err, qt.IsNil)
	}
	// a proposal in another round does not leak into round 0 listings
	err := stg.Update(func(txn *Txn) error {
		return txn.SetProposal(systemID, &types.Proposal{RoundID: 1, LocalIndex: 0})
	})
	c.Assert(err, qt.IsNil)

	got, err := stg.Proposal(systemID, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Submitter, qt.Equals, testIdentity(1))

	list, err := stg.ListProposals(systemID, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 3)
	for i, p := range list {
		c.Assert(p.LocalIndex, qt.Equals, uint8(i))
	}

	_, err = stg.Proposal(systemID, 0, 9)
	c.Assert(err, qt.ErrorIs, ErrNotFound)
}

func TestVoteReceiptCreateOnce(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	voter := testIdentity(7)
	r := &types.VoteReceipt{
		Voter:                voter,
		EncryptedProposalID:  make(types.HexBytes, types.CiphertextSize),
		VoteEncryptionPubkey: make(types.HexBytes, types.EncryptionKeySize),
		Timestamp:            1700000000,
	}
	err := stg.Update(func(txn *Txn) error { return txn.CreateVoteReceipt(r, 0) })
	c.Assert(err, qt.IsNil)

	// the slot is create-once, regardless of content
	err = stg.Update(func(txn *Txn) error { return txn.CreateVoteReceipt(r, 0) })
	c.Assert(err, qt.ErrorIs, ErrAlreadyExists)

	// but the same voter can vote in another round
	err = stg.Update(func(txn *Txn) error { return txn.CreateVoteReceipt(r, 1) })
	c.Assert(err, qt.IsNil)

	got, err := stg.VoteReceipt(voter, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Voter, qt.Equals, voter)
	c.Assert(got.IsWinner, qt.IsFalse)

	// raw form exposes the fixed-offset winner flag
	raw, err := stg.VoteReceiptRaw(voter, 0)
	c.Assert(err, qt.IsNil)
	won, err := types.ReceiptIsWinner(raw)
	c.Assert(err, qt.IsNil)
	c.Assert(won, qt.IsFalse)

	got.IsWinner = true
	err = stg.Update(func(txn *Txn) error { return txn.SetVoteReceipt(got, 0) })
	c.Assert(err, qt.IsNil)
	raw, err = stg.VoteReceiptRaw(voter, 0)
	c.Assert(err, qt.IsNil)
	won, err = types.ReceiptIsWinner(raw)
	c.Assert(err, qt.IsNil)
	c.Assert(won, qt.IsTrue)
}

func TestEscrowConservationGuard(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	err := stg.Update(func(txn *Txn) error {
		return txn.SetRoundEscrow(&types.RoundEscrow{
			RoundID:          0,
			TotalCollected:   3_000_000,
			TotalDistributed: 1_000_000,
			CurrentBalance:   2_000_000,
		})
	})
	c.Assert(err, qt.IsNil)

	// a write violating totalCollected == totalDistributed + currentBalance
	// never commits
	err = stg.Update(func(txn *Txn) error {
		return txn.SetRoundEscrow(&types.RoundEscrow{
			RoundID:          0,
			TotalCollected:   3_000_000,
			TotalDistributed: 1_000_000,
			CurrentBalance:   1_000_000,
		})
	})
	c.Assert(err, qt.IsNotNil)

	e, err := stg.RoundEscrow(0)
	c.Assert(err, qt.IsNil)
	c.Assert(e.CurrentBalance, qt.Equals, uint64(2_000_000))
}

func TestClaimMarkersConsumeOnce(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))
	claimant := testIdentity(9)

	has, err := stg.HasVoterClaim(0, claimant)
	c.Assert(err, qt.IsNil)
	c.Assert(has, qt.IsFalse)

	err = stg.Update(func(txn *Txn) error { return txn.ConsumeVoterClaim(0, claimant) })
	c.Assert(err, qt.IsNil)

	err = stg.Update(func(txn *Txn) error { return txn.ConsumeVoterClaim(0, claimant) })
	c.Assert(err, qt.ErrorIs, ErrAlreadyExists)

	// the submitter marker for the same identity is independent
	err = stg.Update(func(txn *Txn) error { return txn.ConsumeSubmitterClaim(0, claimant) })
	c.Assert(err, qt.IsNil)

	has, err = stg.HasVoterClaim(0, claimant)
	c.Assert(err, qt.IsNil)
	c.Assert(has, qt.IsTrue)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	err := stg.Update(func(txn *Txn) error {
		if err := txn.SetAccount(testIdentity(1), &types.Account{Balance: 500}); err != nil {
			return err
		}
		return ErrAlreadyExists // any error discards everything
	})
	c.Assert(err, qt.ErrorIs, ErrAlreadyExists)

	a, err := stg.Account(testIdentity(1))
	c.Assert(err, qt.IsNil)
	c.Assert(a.Balance, qt.Equals, uint64(0))
}

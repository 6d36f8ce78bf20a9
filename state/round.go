package state

import (
	"fmt"
	"time"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
)

// RevealWinningProposal queues the confidential arg-max of the live round's
// tally. Only the system authority may trigger it. The winner is written
// when the computation settles.
func (m *Machine) RevealWinningProposal(authority types.Identity) (mpc.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sys, meta, err := m.loadSystem()
	if err != nil {
		return mpc.Handle{}, err
	}
	if authority != sys.Authority {
		return mpc.Handle{}, ErrInvalidAuthority
	}
	if sys.WinningProposalID != nil {
		return mpc.Handle{}, ErrRoundAlreadyRevealed
	}
	if meta.ProposalsInCurrentRound == 0 {
		return mpc.Handle{}, fmt.Errorf("round %d has no proposals", meta.CurrentRound)
	}
	handle, err := m.coord.RevealWinner(&mpc.RevealWinnerRequest{
		SystemID: sys.ID,
		RoundID:  meta.CurrentRound,
	})
	if err != nil {
		return mpc.Handle{}, err
	}
	log.Infow("winner reveal queued", "round", meta.CurrentRound,
		"handle", handle.String())
	return handle, nil
}

// ApplyRevealCallback writes the revealed winner into the system state,
// publishes the final per-proposal counts and moves the round escrow to
// completed. This is the only writer of the winning fields.
func (m *Machine) ApplyRevealCallback(res *mpc.RevealResult) error {
	if res == nil {
		return fmt.Errorf("nil reveal result")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sys, meta, err := m.loadSystem()
	if err != nil {
		return err
	}
	if res.RoundID != meta.CurrentRound {
		return fmt.Errorf("reveal for round %d but round %d is live", res.RoundID, meta.CurrentRound)
	}
	if sys.WinningProposalID != nil {
		return ErrRoundAlreadyRevealed
	}
	winner := res.WinningProposalID
	count := res.WinningVoteCount
	sys.WinningProposalID = &winner
	sys.WinningVoteCount = &count

	escrow, err := m.stg.RoundEscrow(res.RoundID)
	if err != nil {
		return fmt.Errorf("could not load round escrow: %w", err)
	}
	escrow.RoundStatus = types.RoundStatusCompleted

	proposals, err := m.stg.ListProposals(sys.ID, res.RoundID)
	if err != nil {
		return err
	}
	err = m.stg.Update(func(txn *storage.Txn) error {
		for _, p := range proposals {
			if int(p.LocalIndex) < len(res.Counts) {
				p.VoteCount = res.Counts[p.LocalIndex]
			}
			if err := txn.SetProposal(sys.ID, p); err != nil {
				return err
			}
		}
		if err := txn.SetRoundEscrow(escrow); err != nil {
			return err
		}
		return txn.SetSystemState(sys)
	})
	if err != nil {
		return err
	}
	log.Infow("winning proposal revealed", "round", res.RoundID,
		"winner", winner, "voteCount", count)
	return nil
}

// CreateRoundHistory archives the revealed round as an immutable summary
// and, unless the split-reset variant is selected, resets the counters and
// opens the next round in the same transaction. Only the system authority
// may archive.
func (m *Machine) CreateRoundHistory(theme string, caller types.Identity) (*types.RoundHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sys, meta, err := m.loadSystem()
	if err != nil {
		return nil, err
	}
	if caller != sys.Authority {
		return nil, ErrInvalidAuthority
	}
	if sys.WinningProposalID == nil {
		return nil, ErrRoundNotRevealed
	}
	hist := &types.RoundHistory{
		RoundID:           meta.CurrentRound,
		WinningProposalID: *sys.WinningProposalID,
		TotalProposals:    meta.ProposalsInCurrentRound,
		WinningVoteCount:  *sys.WinningVoteCount,
		TotalVoters:       meta.TotalVoters,
		RevealedAt:        time.Now().Unix(),
		RevealedBy:        caller,
		Theme:             theme,
	}
	err = m.stg.Update(func(txn *storage.Txn) error {
		if err := txn.CreateRoundHistory(sys.ID, hist); err != nil {
			return err
		}
		if m.splitReset {
			return nil
		}
		return m.resetRound(txn, sys, meta)
	})
	if err != nil {
		return nil, err
	}
	log.Infow("round archived", "round", hist.RoundID, "winner", hist.WinningProposalID,
		"theme", theme, "reset", !m.splitReset)
	return hist, nil
}

// ResetVoteCounters is the standalone reset step for deployments that
// archive and reset separately. It requires the round history to already
// exist.
func (m *Machine) ResetVoteCounters(authority types.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sys, meta, err := m.loadSystem()
	if err != nil {
		return err
	}
	if authority != sys.Authority {
		return ErrInvalidAuthority
	}
	if sys.WinningProposalID == nil {
		return ErrRoundNotRevealed
	}
	if _, err := m.stg.RoundHistory(sys.ID, meta.CurrentRound); err != nil {
		return fmt.Errorf("round %d not archived yet: %w", meta.CurrentRound, ErrRoundNotRevealed)
	}
	return m.stg.Update(func(txn *storage.Txn) error {
		return m.resetRound(txn, sys, meta)
	})
}

// resetRound clears the winner, advances the round cursor and opens the
// next round's escrow. NextProposalID and past escrow balances persist as
// the funding record for claims.
func (m *Machine) resetRound(txn *storage.Txn, sys *types.SystemState, meta *types.RoundMetadata) error {
	sys.WinningProposalID = nil
	sys.WinningVoteCount = nil
	meta.CurrentRound++
	meta.ProposalsInCurrentRound = 0
	meta.TotalVoters = 0
	now := time.Now().Unix()
	meta.RoundStarted = now
	if err := txn.SetSystemState(sys); err != nil {
		return err
	}
	if err := txn.SetRoundMetadata(meta); err != nil {
		return err
	}
	return txn.SetRoundEscrow(&types.RoundEscrow{
		RoundID:     meta.CurrentRound,
		RoundStatus: types.RoundStatusActive,
		CreatedAt:   now,
	})
}

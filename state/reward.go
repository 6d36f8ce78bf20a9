package state

import (
	"fmt"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
)

// ClaimReward pays the caller's share of an archived round's escrow. The
// winning submitter claims half of the collected fees; each verified
// winning voter claims an equal floor share of the remainder. Claims are
// one-shot per claimant class and round. An identity holding both
// entitlements claims them one call at a time, submitter share first.
// The paid amount is returned.
func (m *Machine) ClaimReward(roundID uint64, caller types.Identity) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sys, _, err := m.loadSystem()
	if err != nil {
		return 0, err
	}
	hist, err := m.stg.RoundHistory(sys.ID, roundID)
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, ErrRoundNotRevealed
		}
		return 0, err
	}
	escrow, err := m.stg.RoundEscrow(roundID)
	if err != nil {
		return 0, fmt.Errorf("could not load round escrow: %w", err)
	}

	winning, err := m.stg.Proposal(sys.ID, roundID, hist.WinningProposalID)
	if err != nil {
		return 0, fmt.Errorf("could not load winning proposal: %w", err)
	}

	submitterShare := escrow.TotalCollected / 2
	var share uint64
	var claimed bool
	var consume func(txn *storage.Txn) error

	asSubmitter := caller == winning.Submitter
	if asSubmitter {
		if claimed, err = m.stg.HasSubmitterClaim(roundID, caller); err != nil {
			return 0, err
		}
	}
	if asSubmitter && !claimed {
		share = submitterShare
		consume = func(txn *storage.Txn) error {
			return txn.ConsumeSubmitterClaim(roundID, caller)
		}
	} else {
		receipt, rerr := m.stg.VoteReceipt(caller, roundID)
		if rerr != nil || !receipt.IsWinner {
			if asSubmitter {
				// submitter share spent and no voter entitlement remains
				return 0, ErrAlreadyClaimed
			}
			return 0, ErrVoteMismatch
		}
		if hist.WinningVoteCount == 0 {
			return 0, ErrNothingToClaim
		}
		share = (escrow.TotalCollected - submitterShare) / hist.WinningVoteCount
		if claimed, err = m.stg.HasVoterClaim(roundID, caller); err != nil {
			return 0, err
		}
		consume = func(txn *storage.Txn) error {
			return txn.ConsumeVoterClaim(roundID, caller)
		}
	}
	// A consumed marker wins over an empty escrow, so a repeat claim on a
	// drained round still reports ErrAlreadyClaimed.
	if claimed {
		return 0, ErrAlreadyClaimed
	}
	if share == 0 || share > escrow.CurrentBalance {
		return 0, ErrNothingToClaim
	}

	account, err := m.stg.Account(caller)
	if err != nil {
		return 0, err
	}
	account.Balance += share
	escrow.TotalDistributed += share
	escrow.CurrentBalance -= share
	if escrow.CurrentBalance == 0 {
		escrow.RoundStatus = types.RoundStatusClosed
	}
	err = m.stg.Update(func(txn *storage.Txn) error {
		if err := consume(txn); err != nil {
			if err == storage.ErrAlreadyExists {
				return ErrAlreadyClaimed
			}
			return err
		}
		if err := txn.SetAccount(caller, account); err != nil {
			return err
		}
		return txn.SetRoundEscrow(escrow)
	})
	if err != nil {
		return 0, err
	}
	log.Infow("reward claimed", "round", roundID, "claimant", caller.String(),
		"amount", share, "escrowBalance", escrow.CurrentBalance)
	return share, nil
}

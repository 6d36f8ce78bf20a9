package state

import (
	"fmt"
	"time"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
)

// SubmitProposal escrows the submission fee from payer and appends a
// proposal to the live round at the next local index. The fee check runs
// before any mutation and the whole operation commits atomically.
func (m *Machine) SubmitProposal(title, description, url string, payer types.Identity) (*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateProposalFields(title, description, url); err != nil {
		return nil, err
	}
	sys, meta, err := m.loadSystem()
	if err != nil {
		return nil, err
	}
	if int(meta.ProposalsInCurrentRound) >= types.MaxProposalsPerRound {
		return nil, ErrMaxProposalsReached
	}
	escrow, err := m.stg.RoundEscrow(meta.CurrentRound)
	if err != nil {
		return nil, fmt.Errorf("could not load round escrow: %w", err)
	}
	if escrow.RoundStatus != types.RoundStatusActive {
		return nil, ErrEscrowNotActive
	}
	account, err := m.stg.Account(payer)
	if err != nil {
		return nil, err
	}
	if account.Balance < sys.SubmissionFee {
		return nil, ErrInsufficientFunds
	}

	proposal := &types.Proposal{
		RoundID:     meta.CurrentRound,
		LocalIndex:  meta.ProposalsInCurrentRound,
		Title:       title,
		Description: description,
		URL:         url,
		Submitter:   payer,
		SubmittedAt: time.Now().Unix(),
	}
	account.Balance -= sys.SubmissionFee
	escrow.TotalCollected += sys.SubmissionFee
	escrow.CurrentBalance += sys.SubmissionFee
	meta.ProposalsInCurrentRound++
	sys.NextProposalID++

	err = m.stg.Update(func(txn *storage.Txn) error {
		if err := txn.SetProposal(sys.ID, proposal); err != nil {
			return err
		}
		if err := txn.SetAccount(payer, account); err != nil {
			return err
		}
		if err := txn.SetRoundEscrow(escrow); err != nil {
			return err
		}
		if err := txn.SetRoundMetadata(meta); err != nil {
			return err
		}
		return txn.SetSystemState(sys)
	})
	if err != nil {
		return nil, err
	}
	log.Infow("proposal submitted", "round", proposal.RoundID,
		"localIndex", proposal.LocalIndex, "submitter", payer.String(),
		"title", title)
	return proposal, nil
}

func validateProposalFields(title, description, url string) error {
	if title == "" || len(title) > types.MaxProposalTitleLen {
		return fmt.Errorf("title must be between 1 and %d characters", types.MaxProposalTitleLen)
	}
	if len(description) > types.MaxProposalDescriptionLen {
		return fmt.Errorf("description exceeds %d characters", types.MaxProposalDescriptionLen)
	}
	if len(url) > types.MaxProposalURLLen {
		return fmt.Errorf("url exceeds %d characters", types.MaxProposalURLLen)
	}
	return nil
}

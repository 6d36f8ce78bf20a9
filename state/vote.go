package state

import (
	"bytes"
	"fmt"
	"time"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
)

// receiptBump marks receipts created by this store.
const receiptBump = 255

// VoteForProposal creates the voter's receipt for the live round and queues
// the transport ciphertext for confidential tallying. The receipt is
// committed synchronously; the tally is applied when the computation
// settles. The returned handle correlates that settlement.
func (m *Machine) VoteForProposal(voter types.Identity, roundID uint64, localIndex uint8,
	encryptedChoice, transportCiphertext types.HexBytes,
	voterPubkey [types.EncryptionKeySize]byte, transportNonce [types.NonceSize]byte,
) (*types.VoteReceipt, mpc.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, meta, err := m.loadSystem()
	if err != nil {
		return nil, mpc.Handle{}, err
	}
	if roundID != meta.CurrentRound {
		return nil, mpc.Handle{}, ErrInvalidRoundID
	}
	if localIndex >= meta.ProposalsInCurrentRound {
		return nil, mpc.Handle{}, ErrInvalidProposalID
	}
	if len(encryptedChoice) != types.CiphertextSize {
		return nil, mpc.Handle{}, fmt.Errorf("encrypted choice must be %d bytes", types.CiphertextSize)
	}
	if len(transportCiphertext) != types.CiphertextSize {
		return nil, mpc.Handle{}, fmt.Errorf("transport ciphertext must be %d bytes", types.CiphertextSize)
	}

	receipt := &types.VoteReceipt{
		Bump:                 receiptBump,
		Voter:                voter,
		EncryptedProposalID:  encryptedChoice,
		Timestamp:            time.Now().Unix(),
		VoteEncryptionPubkey: voterPubkey[:],
	}
	meta.TotalVoters++
	err = m.stg.Update(func(txn *storage.Txn) error {
		if err := txn.CreateVoteReceipt(receipt, roundID); err != nil {
			if err == storage.ErrAlreadyExists {
				return ErrAlreadyVoted
			}
			return err
		}
		return txn.SetRoundMetadata(meta)
	})
	if err != nil {
		return nil, mpc.Handle{}, err
	}

	handle, err := m.coord.SubmitVote(&mpc.SubmitVoteRequest{
		RoundID:             roundID,
		Voter:               voter,
		TransportCiphertext: transportCiphertext,
		VoterPubkey:         voterPubkey,
		Nonce:               transportNonce,
	})
	if err != nil {
		// the receipt is durable; the vote must be resubmitted to the
		// cluster out of band
		return receipt, mpc.Handle{}, fmt.Errorf("receipt stored but tally submission failed: %w", err)
	}
	log.Infow("vote receipt created", "round", roundID, "voter", voter.String(),
		"handle", handle.String())
	return receipt, handle, nil
}

// ApplyVoteCallback acknowledges a settled tally submission. The counter
// itself lives inside the confidential cluster until reveal, so nothing is
// written here besides the settlement log.
func (m *Machine) ApplyVoteCallback(res *mpc.VoteAppliedResult) error {
	if res == nil {
		return fmt.Errorf("nil vote result")
	}
	log.Debugw("vote folded into confidential tally", "round", res.RoundID,
		"voter", res.Voter.String())
	return nil
}

// VerifyWinningVote checks the caller-supplied ciphertext byte-for-byte
// against the stored receipt, then queues the confidential comparison with
// the archived round's winner. The receipt flag is written when the
// verification settles true.
func (m *Machine) VerifyWinningVote(voter types.Identity, roundID uint64,
	ciphertext types.HexBytes, voterPubkey [types.EncryptionKeySize]byte,
	nonce [types.NonceSize]byte,
) (mpc.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	phase, err := m.RoundPhase(roundID)
	if err != nil {
		return mpc.Handle{}, err
	}
	if phase.Kind != PhaseArchived {
		return mpc.Handle{}, ErrRoundNotRevealed
	}
	receipt, err := m.stg.VoteReceipt(voter, roundID)
	if err != nil {
		if err == storage.ErrNotFound {
			return mpc.Handle{}, ErrInvalidRoundID
		}
		return mpc.Handle{}, err
	}
	if !bytes.Equal(ciphertext, receipt.EncryptedProposalID) {
		return mpc.Handle{}, ErrVoteMismatch
	}
	handle, err := m.coord.VerifyWinningVote(&mpc.VerifyWinningVoteRequest{
		RoundID:           roundID,
		Voter:             voter,
		Ciphertext:        ciphertext,
		VoterPubkey:       voterPubkey,
		Nonce:             nonce,
		WinningProposalID: phase.Winner,
	})
	if err != nil {
		return mpc.Handle{}, err
	}
	log.Infow("winning vote verification queued", "round", roundID,
		"voter", voter.String(), "handle", handle.String())
	return handle, nil
}

// ApplyVerifyCallback writes the winner flag into the voter's receipt when
// a verification settled true. A false result leaves the receipt untouched.
func (m *Machine) ApplyVerifyCallback(res *mpc.VerifyResult) error {
	if res == nil {
		return fmt.Errorf("nil verify result")
	}
	if !res.IsWinner {
		log.Debugw("vote verification negative", "round", res.RoundID,
			"voter", res.Voter.String())
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	receipt, err := m.stg.VoteReceipt(res.Voter, res.RoundID)
	if err != nil {
		return fmt.Errorf("could not load receipt for verified vote: %w", err)
	}
	receipt.IsWinner = true
	return m.stg.Update(func(txn *storage.Txn) error {
		return txn.SetVoteReceipt(receipt, res.RoundID)
	})
}

// DecryptVote queues the diagnostic decryption of a single ciphertext.
func (m *Machine) DecryptVote(ciphertext types.HexBytes,
	voterPubkey [types.EncryptionKeySize]byte, nonce [types.NonceSize]byte,
) (mpc.Handle, error) {
	return m.coord.DecryptVote(&mpc.DecryptVoteRequest{
		Ciphertext:  ciphertext,
		VoterPubkey: voterPubkey,
		Nonce:       nonce,
	})
}

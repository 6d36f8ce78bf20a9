package state

import "errors"

var (
	// ErrInsufficientFunds is returned when the payer balance does not cover
	// the proposal submission fee. Checked before any mutation.
	ErrInsufficientFunds = errors.New("insufficient funds for submission fee")
	// ErrInvalidRoundID is returned for votes or claims against a round that
	// is not the live one, or that never existed.
	ErrInvalidRoundID = errors.New("invalid round id")
	// ErrInvalidProposalID is returned when the proposal local index does
	// not reference a proposal of the round.
	ErrInvalidProposalID = errors.New("invalid proposal id")
	// ErrAlreadyVoted is returned when a vote receipt already exists for the
	// (voter, round) slot.
	ErrAlreadyVoted = errors.New("voter already voted in this round")
	// ErrRoundNotRevealed is returned when history or claims are attempted
	// before the round's winner is revealed.
	ErrRoundNotRevealed = errors.New("round winner not revealed")
	// ErrRoundAlreadyRevealed is returned when a reveal is requested twice
	// for the same round.
	ErrRoundAlreadyRevealed = errors.New("round winner already revealed")
	// ErrVoteMismatch is returned when a ciphertext does not match the
	// stored receipt, or when a claimant's receipt is not flagged winner.
	ErrVoteMismatch = errors.New("vote does not match")
	// ErrAlreadyClaimed is returned on a repeated reward claim for the same
	// claimant and round.
	ErrAlreadyClaimed = errors.New("reward already claimed")
	// ErrMaxProposalsReached is returned when the 1-byte local index space
	// of a round is exhausted.
	ErrMaxProposalsReached = errors.New("maximum proposals per round reached")
	// ErrInvalidAuthority is returned when an authority-gated operation is
	// called by anyone else.
	ErrInvalidAuthority = errors.New("caller is not the system authority")
	// ErrEscrowNotActive is returned when a submission targets a round whose
	// escrow no longer accepts fees.
	ErrEscrowNotActive = errors.New("round escrow is not active")
	// ErrNothingToClaim is returned when the computed reward share is zero
	// or the escrow cannot cover it.
	ErrNothingToClaim = errors.New("nothing to claim")
	// ErrNotInitialized is returned when an operation runs before InitSystem.
	ErrNotInitialized = errors.New("system not initialized")
)

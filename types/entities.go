package types

import "encoding/json"

// SystemState is the singleton root of the proposal system. The winning
// fields are only ever written by the round closer and cleared by the round
// reset; NextProposalID is monotonically non-decreasing for the lifetime of
// the system.
type SystemState struct {
	ID                HexBytes `json:"id"                cbor:"0,keyasint"`
	Authority         Identity `json:"authority"         cbor:"1,keyasint"`
	Nonce             HexBytes `json:"nonce"             cbor:"2,keyasint"`
	NextProposalID    uint64   `json:"nextProposalId"    cbor:"3,keyasint"`
	WinningProposalID *uint8   `json:"winningProposalId" cbor:"4,keyasint,omitempty"`
	WinningVoteCount  *uint64  `json:"winningVoteCount"  cbor:"5,keyasint,omitempty"`
	SubmissionFee     uint64   `json:"submissionFee"     cbor:"6,keyasint"`
}

func (s *SystemState) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// RoundMetadata tracks the live round cursor. CurrentRound increments exactly
// once per completed round, and the per-round counters reset at that same
// instant.
type RoundMetadata struct {
	CurrentRound            uint64 `json:"currentRound"            cbor:"0,keyasint"`
	ProposalsInCurrentRound uint8  `json:"proposalsInCurrentRound" cbor:"1,keyasint"`
	TotalVoters             uint64 `json:"totalVoters"             cbor:"2,keyasint"`
	RoundStarted            int64  `json:"roundStarted"            cbor:"3,keyasint"`
}

// Proposal is a round-scoped submission, addressed by (roundID, localIndex).
// It is immutable after creation except for VoteCount, which is only mutated
// by confidential tally callbacks.
type Proposal struct {
	RoundID     uint64   `json:"roundId"     cbor:"0,keyasint"`
	LocalIndex  uint8    `json:"localIndex"  cbor:"1,keyasint"`
	Title       string   `json:"title"       cbor:"2,keyasint"`
	Description string   `json:"description" cbor:"3,keyasint"`
	URL         string   `json:"url"         cbor:"4,keyasint"`
	Submitter   Identity `json:"submitter"   cbor:"5,keyasint"`
	VoteCount   uint64   `json:"voteCount"   cbor:"6,keyasint"`
	SubmittedAt int64    `json:"submittedAt" cbor:"7,keyasint"`
}

func (p *Proposal) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// VoteReceipt records a voter's encrypted choice for a round. Its existence
// at (voter, round) is the double-vote guard: creation fails if it already
// exists. The plaintext proposal id is never stored.
type VoteReceipt struct {
	Bump                 uint8    `json:"bump"                 cbor:"0,keyasint"`
	Voter                Identity `json:"voter"                cbor:"1,keyasint"`
	EncryptedProposalID  HexBytes `json:"encryptedProposalId"  cbor:"2,keyasint"`
	Timestamp            int64    `json:"timestamp"            cbor:"3,keyasint"`
	VoteEncryptionPubkey HexBytes `json:"voteEncryptionPubkey" cbor:"4,keyasint"`
	IsWinner             bool     `json:"isWinner"             cbor:"5,keyasint"`
}

// RoundHistory is the immutable summary of a completed round, written once
// by the round closer after the winner has been revealed.
type RoundHistory struct {
	RoundID           uint64   `json:"roundId"           cbor:"0,keyasint"`
	WinningProposalID uint8    `json:"winningProposalId" cbor:"1,keyasint"`
	TotalProposals    uint8    `json:"totalProposals"    cbor:"2,keyasint"`
	WinningVoteCount  uint64   `json:"winningVoteCount"  cbor:"3,keyasint"`
	TotalVoters       uint64   `json:"totalVoters"       cbor:"4,keyasint"`
	RevealedAt        int64    `json:"revealedAt"        cbor:"5,keyasint"`
	RevealedBy        Identity `json:"revealedBy"        cbor:"6,keyasint"`
	Theme             string   `json:"theme"             cbor:"7,keyasint"`
}

// RoundStatus is the lifecycle status of a round escrow.
type RoundStatus uint8

const (
	// RoundStatusActive means the round is ongoing and collecting fees.
	RoundStatusActive RoundStatus = iota
	// RoundStatusCompleted means the round ended and the escrow is available
	// for distribution.
	RoundStatusCompleted
	// RoundStatusClosed means the escrow has been fully distributed.
	RoundStatusClosed
)

func (s RoundStatus) String() string {
	switch s {
	case RoundStatusActive:
		return "active"
	case RoundStatusCompleted:
		return "completed"
	case RoundStatusClosed:
		return "closed"
	}
	return "unknown"
}

// RoundEscrow is the per-round fee pool. TotalCollected increases only on
// proposal submission and CurrentBalance == TotalCollected - TotalDistributed
// is an invariant checked on every claim.
type RoundEscrow struct {
	RoundID          uint64      `json:"roundId"          cbor:"0,keyasint"`
	TotalCollected   uint64      `json:"totalCollected"   cbor:"1,keyasint"`
	TotalDistributed uint64      `json:"totalDistributed" cbor:"2,keyasint"`
	CurrentBalance   uint64      `json:"currentBalance"   cbor:"3,keyasint"`
	RoundStatus      RoundStatus `json:"roundStatus"      cbor:"4,keyasint"`
	CreatedAt        int64       `json:"createdAt"        cbor:"5,keyasint"`
}

// Account is a funded participant balance, debited by proposal submission
// fees and credited by reward claims.
type Account struct {
	Balance uint64 `json:"balance" cbor:"0,keyasint"`
}

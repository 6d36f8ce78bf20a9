package api

import "github.com/artmural/mural/types"

// InitRequest initializes the system singletons.
type InitRequest struct {
	Authority     types.HexBytes `json:"authority"`
	SubmissionFee uint64         `json:"submissionFee,omitempty"`
}

// ProposalRequest submits a proposal into the live round.
type ProposalRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Submitter   types.HexBytes `json:"submitter"`
}

// VoteRequest casts an encrypted vote on the live round.
type VoteRequest struct {
	Voter               types.HexBytes `json:"voter"`
	RoundID             uint64         `json:"roundId"`
	ProposalIndex       uint8          `json:"proposalIndex"`
	EncryptedChoice     types.HexBytes `json:"encryptedChoice"`
	TransportCiphertext types.HexBytes `json:"transportCiphertext"`
	VoterPubkey         types.HexBytes `json:"voterPubkey"`
	TransportNonce      types.HexBytes `json:"transportNonce"`
}

// VoteResponse returns the created receipt and the tally computation handle.
type VoteResponse struct {
	Receipt *types.VoteReceipt `json:"receipt"`
	Handle  string             `json:"handle"`
}

// RevealRequest queues the winner reveal of the live round.
type RevealRequest struct {
	Authority types.HexBytes `json:"authority"`
}

// HandleResponse returns the computation handle of a queued request.
type HandleResponse struct {
	Handle string `json:"handle"`
}

// HistoryRequest archives the revealed round.
type HistoryRequest struct {
	Theme  string         `json:"theme"`
	Caller types.HexBytes `json:"caller"`
}

// ResetRequest runs the standalone counter reset.
type ResetRequest struct {
	Authority types.HexBytes `json:"authority"`
}

// VerifyVoteRequest queues a winning-vote verification for a receipt.
type VerifyVoteRequest struct {
	Voter       types.HexBytes `json:"voter"`
	RoundID     uint64         `json:"roundId"`
	Ciphertext  types.HexBytes `json:"ciphertext"`
	VoterPubkey types.HexBytes `json:"voterPubkey"`
	Nonce       types.HexBytes `json:"nonce"`
}

// DecryptVoteRequest queues a diagnostic decryption of a ciphertext.
type DecryptVoteRequest struct {
	Ciphertext  types.HexBytes `json:"ciphertext"`
	VoterPubkey types.HexBytes `json:"voterPubkey"`
	Nonce       types.HexBytes `json:"nonce"`
}

// ClaimRequest pays out the caller's reward share of an archived round.
type ClaimRequest struct {
	RoundID uint64         `json:"roundId"`
	Caller  types.HexBytes `json:"caller"`
}

// ClaimResponse returns the paid amount.
type ClaimResponse struct {
	Amount uint64 `json:"amount"`
}

// EncryptionKeyResponse returns the cluster public key voters encrypt to.
type EncryptionKeyResponse struct {
	PublicKey types.HexBytes `json:"publicKey"`
}

// ComputationResponse summarizes a settled computation.
type ComputationResponse struct {
	Handle     string `json:"handle"`
	Settled    bool   `json:"settled"`
	Error      string `json:"error,omitempty"`
	Winner     *uint8 `json:"winner,omitempty"`
	IsWinner   *bool  `json:"isWinner,omitempty"`
	ProposalID *uint8 `json:"proposalId,omitempty"`
}

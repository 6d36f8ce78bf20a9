// Package mpc is the boundary to the external confidential-computation
// cluster. It is the only caller of the cluster and exposes the four request
// types of the protocol: submit vote, reveal winner, verify winning vote and
// decrypt vote. Every request is asynchronous: queuing returns an opaque
// computation handle, and the caller awaits finalization of that handle
// separately, under a timeout. A timed-out wait means "unknown outcome", not
// failure: the computation may still settle later, and retries must use a
// fresh handle.
package mpc

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/artmural/mural/types"
)

var (
	// ErrComputationTimeout is returned by Await when the callback was not
	// observed within the bound. The outcome is indeterminate; the handle may
	// still settle later but must not be reused for a retry.
	ErrComputationTimeout = errors.New("computation not finalized within timeout")
	// ErrUnknownHandle is returned by Await for a handle that was never
	// issued by this coordinator.
	ErrUnknownHandle = errors.New("unknown computation handle")
	// ErrComputationAborted is carried by a callback whose computation was
	// explicitly rejected by the cluster.
	ErrComputationAborted = errors.New("computation aborted by the cluster")
)

// Handle is the opaque correlation token matching an asynchronous request to
// its eventual callback. Handles are single-use: one per queued computation,
// never reused across retries.
type Handle uuid.UUID

// NewHandle issues a fresh computation handle.
func NewHandle() Handle {
	return Handle(uuid.New())
}

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// SubmitVoteRequest queues a transport ciphertext for confidential tallying.
// The cluster decrypts it internally and increments the chosen proposal's
// counter without ever revealing the choice.
type SubmitVoteRequest struct {
	RoundID             uint64
	Voter               types.Identity
	TransportCiphertext types.HexBytes
	VoterPubkey         [types.EncryptionKeySize]byte
	Nonce               [types.NonceSize]byte
}

// VoteAppliedResult confirms a vote was folded into the confidential tally.
// It deliberately carries no information about the chosen proposal.
type VoteAppliedResult struct {
	RoundID uint64
	Voter   types.Identity
}

// RevealWinnerRequest asks the cluster for the arg-max of a round's tally.
type RevealWinnerRequest struct {
	SystemID types.HexBytes
	RoundID  uint64
}

// RevealResult is the decrypted outcome of a round. Counts holds the final
// tally of every proposal, indexed by local index; until this callback the
// counts only ever existed inside the cluster.
type RevealResult struct {
	RoundID           uint64
	WinningProposalID uint8
	WinningVoteCount  uint64
	Counts            []uint64
}

// VerifyWinningVoteRequest asks whether a receipt ciphertext decrypts to the
// round's winning proposal index.
type VerifyWinningVoteRequest struct {
	RoundID           uint64
	Voter             types.Identity
	Ciphertext        types.HexBytes
	VoterPubkey       [types.EncryptionKeySize]byte
	Nonce             [types.NonceSize]byte
	WinningProposalID uint8
}

// VerifyResult is the boolean outcome of a winning-vote verification.
type VerifyResult struct {
	RoundID  uint64
	Voter    types.Identity
	IsWinner bool
}

// DecryptVoteRequest is the operator-triggered diagnostic decryption of a
// single ciphertext.
type DecryptVoteRequest struct {
	Ciphertext  types.HexBytes
	VoterPubkey [types.EncryptionKeySize]byte
	Nonce       [types.NonceSize]byte
}

// DecryptResult carries the plaintext proposal index of a diagnostic
// decryption.
type DecryptResult struct {
	ProposalID uint8
}

// Callback is the settled outcome of a queued computation. Exactly one of
// the result fields is non-nil, matching the request type, unless Err is
// set.
type Callback struct {
	Handle      Handle
	Err         error
	VoteApplied *VoteAppliedResult
	Reveal      *RevealResult
	Verify      *VerifyResult
	Decrypt     *DecryptResult
}

// Engine is the external confidential-computation service. Implementations
// perform the actual decryption and arithmetic on encrypted values; the
// protocol core only ever sees the results declared here.
type Engine interface {
	// ClusterPubkey returns the x25519 public key voters encrypt to.
	ClusterPubkey() [types.EncryptionKeySize]byte
	SubmitVote(ctx context.Context, req *SubmitVoteRequest) (*VoteAppliedResult, error)
	RevealWinner(ctx context.Context, req *RevealWinnerRequest) (*RevealResult, error)
	VerifyWinningVote(ctx context.Context, req *VerifyWinningVoteRequest) (*VerifyResult, error)
	DecryptVote(ctx context.Context, req *DecryptVoteRequest) (*DecryptResult, error)
}

package mpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artmural/mural/crypto/ballotkey"
	"github.com/artmural/mural/types"
)

// LocalEngine is an in-process stand-in for the external confidential
// cluster. It holds the cluster x25519 secret, decrypts transport
// ciphertexts with the shared key of each voter and folds the choices into
// per-round tallies that never leave the engine until a reveal request.
type LocalEngine struct {
	secret [types.EncryptionKeySize]byte
	public [types.EncryptionKeySize]byte

	mu      sync.Mutex
	tallies map[uint64][]uint64

	// Latency delays every request, to exercise the asynchronous boundary
	// in tests. Zero means settle immediately.
	Latency time.Duration
}

// NewLocalEngine creates an engine with a freshly generated cluster keypair.
func NewLocalEngine() (*LocalEngine, error) {
	secret, public, err := ballotkey.GenerateClusterKey()
	if err != nil {
		return nil, fmt.Errorf("could not generate cluster key: %w", err)
	}
	return &LocalEngine{
		secret:  secret,
		public:  public,
		tallies: make(map[uint64][]uint64),
	}, nil
}

// ClusterPubkey returns the public half of the cluster keypair.
func (e *LocalEngine) ClusterPubkey() [types.EncryptionKeySize]byte {
	return e.public
}

func (e *LocalEngine) wait(ctx context.Context) error {
	if e.Latency == 0 {
		return nil
	}
	timer := time.NewTimer(e.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *LocalEngine) open(ciphertext types.HexBytes, pubkey [types.EncryptionKeySize]byte,
	nonce [types.NonceSize]byte) (uint8, error) {
	shared, err := ballotkey.SharedKey(e.secret, pubkey)
	if err != nil {
		return 0, fmt.Errorf("could not derive shared key: %w", err)
	}
	return ballotkey.Open(shared, nonce, ciphertext)
}

// SubmitVote decrypts the transport ciphertext and increments the chosen
// proposal's counter. The returned result does not disclose the choice.
func (e *LocalEngine) SubmitVote(ctx context.Context, req *SubmitVoteRequest) (*VoteAppliedResult, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	choice, err := e.open(req.TransportCiphertext, req.VoterPubkey, req.Nonce)
	if err != nil {
		return nil, fmt.Errorf("could not open transport ciphertext: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	tally := e.tallies[req.RoundID]
	for int(choice) >= len(tally) {
		tally = append(tally, 0)
	}
	tally[choice]++
	e.tallies[req.RoundID] = tally
	return &VoteAppliedResult{RoundID: req.RoundID, Voter: req.Voter}, nil
}

// RevealWinner computes the arg-max of the round's tally. Ties resolve to
// the lowest local index.
func (e *LocalEngine) RevealWinner(ctx context.Context, req *RevealWinnerRequest) (*RevealResult, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	tally := e.tallies[req.RoundID]
	if len(tally) == 0 {
		return nil, fmt.Errorf("no votes tallied for round %d", req.RoundID)
	}
	winner := 0
	for i, count := range tally {
		if count > tally[winner] {
			winner = i
		}
	}
	counts := make([]uint64, len(tally))
	copy(counts, tally)
	return &RevealResult{
		RoundID:           req.RoundID,
		WinningProposalID: uint8(winner),
		WinningVoteCount:  tally[winner],
		Counts:            counts,
	}, nil
}

// VerifyWinningVote decrypts the receipt ciphertext and compares it against
// the winning proposal index.
func (e *LocalEngine) VerifyWinningVote(ctx context.Context, req *VerifyWinningVoteRequest) (*VerifyResult, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	choice, err := e.open(req.Ciphertext, req.VoterPubkey, req.Nonce)
	if err != nil {
		return nil, fmt.Errorf("could not open receipt ciphertext: %w", err)
	}
	return &VerifyResult{
		RoundID:  req.RoundID,
		Voter:    req.Voter,
		IsWinner: choice == req.WinningProposalID,
	}, nil
}

// DecryptVote opens a single ciphertext and returns the plaintext index.
func (e *LocalEngine) DecryptVote(ctx context.Context, req *DecryptVoteRequest) (*DecryptResult, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	choice, err := e.open(req.Ciphertext, req.VoterPubkey, req.Nonce)
	if err != nil {
		return nil, fmt.Errorf("could not open ciphertext: %w", err)
	}
	return &DecryptResult{ProposalID: choice}, nil
}

// ResetRound clears the internal tally of a round after its lifecycle
// completes, so the next round with the same id starts from zero.
func (e *LocalEngine) ResetRound(roundID uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.tallies, roundID)
}

package storage

import (
	"errors"
	"fmt"

	"github.com/artmural/mural/types"
)

// RoundEscrow retrieves the fee pool of a round.
func (s *Storage) RoundEscrow(roundID uint64) (*types.RoundEscrow, error) {
	data, err := s.get(roundEscrowPrefix, RoundEscrowKey(roundID))
	if err != nil {
		return nil, err
	}
	e := &types.RoundEscrow{}
	if err := decodeArtifact(data, e); err != nil {
		return nil, fmt.Errorf("decode round escrow: %w", err)
	}
	return e, nil
}

// SetRoundEscrow stores the fee pool of a round inside the transaction.
func (txn *Txn) SetRoundEscrow(e *types.RoundEscrow) error {
	if e.CurrentBalance != e.TotalCollected-e.TotalDistributed {
		return fmt.Errorf("escrow conservation violated for round %d: %d != %d - %d",
			e.RoundID, e.CurrentBalance, e.TotalCollected, e.TotalDistributed)
	}
	data, err := encodeArtifact(e)
	if err != nil {
		return fmt.Errorf("encode round escrow: %w", err)
	}
	return txn.set(roundEscrowPrefix, RoundEscrowKey(e.RoundID), data)
}

// HasSubmitterClaim reports whether the winning submitter of a round has
// already consumed their claim.
func (s *Storage) HasSubmitterClaim(roundID uint64, claimant types.Identity) (bool, error) {
	return s.hasClaim(claimClassSubmitter, roundID, claimant)
}

// HasVoterClaim reports whether a winning voter of a round has already
// consumed their claim.
func (s *Storage) HasVoterClaim(roundID uint64, claimant types.Identity) (bool, error) {
	return s.hasClaim(claimClassVoter, roundID, claimant)
}

func (s *Storage) hasClaim(class byte, roundID uint64, claimant types.Identity) (bool, error) {
	if _, err := s.get(claimMarkerPrefix, claimMarkerKey(class, roundID, claimant)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ConsumeSubmitterClaim writes the one-time submitter claim marker.
func (txn *Txn) ConsumeSubmitterClaim(roundID uint64, claimant types.Identity) error {
	return txn.consumeClaim(claimClassSubmitter, roundID, claimant)
}

// ConsumeVoterClaim writes the one-time voter claim marker.
func (txn *Txn) ConsumeVoterClaim(roundID uint64, claimant types.Identity) error {
	return txn.consumeClaim(claimClassVoter, roundID, claimant)
}

func (txn *Txn) consumeClaim(class byte, roundID uint64, claimant types.Identity) error {
	key := claimMarkerKey(class, roundID, claimant)
	if _, err := txn.get(claimMarkerPrefix, key); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return txn.set(claimMarkerPrefix, key, []byte{1})
}

package storage

import (
	"errors"
	"fmt"

	"github.com/artmural/mural/types"
)

// RoundHistory retrieves the archived summary of a round.
func (s *Storage) RoundHistory(systemID types.HexBytes, roundID uint64) (*types.RoundHistory, error) {
	data, err := s.get(roundHistoryPrefix, RoundHistoryKey(systemID, roundID))
	if err != nil {
		return nil, err
	}
	h := &types.RoundHistory{}
	if err := decodeArtifact(data, h); err != nil {
		return nil, fmt.Errorf("decode round history: %w", err)
	}
	return h, nil
}

// CreateRoundHistory stores the archived summary of a round inside the
// transaction. The record is create-once: history is immutable.
func (txn *Txn) CreateRoundHistory(systemID types.HexBytes, h *types.RoundHistory) error {
	key := RoundHistoryKey(systemID, h.RoundID)
	if _, err := txn.get(roundHistoryPrefix, key); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	data, err := encodeArtifact(h)
	if err != nil {
		return fmt.Errorf("encode round history: %w", err)
	}
	return txn.set(roundHistoryPrefix, key, data)
}

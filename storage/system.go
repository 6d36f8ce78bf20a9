package storage

import (
	"fmt"

	"github.com/artmural/mural/types"
)

// The two singletons are stored under their domain tag with an empty key.

// SystemState retrieves the system state singleton. Returns ErrNotFound if
// the system has not been initialized.
func (s *Storage) SystemState() (*types.SystemState, error) {
	data, err := s.get(systemStatePrefix, nil)
	if err != nil {
		return nil, err
	}
	st := &types.SystemState{}
	if err := decodeArtifact(data, st); err != nil {
		return nil, fmt.Errorf("decode system state: %w", err)
	}
	return st, nil
}

// SetSystemState stores the system state singleton inside the transaction.
func (txn *Txn) SetSystemState(st *types.SystemState) error {
	data, err := encodeArtifact(st)
	if err != nil {
		return fmt.Errorf("encode system state: %w", err)
	}
	return txn.set(systemStatePrefix, nil, data)
}

// RoundMetadata retrieves the round cursor singleton.
func (s *Storage) RoundMetadata() (*types.RoundMetadata, error) {
	data, err := s.get(roundMetadataPrefix, nil)
	if err != nil {
		return nil, err
	}
	md := &types.RoundMetadata{}
	if err := decodeArtifact(data, md); err != nil {
		return nil, fmt.Errorf("decode round metadata: %w", err)
	}
	return md, nil
}

// SetRoundMetadata stores the round cursor singleton inside the transaction.
func (txn *Txn) SetRoundMetadata(md *types.RoundMetadata) error {
	data, err := encodeArtifact(md)
	if err != nil {
		return fmt.Errorf("encode round metadata: %w", err)
	}
	return txn.set(roundMetadataPrefix, nil, data)
}

package storage

import (
	"errors"
	"fmt"

	"github.com/artmural/mural/types"
)

// Account balances back the escrow funding flow: submission fees are debited
// from an account before any other state mutates, and claims credit the
// claimant's account.

// Account retrieves a participant balance. An unknown identity has a zero
// balance rather than being an error.
func (s *Storage) Account(id types.Identity) (*types.Account, error) {
	data, err := s.get(accountPrefix, id[:])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &types.Account{}, nil
		}
		return nil, err
	}
	a := &types.Account{}
	if err := decodeArtifact(data, a); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return a, nil
}

// SetAccount stores a participant balance inside the transaction.
func (txn *Txn) SetAccount(id types.Identity, a *types.Account) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return txn.set(accountPrefix, id[:], data)
}

package storage

import (
	"errors"
	"fmt"

	"github.com/artmural/mural/types"
)

// Vote receipts are stored in their fixed 106-byte wire layout instead of
// CBOR, so polling clients can probe the winner flag at its fixed offset
// without deserializing the record.

// VoteReceipt retrieves the receipt of (voter, round). Returns ErrNotFound
// if the voter has not voted in that round.
func (s *Storage) VoteReceipt(voter types.Identity, roundID uint64) (*types.VoteReceipt, error) {
	data, err := s.get(voteReceiptPrefix, VoteReceiptKey(voter, roundID))
	if err != nil {
		return nil, err
	}
	r := &types.VoteReceipt{}
	if err := r.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode vote receipt: %w", err)
	}
	return r, nil
}

// VoteReceiptRaw retrieves the serialized 106-byte receipt, for clients that
// only need the fixed-offset winner flag.
func (s *Storage) VoteReceiptRaw(voter types.Identity, roundID uint64) ([]byte, error) {
	return s.get(voteReceiptPrefix, VoteReceiptKey(voter, roundID))
}

// CreateVoteReceipt stores a new receipt inside the transaction. The receipt
// slot is create-once: if a receipt already exists at (voter, round) the
// call fails with ErrAlreadyExists, which is the double-vote rejection.
func (txn *Txn) CreateVoteReceipt(r *types.VoteReceipt, roundID uint64) error {
	key := VoteReceiptKey(r.Voter, roundID)
	if _, err := txn.get(voteReceiptPrefix, key); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	data, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode vote receipt: %w", err)
	}
	return txn.set(voteReceiptPrefix, key, data)
}

// SetVoteReceipt overwrites an existing receipt, used only by the verified
// winning-vote callback to flip the winner flag.
func (txn *Txn) SetVoteReceipt(r *types.VoteReceipt, roundID uint64) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode vote receipt: %w", err)
	}
	return txn.set(voteReceiptPrefix, VoteReceiptKey(r.Voter, roundID), data)
}

package types

import (
	"encoding/binary"
	"fmt"
)

// Fixed wire layout of a VoteReceipt:
//
//	bump(1) | voter(32) | encryptedProposalId(32) | timestamp(8, LE) |
//	voteEncryptionPubkey(32) | isWinner(1)
//
// Polling clients read the winner flag directly at VoteReceiptWinnerOffset
// without deserializing the whole record.
const (
	VoteReceiptSize         = 106
	VoteReceiptWinnerOffset = 105
)

// MarshalBinary encodes the receipt into its fixed 106-byte wire layout.
func (r *VoteReceipt) MarshalBinary() ([]byte, error) {
	if len(r.EncryptedProposalID) != CiphertextSize {
		return nil, fmt.Errorf("invalid encrypted proposal id length: %d", len(r.EncryptedProposalID))
	}
	if len(r.VoteEncryptionPubkey) != EncryptionKeySize {
		return nil, fmt.Errorf("invalid encryption pubkey length: %d", len(r.VoteEncryptionPubkey))
	}
	buf := make([]byte, VoteReceiptSize)
	buf[0] = r.Bump
	copy(buf[1:33], r.Voter[:])
	copy(buf[33:65], r.EncryptedProposalID)
	binary.LittleEndian.PutUint64(buf[65:73], uint64(r.Timestamp))
	copy(buf[73:105], r.VoteEncryptionPubkey)
	if r.IsWinner {
		buf[VoteReceiptWinnerOffset] = 1
	}
	return buf, nil
}

// UnmarshalBinary decodes the fixed 106-byte wire layout.
func (r *VoteReceipt) UnmarshalBinary(data []byte) error {
	if len(data) != VoteReceiptSize {
		return fmt.Errorf("invalid vote receipt length: %d, expected %d", len(data), VoteReceiptSize)
	}
	r.Bump = data[0]
	copy(r.Voter[:], data[1:33])
	r.EncryptedProposalID = make(HexBytes, CiphertextSize)
	copy(r.EncryptedProposalID, data[33:65])
	r.Timestamp = int64(binary.LittleEndian.Uint64(data[65:73]))
	r.VoteEncryptionPubkey = make(HexBytes, EncryptionKeySize)
	copy(r.VoteEncryptionPubkey, data[73:105])
	r.IsWinner = data[VoteReceiptWinnerOffset] != 0
	return nil
}

// ReceiptIsWinner probes the winner flag of a serialized receipt without
// decoding the rest of the record.
func ReceiptIsWinner(data []byte) (bool, error) {
	if len(data) != VoteReceiptSize {
		return false, fmt.Errorf("invalid vote receipt length: %d, expected %d", len(data), VoteReceiptSize)
	}
	return data[VoteReceiptWinnerOffset] != 0, nil
}

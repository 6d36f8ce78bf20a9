package types

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestVoteReceiptWireLayout(t *testing.T) {
	c := qt.New(t)

	var voter Identity
	for i := range voter {
		voter[i] = byte(i + 1)
	}
	enc := make(HexBytes, CiphertextSize)
	pub := make(HexBytes, EncryptionKeySize)
	for i := 0; i < CiphertextSize; i++ {
		enc[i] = byte(0xa0 ^ i)
		pub[i] = byte(0x5f ^ i)
	}

	r := &VoteReceipt{
		Bump:                 254,
		Voter:                voter,
		EncryptedProposalID:  enc,
		Timestamp:            1700000000,
		VoteEncryptionPubkey: pub,
		IsWinner:             true,
	}

	data, err := r.MarshalBinary()
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.HasLen, VoteReceiptSize)
	c.Assert(data[0], qt.Equals, byte(254))
	c.Assert(data[VoteReceiptWinnerOffset], qt.Equals, byte(1))

	decoded := &VoteReceipt{}
	c.Assert(decoded.UnmarshalBinary(data), qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, r)
}

func TestReceiptWinnerFlagProbe(t *testing.T) {
	c := qt.New(t)

	r := &VoteReceipt{
		EncryptedProposalID:  make(HexBytes, CiphertextSize),
		VoteEncryptionPubkey: make(HexBytes, EncryptionKeySize),
	}
	data, err := r.MarshalBinary()
	c.Assert(err, qt.IsNil)

	won, err := ReceiptIsWinner(data)
	c.Assert(err, qt.IsNil)
	c.Assert(won, qt.IsFalse)

	data[VoteReceiptWinnerOffset] = 1
	won, err = ReceiptIsWinner(data)
	c.Assert(err, qt.IsNil)
	c.Assert(won, qt.IsTrue)

	_, err = ReceiptIsWinner(data[:50])
	c.Assert(err, qt.IsNotNil)
}

func TestVoteReceiptInvalidLengths(t *testing.T) {
	c := qt.New(t)

	r := &VoteReceipt{
		EncryptedProposalID:  make(HexBytes, 31),
		VoteEncryptionPubkey: make(HexBytes, EncryptionKeySize),
	}
	_, err := r.MarshalBinary()
	c.Assert(err, qt.IsNotNil)

	c.Assert(new(VoteReceipt).UnmarshalBinary(make([]byte, 105)), qt.IsNotNil)
}

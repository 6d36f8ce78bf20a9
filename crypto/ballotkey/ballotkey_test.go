package ballotkey

import (
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"

	"github.com/artmural/mural/types"
)

func testSignature(c *qt.C, roundID uint64) ([]byte, types.Identity) {
	priv, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	voter := IdentityFromPub(&priv.PublicKey)
	sig, err := Sign(RoundMessage(roundID, voter), priv)
	c.Assert(err, qt.IsNil)
	return sig, voter
}

func TestDerivationDeterminism(t *testing.T) {
	c := qt.New(t)

	sig, _ := testSignature(c, 0)
	first, err := DeriveRoundKey(sig)
	c.Assert(err, qt.IsNil)

	// re-deriving from the same signature must reproduce identical bytes
	for i := 0; i < 10; i++ {
		k, err := DeriveRoundKey(sig)
		c.Assert(err, qt.IsNil)
		c.Assert(k.Public, qt.Equals, first.Public)
		c.Assert(k.ChoiceNonce(3), qt.Equals, first.ChoiceNonce(3))
		c.Assert(k.TransportNonce(3), qt.Equals, first.TransportNonce(3))
	}
}

func TestNonceSeparation(t *testing.T) {
	c := qt.New(t)

	sig, _ := testSignature(c, 1)
	k, err := DeriveRoundKey(sig)
	c.Assert(err, qt.IsNil)

	// different choices yield different nonces
	seen := map[[types.NonceSize]byte]bool{}
	for p := 0; p < 16; p++ {
		n := k.ChoiceNonce(uint8(p))
		c.Assert(seen[n], qt.IsFalse)
		seen[n] = true
	}

	// the transport nonce never collides with the receipt nonce
	for p := 0; p < 16; p++ {
		c.Assert(k.TransportNonce(uint8(p)), qt.Not(qt.Equals), k.ChoiceNonce(uint8(p)))
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	c := qt.New(t)

	clusterSec, clusterPub, err := GenerateClusterKey()
	c.Assert(err, qt.IsNil)

	sig, _ := testSignature(c, 2)
	k, err := DeriveRoundKey(sig)
	c.Assert(err, qt.IsNil)

	const choice = uint8(7)
	receiptCt, err := k.SealChoice(choice, clusterPub)
	c.Assert(err, qt.IsNil)
	transportCt, err := k.SealTransport(choice, clusterPub)
	c.Assert(err, qt.IsNil)
	c.Assert(receiptCt, qt.Not(qt.DeepEquals), transportCt)

	// the voter can open their own receipt ciphertext
	got, err := k.OpenChoice(receiptCt, choice, clusterPub)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, choice)

	// the cluster can open both with its private scalar
	shared, err := SharedKey(clusterSec, k.Public)
	c.Assert(err, qt.IsNil)
	got, err = Open(shared, k.ChoiceNonce(choice), receiptCt)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, choice)
	got, err = Open(shared, k.TransportNonce(choice), transportCt)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, choice)

	// opening under the wrong nonce fails the padding check
	_, err = Open(shared, k.ChoiceNonce(choice+1), receiptCt)
	c.Assert(err, qt.IsNotNil)
}

func TestRecoverIdentity(t *testing.T) {
	c := qt.New(t)

	priv, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	voter := IdentityFromPub(&priv.PublicKey)

	msg := RoundMessage(4, voter)
	sig, err := Sign(msg, priv)
	c.Assert(err, qt.IsNil)

	recovered, err := RecoverIdentity(msg, sig)
	c.Assert(err, qt.IsNil)
	c.Assert(recovered, qt.Equals, voter)

	// a different message does not recover the same identity
	other, err := RecoverIdentity(RoundMessage(5, voter), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(other, qt.Not(qt.Equals), voter)
}

func TestDeriveRoundKeyRejectsShortSignature(t *testing.T) {
	c := qt.New(t)
	_, err := DeriveRoundKey(make([]byte, 64))
	c.Assert(err, qt.IsNotNil)
}

// Package ballotkey implements the ballot secrecy scheme: a wallet signature
// over a fixed round message is hashed into a round-scoped x25519 keypair and
// per-choice nonces. No secret material is ever stored; everything is
// recomputed on demand from a fresh signature. Losing the ability to produce
// the signature means losing the ability to decrypt one's own historical
// vote, which is an accepted tradeoff of the scheme.
package ballotkey

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/curve25519"

	"github.com/artmural/mural/types"
)

// transportDomain separates the nonce of the transport ciphertext (consumed
// by the confidential tally cluster) from the nonce of the self-decryptable
// receipt ciphertext. Without it the two ciphertexts of the same choice
// would share a keystream.
const transportDomain = "transport"

// SignatureSize is the length of an Ethereum-style recoverable signature.
const SignatureSize = 65

// RoundMessage returns the fixed message a voter signs to derive their
// ballot key for a round. The message binds the protocol name, the round and
// the voter identity, so signatures cannot be replayed across rounds or
// voters.
func RoundMessage(roundID uint64, voter types.Identity) []byte {
	return fmt.Appendf(nil, "ArtMural Round %d\nVoter: %s\nThis signature derives my ballot encryption key. Do not share it.", roundID, voter)
}

// RoundKey is a round-scoped ballot encryption key derived from a wallet
// signature. The private scalar is kept internal; only the x25519 public key
// is ever published.
type RoundKey struct {
	signature []byte
	secret    [32]byte
	Public    [32]byte
}

// DeriveRoundKey derives the round-scoped keypair from a recoverable wallet
// signature. The derivation is a pure function of the signature bytes:
// re-deriving from the same signature yields identical keys and nonces.
func DeriveRoundKey(signature []byte) (*RoundKey, error) {
	if len(signature) != SignatureSize {
		return nil, fmt.Errorf("invalid signature length: %d, expected %d", len(signature), SignatureSize)
	}
	k := &RoundKey{signature: append([]byte(nil), signature...)}
	k.secret = sha256.Sum256(signature)
	pub, err := curve25519.X25519(k.secret[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	copy(k.Public[:], pub)
	return k, nil
}

// ChoiceNonce derives the nonce for the receipt ciphertext of proposal
// choice p. Different choices yield different nonces, so encryptions of
// different choices are not linkable by nonce reuse.
func (k *RoundKey) ChoiceNonce(p uint8) [types.NonceSize]byte {
	h := sha256.Sum256(append(append([]byte(nil), k.signature...), p))
	var nonce [types.NonceSize]byte
	copy(nonce[:], h[:types.NonceSize])
	return nonce
}

// TransportNonce derives the nonce for the transport ciphertext of proposal
// choice p, domain-separated from ChoiceNonce.
func (k *RoundKey) TransportNonce(p uint8) [types.NonceSize]byte {
	buf := append(append([]byte(nil), k.signature...), p)
	buf = append(buf, transportDomain...)
	h := sha256.Sum256(buf)
	var nonce [types.NonceSize]byte
	copy(nonce[:], h[:types.NonceSize])
	return nonce
}

// SharedKey computes the symmetric key shared with the tally cluster: the
// SHA-256 hash of the x25519 shared point. Both ciphertexts of a choice use
// this key, with their respective nonces.
func (k *RoundKey) SharedKey(clusterPub [32]byte) ([32]byte, error) {
	return SharedKey(k.secret, clusterPub)
}

// SealChoice encrypts proposal choice p into the self-decryptable receipt
// ciphertext stored in the vote receipt.
func (k *RoundKey) SealChoice(p uint8, clusterPub [32]byte) ([]byte, error) {
	key, err := k.SharedKey(clusterPub)
	if err != nil {
		return nil, err
	}
	return Seal(key, k.ChoiceNonce(p), p), nil
}

// SealTransport encrypts proposal choice p into the transport ciphertext
// consumed by the confidential tally cluster.
func (k *RoundKey) SealTransport(p uint8, clusterPub [32]byte) ([]byte, error) {
	key, err := k.SharedKey(clusterPub)
	if err != nil {
		return nil, err
	}
	return Seal(key, k.TransportNonce(p), p), nil
}

// OpenChoice decrypts a receipt ciphertext back to the proposal choice. The
// caller must supply the candidate choice p to re-derive its nonce; the
// ciphertext only opens under the nonce it was sealed with.
func (k *RoundKey) OpenChoice(ct []byte, p uint8, clusterPub [32]byte) (uint8, error) {
	key, err := k.SharedKey(clusterPub)
	if err != nil {
		return 0, err
	}
	return Open(key, k.ChoiceNonce(p), ct)
}

// SharedKey computes the x25519 shared symmetric key between a private
// scalar and a peer public key. Used by both the voter side and the tally
// cluster side.
func SharedKey(secret, peerPub [32]byte) ([32]byte, error) {
	var key [32]byte
	shared, err := curve25519.X25519(secret[:], peerPub[:])
	if err != nil {
		return key, fmt.Errorf("x25519: %w", err)
	}
	return sha256.Sum256(shared), nil
}

// Seal encrypts a proposal choice into a fixed 32-byte ciphertext using
// AES-256-CTR. The plaintext block is the choice byte followed by zero
// padding; the padding doubles as an integrity check on decryption.
func Seal(key [32]byte, nonce [types.NonceSize]byte, p uint8) []byte {
	var block [types.CiphertextSize]byte
	block[0] = p
	ct := make([]byte, types.CiphertextSize)
	ctrCipher(key, nonce).XORKeyStream(ct, block[:])
	return ct
}

// Open decrypts a 32-byte choice ciphertext. It fails if the ciphertext does
// not decode to a valid padded choice block under the given key and nonce.
func Open(key [32]byte, nonce [types.NonceSize]byte, ct []byte) (uint8, error) {
	if len(ct) != types.CiphertextSize {
		return 0, fmt.Errorf("invalid ciphertext length: %d", len(ct))
	}
	var block [types.CiphertextSize]byte
	ctrCipher(key, nonce).XORKeyStream(block[:], ct)
	for _, b := range block[1:] {
		if b != 0 {
			return 0, fmt.Errorf("ciphertext does not decode to a proposal choice")
		}
	}
	return block[0], nil
}

func ctrCipher(key [32]byte, nonce [types.NonceSize]byte) cipher.Stream {
	b, err := aes.NewCipher(key[:])
	if err != nil {
		panic(err) // key size is fixed at 32 bytes
	}
	return cipher.NewCTR(b, nonce[:])
}

// GenerateClusterKey generates a fresh x25519 keypair for the tally cluster.
func GenerateClusterKey() (secret, public [32]byte, err error) {
	if _, err = rand.Read(secret[:]); err != nil {
		return secret, public, err
	}
	pub, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		return secret, public, err
	}
	copy(public[:], pub)
	return secret, public, nil
}

// HashMessage hashes a message with the Ethereum personal-message prefix, so
// derivation signatures can be produced by any standard wallet.
func HashMessage(msg []byte) []byte {
	return ethcrypto.Keccak256(fmt.Appendf(nil, "\x19Ethereum Signed Message:\n%d", len(msg)), msg)
}

// Sign signs a message with the wallet private key, producing a recoverable
// signature suitable for DeriveRoundKey and RecoverIdentity.
func Sign(msg []byte, priv *ecdsa.PrivateKey) ([]byte, error) {
	return ethcrypto.Sign(HashMessage(msg), priv)
}

// RecoverIdentity recovers the protocol identity of the signer of msg.
func RecoverIdentity(msg, signature []byte) (types.Identity, error) {
	var id types.Identity
	if len(signature) != SignatureSize {
		return id, fmt.Errorf("invalid signature length: %d, expected %d", len(signature), SignatureSize)
	}
	pub, err := ethcrypto.SigToPub(HashMessage(msg), signature)
	if err != nil {
		return id, fmt.Errorf("recover public key: %w", err)
	}
	return IdentityFromPub(pub), nil
}

// IdentityFromPub derives the 32-byte protocol identity from a wallet public
// key: the keccak256 hash of the uncompressed key bytes.
func IdentityFromPub(pub *ecdsa.PublicKey) types.Identity {
	var id types.Identity
	copy(id[:], ethcrypto.Keccak256(ethcrypto.FromECDSAPub(pub)[1:]))
	return id
}

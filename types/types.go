package types

import (
	"encoding/hex"
	"fmt"

	"github.com/artmural/mural/util"
)

// HexBytes is a []byte which encodes as hexadecimal in JSON, instead of the
// default base64.
type HexBytes []byte

func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (b *HexBytes) SetString(s string) error {
	dec, err := hex.DecodeString(util.TrimHex(s))
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+2)
	enc[0] = '"'
	hex.Encode(enc[1:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	data = data[1 : len(data)-1]
	// strip optional "0x" prefix
	if len(data) >= 2 && data[0] == '0' && (data[1] == 'x' || data[1] == 'X') {
		data = data[2:]
	}
	dec := make([]byte, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(dec, data); err != nil {
		return err
	}
	*b = dec
	return nil
}

// IdentitySize is the byte length of a protocol identity.
const IdentitySize = 32

// Identity is the 32-byte identifier of a protocol participant. It is the
// keccak256 hash of the participant's uncompressed wallet public key, so it
// can be recovered from any wallet signature.
type Identity [IdentitySize]byte

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is the zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// IdentityFromBytes builds an Identity from a 32-byte slice.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentitySize {
		return id, fmt.Errorf("invalid identity length: %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id Identity) MarshalJSON() ([]byte, error) {
	return HexBytes(id[:]).MarshalJSON()
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	var b HexBytes
	if err := b.UnmarshalJSON(data); err != nil {
		return err
	}
	dec, err := IdentityFromBytes(b)
	if err != nil {
		return err
	}
	*id = dec
	return nil
}

// MarshalBinary implements the BinaryMarshaler interface.
func (id Identity) MarshalBinary() ([]byte, error) {
	return id[:], nil
}

// UnmarshalBinary implements the BinaryUnmarshaler interface.
func (id *Identity) UnmarshalBinary(data []byte) error {
	dec, err := IdentityFromBytes(data)
	if err != nil {
		return err
	}
	*id = dec
	return nil
}

package storage

import (
	"encoding/binary"

	"github.com/artmural/mural/types"
)

// Key builders for the deterministic addressing scheme. Round ids are
// 8-byte little-endian, local indexes a single byte, so keys sort by round
// and then by submission order.

func roundKey(roundID uint64) []byte {
	k := make([]byte, 8)
	binary.LittleEndian.PutUint64(k, roundID)
	return k
}

// ProposalKey addresses a proposal by (system, round, local index).
func ProposalKey(systemID types.HexBytes, roundID uint64, localIndex uint8) []byte {
	k := make([]byte, 0, len(systemID)+9)
	k = append(k, systemID...)
	k = append(k, roundKey(roundID)...)
	return append(k, localIndex)
}

// VoteReceiptKey addresses the single receipt slot of (voter, round).
func VoteReceiptKey(voter types.Identity, roundID uint64) []byte {
	k := make([]byte, 0, types.IdentitySize+8)
	k = append(k, voter[:]...)
	return append(k, roundKey(roundID)...)
}

// RoundHistoryKey addresses the archived summary of a round.
func RoundHistoryKey(systemID types.HexBytes, roundID uint64) []byte {
	k := make([]byte, 0, len(systemID)+8)
	k = append(k, systemID...)
	return append(k, roundKey(roundID)...)
}

// RoundEscrowKey addresses the fee pool of a round.
func RoundEscrowKey(roundID uint64) []byte {
	return roundKey(roundID)
}

// claim marker classes, one-time-consumable per (class, round, claimant)
const (
	claimClassSubmitter = 0x01
	claimClassVoter     = 0x02
)

func claimMarkerKey(class byte, roundID uint64, claimant types.Identity) []byte {
	k := make([]byte, 0, 9+types.IdentitySize)
	k = append(k, class)
	k = append(k, roundKey(roundID)...)
	return append(k, claimant[:]...)
}

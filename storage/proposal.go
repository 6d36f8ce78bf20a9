package storage

import (
	"fmt"

	"github.com/artmural/mural/types"
)

// Proposal retrieves a proposal by (system, round, local index).
func (s *Storage) Proposal(systemID types.HexBytes, roundID uint64, localIndex uint8) (*types.Proposal, error) {
	data, err := s.get(proposalPrefix, ProposalKey(systemID, roundID, localIndex))
	if err != nil {
		return nil, err
	}
	p := &types.Proposal{}
	if err := decodeArtifact(data, p); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return p, nil
}

// ListProposals returns the proposals of a round ordered by local index.
func (s *Storage) ListProposals(systemID types.HexBytes, roundID uint64) ([]*types.Proposal, error) {
	keyPrefix := ProposalKey(systemID, roundID, 0)
	keyPrefix = keyPrefix[:len(keyPrefix)-1] // all local indexes of the round
	var proposals []*types.Proposal
	var decodeErr error
	if err := s.iterate(proposalPrefix, keyPrefix, func(_, v []byte) bool {
		p := &types.Proposal{}
		if decodeErr = decodeArtifact(v, p); decodeErr != nil {
			return false
		}
		proposals = append(proposals, p)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode proposal: %w", decodeErr)
	}
	return proposals, nil
}

// SetProposal stores a proposal inside the transaction.
func (txn *Txn) SetProposal(systemID types.HexBytes, p *types.Proposal) error {
	data, err := encodeArtifact(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	return txn.set(proposalPrefix, ProposalKey(systemID, p.RoundID, p.LocalIndex), data)
}

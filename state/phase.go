package state

import "fmt"

// PhaseKind enumerates the lifecycle phases of a round. Proposals and votes
// are both accepted while a round is Open; a reveal moves it to Revealed;
// writing the round history archives it and opens the next round.
type PhaseKind int

const (
	PhaseOpen PhaseKind = iota
	PhaseRevealed
	PhaseArchived
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseOpen:
		return "open"
	case PhaseRevealed:
		return "revealed"
	case PhaseArchived:
		return "archived"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Phase is the tagged lifecycle state of one round. The wire format stores
// it as optional fields on the system singleton; operations match on this
// variant instead so that illegal transitions are rejected explicitly.
type Phase struct {
	Kind PhaseKind
	// Winner and WinningVoteCount are meaningful for Revealed and Archived.
	Winner           uint8
	WinningVoteCount uint64
}

// RoundPhase computes the lifecycle phase of a round from stored state.
func (m *Machine) RoundPhase(roundID uint64) (Phase, error) {
	sys, err := m.stg.SystemState()
	if err != nil {
		return Phase{}, ErrNotInitialized
	}
	meta, err := m.stg.RoundMetadata()
	if err != nil {
		return Phase{}, ErrNotInitialized
	}
	// a written history archives the round even before the reset step runs
	if hist, err := m.stg.RoundHistory(sys.ID, roundID); err == nil {
		return Phase{
			Kind:             PhaseArchived,
			Winner:           hist.WinningProposalID,
			WinningVoteCount: hist.WinningVoteCount,
		}, nil
	}
	switch {
	case roundID != meta.CurrentRound:
		return Phase{}, ErrInvalidRoundID
	case sys.WinningProposalID != nil:
		return Phase{
			Kind:             PhaseRevealed,
			Winner:           *sys.WinningProposalID,
			WinningVoteCount: *sys.WinningVoteCount,
		}, nil
	default:
		return Phase{Kind: PhaseOpen}, nil
	}
}

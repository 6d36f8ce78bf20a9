// Package state implements the round lifecycle of the protocol: proposal
// submission into the live round, encrypted voting with a one-slot receipt
// per voter, winner reveal through the confidential tally coordinator,
// round archival and reset, and escrowed reward claims. Every operation is
// serialized and commits through a single storage transaction, so a failed
// precondition leaves no partial state.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/storage"
	"github.com/artmural/mural/types"
	"github.com/artmural/mural/util"
)

// Machine is the protocol state machine. All mutations of the system
// singletons and round records go through its methods; the tally service is
// expected to be the only caller of the Apply*Callback methods, giving each
// asynchronously written field a single writer path.
type Machine struct {
	mu    sync.Mutex
	stg   *storage.Storage
	coord *mpc.Coordinator

	// splitReset leaves the round reset to an explicit ResetVoteCounters
	// call instead of folding it into CreateRoundHistory.
	splitReset bool
}

// New creates a Machine over the given storage and tally coordinator.
func New(stg *storage.Storage, coord *mpc.Coordinator) *Machine {
	return &Machine{stg: stg, coord: coord}
}

// SetSplitReset selects the deployment variant where CreateRoundHistory
// only archives, and the counter reset is a separate ResetVoteCounters
// call.
func (m *Machine) SetSplitReset(split bool) {
	m.splitReset = split
}

// Storage exposes the backing store for read-only entity fetches.
func (m *Machine) Storage() *storage.Storage {
	return m.stg
}

// Coordinator exposes the tally coordinator, for awaiting handles.
func (m *Machine) Coordinator() *mpc.Coordinator {
	return m.coord
}

// InitSystem creates the system singletons: system state with a fresh
// system id, round metadata at round 0 and the active escrow for round 0.
// A zero submissionFee selects the default fee.
func (m *Machine) InitSystem(authority types.Identity, submissionFee uint64) (*types.SystemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.stg.SystemState(); err == nil {
		return nil, fmt.Errorf("system already initialized")
	}
	if submissionFee == 0 {
		submissionFee = types.DefaultSubmissionFee
	}
	sys := &types.SystemState{
		ID:            util.RandomBytes(32),
		Authority:     authority,
		Nonce:         util.RandomBytes(16),
		SubmissionFee: submissionFee,
	}
	now := time.Now().Unix()
	err := m.stg.Update(func(txn *storage.Txn) error {
		if err := txn.SetSystemState(sys); err != nil {
			return err
		}
		if err := txn.SetRoundMetadata(&types.RoundMetadata{RoundStarted: now}); err != nil {
			return err
		}
		return txn.SetRoundEscrow(&types.RoundEscrow{
			RoundID:     0,
			RoundStatus: types.RoundStatusActive,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Infow("system initialized", "systemID", sys.ID.String(),
		"authority", authority.String(), "submissionFee", submissionFee)
	return sys, nil
}

// Credit adds funds to a participant account. The real ledger substrate
// owns balances; this is the local faucet path for deployments backed by
// this store.
func (m *Machine) Credit(id types.Identity, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, err := m.stg.Account(id)
	if err != nil {
		return err
	}
	account.Balance += amount
	return m.stg.Update(func(txn *storage.Txn) error {
		return txn.SetAccount(id, account)
	})
}

// loadSystem fetches both singletons, mapping absence to ErrNotInitialized.
func (m *Machine) loadSystem() (*types.SystemState, *types.RoundMetadata, error) {
	sys, err := m.stg.SystemState()
	if err != nil {
		return nil, nil, ErrNotInitialized
	}
	meta, err := m.stg.RoundMetadata()
	if err != nil {
		return nil, nil, ErrNotInitialized
	}
	return sys, meta, nil
}

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/mpc"
	"github.com/artmural/mural/state"
)

// TallyService applies settled confidential computations to protocol state.
// It is the single consumer of the coordinator's callback stream, so every
// asynchronously written field (proposal counts, the winner, receipt
// flags) has exactly one writer goroutine.
type TallyService struct {
	machine *state.Machine
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTally creates a TallyService over the given machine.
func NewTally(machine *state.Machine) *TallyService {
	return &TallyService{machine: machine}
}

// Start begins applying callbacks. It returns an error if the service is
// already running.
func (ts *TallyService) Start(ctx context.Context) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, ts.cancel = context.WithCancel(ctx)
	ts.done = make(chan struct{})
	go ts.applyCallbacks(ctx)
	return nil
}

// Stop halts the service and waits for the apply loop to drain.
func (ts *TallyService) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.cancel == nil {
		return
	}
	ts.cancel()
	ts.cancel = nil
	<-ts.done
}

func (ts *TallyService) applyCallbacks(ctx context.Context) {
	defer close(ts.done)
	callbacks := ts.machine.Coordinator().Callbacks()
	for {
		select {
		case <-ctx.Done():
			return
		case cb := <-callbacks:
			ts.apply(cb)
		}
	}
}

func (ts *TallyService) apply(cb *mpc.Callback) {
	if cb.Err != nil {
		// explicit rejection by the cluster; state stays untouched and the
		// caller observes the error through Await
		log.Warnw("computation rejected", "handle", cb.Handle.String(),
			"error", cb.Err.Error())
		return
	}
	var err error
	switch {
	case cb.VoteApplied != nil:
		err = ts.machine.ApplyVoteCallback(cb.VoteApplied)
	case cb.Reveal != nil:
		err = ts.machine.ApplyRevealCallback(cb.Reveal)
	case cb.Verify != nil:
		err = ts.machine.ApplyVerifyCallback(cb.Verify)
	case cb.Decrypt != nil:
		log.Infow("vote decrypted", "handle", cb.Handle.String(),
			"proposalId", cb.Decrypt.ProposalID)
	default:
		err = fmt.Errorf("callback carries no result")
	}
	if err != nil {
		log.Errorw(err, fmt.Sprintf("could not apply callback %s", cb.Handle.String()))
	}
}

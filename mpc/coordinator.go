package mpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artmural/mural/log"
)

const (
	// DefaultAwaitTimeout bounds how long a caller waits for finalization
	// when it does not supply its own bound.
	DefaultAwaitTimeout = 30 * time.Second

	// settledRetention bounds how long a settled callback stays
	// retrievable through Await before it is pruned from the pending map.
	settledRetention = 5 * time.Minute

	queueCapacity    = 256
	callbackCapacity = 256
)

// computation tracks one queued request until its callback settles. done is
// closed exactly once, after cb is set.
type computation struct {
	cb        *Callback
	done      chan struct{}
	settledAt time.Time
}

type request struct {
	handle  Handle
	vote    *SubmitVoteRequest
	reveal  *RevealWinnerRequest
	verify  *VerifyWinningVoteRequest
	decrypt *DecryptVoteRequest
}

// Coordinator queues computations against an Engine and settles their
// callbacks. Settled callbacks are both recorded against their handle for
// Await and published on the Callbacks channel for the tally service to
// apply to state.
type Coordinator struct {
	engine Engine

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	pending map[Handle]*computation
	retain  time.Duration

	queue     chan *request
	callbacks chan *Callback
	wg        sync.WaitGroup
}

// NewCoordinator creates a Coordinator over the given engine. Start must be
// called before queuing requests.
func NewCoordinator(engine Engine) *Coordinator {
	return &Coordinator{
		engine:    engine,
		pending:   make(map[Handle]*computation),
		retain:    settledRetention,
		queue:     make(chan *request, queueCapacity),
		callbacks: make(chan *Callback, callbackCapacity),
	}
}

// Start launches the dispatch loop. It returns an error if the coordinator
// is already running.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return fmt.Errorf("coordinator already running")
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.dispatchLoop()
	return nil
}

// Stop halts the dispatch loop and waits for in-flight computations.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.cancel = nil
	c.mu.Unlock()
	c.wg.Wait()
}

// Engine returns the engine the coordinator dispatches to.
func (c *Coordinator) Engine() Engine {
	return c.engine
}

// Callbacks is the stream of settled computations, in settlement order. The
// tally service is its single consumer.
func (c *Coordinator) Callbacks() <-chan *Callback {
	return c.callbacks
}

// SubmitVote queues a vote for confidential tallying and returns the handle
// to await.
func (c *Coordinator) SubmitVote(req *SubmitVoteRequest) (Handle, error) {
	return c.enqueue(&request{vote: req})
}

// RevealWinner queues a winner computation for the round.
func (c *Coordinator) RevealWinner(req *RevealWinnerRequest) (Handle, error) {
	return c.enqueue(&request{reveal: req})
}

// VerifyWinningVote queues a winning-vote verification.
func (c *Coordinator) VerifyWinningVote(req *VerifyWinningVoteRequest) (Handle, error) {
	return c.enqueue(&request{verify: req})
}

// DecryptVote queues a diagnostic decryption.
func (c *Coordinator) DecryptVote(req *DecryptVoteRequest) (Handle, error) {
	return c.enqueue(&request{decrypt: req})
}

func (c *Coordinator) enqueue(req *request) (Handle, error) {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return Handle{}, fmt.Errorf("coordinator not running")
	}
	ctx := c.ctx
	req.handle = NewHandle()
	c.pending[req.handle] = &computation{done: make(chan struct{})}
	c.mu.Unlock()

	select {
	case c.queue <- req:
		return req.handle, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.handle)
		c.mu.Unlock()
		return Handle{}, fmt.Errorf("coordinator stopped")
	}
}

// Await blocks until the handle's callback settles or the timeout elapses.
// On timeout the computation keeps running and may still settle; the caller
// must treat the outcome as unknown and retry, if at all, with a fresh
// handle. A zero timeout means DefaultAwaitTimeout.
func (c *Coordinator) Await(ctx context.Context, handle Handle, timeout time.Duration) (*Callback, error) {
	c.mu.Lock()
	comp, ok := c.pending[handle]
	c.mu.Unlock()
	if !ok {
		return nil, ErrUnknownHandle
	}
	if timeout == 0 {
		timeout = DefaultAwaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-comp.done:
		return comp.cb, nil
	case <-timer.C:
		return nil, ErrComputationTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) dispatchLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case req := <-c.queue:
			c.execute(req)
		}
	}
}

func (c *Coordinator) execute(req *request) {
	cb := &Callback{Handle: req.handle}
	var err error
	switch {
	case req.vote != nil:
		cb.VoteApplied, err = c.engine.SubmitVote(c.ctx, req.vote)
	case req.reveal != nil:
		cb.Reveal, err = c.engine.RevealWinner(c.ctx, req.reveal)
	case req.verify != nil:
		cb.Verify, err = c.engine.VerifyWinningVote(c.ctx, req.verify)
	case req.decrypt != nil:
		cb.Decrypt, err = c.engine.DecryptVote(c.ctx, req.decrypt)
	}
	if err != nil {
		log.Warnw("computation aborted", "handle", req.handle.String(), "error", err.Error())
		cb.Err = fmt.Errorf("%w: %v", ErrComputationAborted, err)
		cb.VoteApplied, cb.Reveal, cb.Verify, cb.Decrypt = nil, nil, nil, nil
	}

	c.settle(req.handle, cb)
}

func (c *Coordinator) settle(handle Handle, cb *Callback) {
	c.mu.Lock()
	comp, ok := c.pending[handle]
	if ok {
		comp.cb = cb
		comp.settledAt = time.Now()
	}
	// prune settled entries past their retention so the map stays bounded
	cutoff := time.Now().Add(-c.retain)
	for h, p := range c.pending {
		if !p.settledAt.IsZero() && p.settledAt.Before(cutoff) {
			delete(c.pending, h)
		}
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	close(comp.done)
	select {
	case c.callbacks <- cb:
	case <-c.ctx.Done():
	}
}

// Package api exposes the protocol operations over HTTP: proposal
// submission, encrypted voting, winner reveal, round archival, reward
// claims and read-only fetches of every stored entity by its derived key.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/state"
)

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host    string
	Port    int
	Machine *state.Machine
}

// API type represents the API HTTP server over the protocol state machine.
type API struct {
	router  *chi.Mux
	machine *state.Machine
}

// New creates a new API instance with the given configuration and starts the
// HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Machine == nil {
		return nil, fmt.Errorf("missing state machine instance")
	}
	a := &API{
		machine: conf.Machine,
	}

	// Initialize router
	a.initRouter()
	go func() {
		log.Infow("Starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", SystemInitEndpoint, "method", "POST")
	a.router.Post(SystemInitEndpoint, a.initSystem)
	log.Infow("register handler", "endpoint", SystemEndpoint, "method", "GET")
	a.router.Get(SystemEndpoint, a.systemState)
	log.Infow("register handler", "endpoint", EncryptionKeyEndpoint, "method", "GET")
	a.router.Get(EncryptionKeyEndpoint, a.encryptionKey)
	log.Infow("register handler", "endpoint", RoundEndpoint, "method", "GET")
	a.router.Get(RoundEndpoint, a.roundMetadata)
	log.Infow("register handler", "endpoint", ProposalsEndpoint, "method", "POST")
	a.router.Post(ProposalsEndpoint, a.submitProposal)
	log.Infow("register handler", "endpoint", ProposalsEndpoint, "method", "GET")
	a.router.Get(ProposalsEndpoint, a.listProposals)
	log.Infow("register handler", "endpoint", ProposalEndpoint, "method", "GET")
	a.router.Get(ProposalEndpoint, a.proposal)
	log.Infow("register handler", "endpoint", VotesEndpoint, "method", "POST")
	a.router.Post(VotesEndpoint, a.newVote)
	log.Infow("register handler", "endpoint", VoteReceiptEndpoint, "method", "GET")
	a.router.Get(VoteReceiptEndpoint, a.voteReceipt)
	log.Infow("register handler", "endpoint", VerifyVoteEndpoint, "method", "POST")
	a.router.Post(VerifyVoteEndpoint, a.verifyVote)
	log.Infow("register handler", "endpoint", DecryptVoteEndpoint, "method", "POST")
	a.router.Post(DecryptVoteEndpoint, a.decryptVote)
	log.Infow("register handler", "endpoint", RevealEndpoint, "method", "POST")
	a.router.Post(RevealEndpoint, a.revealWinner)
	log.Infow("register handler", "endpoint", HistoriesEndpoint, "method", "POST")
	a.router.Post(HistoriesEndpoint, a.createHistory)
	log.Infow("register handler", "endpoint", HistoryEndpoint, "method", "GET")
	a.router.Get(HistoryEndpoint, a.roundHistory)
	log.Infow("register handler", "endpoint", ResetEndpoint, "method", "POST")
	a.router.Post(ResetEndpoint, a.resetCounters)
	log.Infow("register handler", "endpoint", EscrowEndpoint, "method", "GET")
	a.router.Get(EscrowEndpoint, a.roundEscrow)
	log.Infow("register handler", "endpoint", ClaimEndpoint, "method", "POST")
	a.router.Post(ClaimEndpoint, a.claimReward)
	log.Infow("register handler", "endpoint", AccountEndpoint, "method", "GET")
	a.router.Get(AccountEndpoint, a.account)
	log.Infow("register handler", "endpoint", ComputationEndpoint, "method", "GET")
	a.router.Get(ComputationEndpoint, a.computation)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}

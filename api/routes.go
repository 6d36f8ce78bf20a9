package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// SystemEndpoint returns the system state singleton
	SystemEndpoint = "/system"
	// SystemInitEndpoint initializes the system singletons
	SystemInitEndpoint = "/system/init"
	// EncryptionKeyEndpoint returns the cluster encryption public key
	EncryptionKeyEndpoint = "/system/encryption-key"
	// RoundEndpoint returns the live round metadata
	RoundEndpoint = "/rounds/current"
	// ProposalsEndpoint is the endpoint for submitting a proposal and for
	// listing the live round's proposals
	ProposalsEndpoint = "/proposals"
	// ProposalEndpoint returns one proposal by round and local index
	RoundURLParam    = "roundId"
	IndexURLParam    = "localIndex"
	ProposalEndpoint = "/proposals/{" + RoundURLParam + "}/{" + IndexURLParam + "}"
	// VotesEndpoint is the endpoint for submitting a vote
	VotesEndpoint = "/votes"
	// VoteReceiptEndpoint returns a voter's receipt for a round
	VoterURLParam       = "voter"
	VoteReceiptEndpoint = "/votes/{" + RoundURLParam + "}/{" + VoterURLParam + "}"
	// VerifyVoteEndpoint queues a winning-vote verification
	VerifyVoteEndpoint = "/votes/verify"
	// DecryptVoteEndpoint queues a diagnostic decryption
	DecryptVoteEndpoint = "/votes/decrypt"
	// RevealEndpoint queues the winner reveal of the live round
	RevealEndpoint = "/rounds/reveal"
	// HistoryEndpoint archives the revealed round (POST) and returns an
	// archived round summary (GET)
	HistoriesEndpoint = "/rounds/history"
	HistoryEndpoint   = "/rounds/history/{" + RoundURLParam + "}"
	// ResetEndpoint runs the standalone counter reset
	ResetEndpoint = "/rounds/reset"
	// EscrowEndpoint returns a round's escrow accounting
	EscrowEndpoint = "/rounds/escrow/{" + RoundURLParam + "}"
	// ClaimEndpoint pays out a reward claim
	ClaimEndpoint = "/rewards/claim"
	// AccountEndpoint returns a participant balance
	AccountURLParam = "accountId"
	AccountEndpoint = "/accounts/{" + AccountURLParam + "}"
	// ComputationEndpoint awaits the settlement of a computation handle
	HandleURLParam      = "handle"
	ComputationEndpoint = "/computations/{" + HandleURLParam + "}"
)

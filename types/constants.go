package types

const (
	// DefaultSubmissionFee is the fixed fee, in protocol units, charged for
	// every proposal submission. It funds the round escrow.
	DefaultSubmissionFee = 1_000_000

	// MaxProposalsPerRound is the hard cap of proposals in a single round.
	// Local indexes are a single byte, so exceeding this cap is a fatal
	// configuration error, not a recoverable condition.
	MaxProposalsPerRound = 255

	// NonceSize is the byte length of the encryption nonces derived for each
	// ballot ciphertext.
	NonceSize = 16

	// CiphertextSize is the byte length of an encrypted proposal choice.
	CiphertextSize = 32

	// EncryptionKeySize is the byte length of a ballot encryption public key.
	EncryptionKeySize = 32

	// MaxProposalTitleLen is the maximum length of a proposal title.
	MaxProposalTitleLen = 50
	// MaxProposalDescriptionLen is the maximum length of a proposal description.
	MaxProposalDescriptionLen = 200
	// MaxProposalURLLen is the maximum length of a proposal URL.
	MaxProposalURLLen = 200
)

// Package storage persists every protocol record in a prefixed key-value
// store. Records are addressed with the deterministic scheme of the wire
// protocol: a fixed domain tag per entity plus the component identifiers
// (round ids as 8-byte little-endian, local indexes as a single byte), so
// any client can re-derive the key of any record. The following domain tags
// are used as key prefixes:
//   - 'proposal_system'      for the system state singleton
//   - 'round_metadata'       for the round cursor singleton
//   - 'proposal/'            for proposals
//   - 'vote_receipt/'        for vote receipts
//   - 'voting_round_history/' for archived round summaries
//   - 'round_escrow/'        for per-round fee pools
//   - 'round_claim/'         for one-time reward claim markers
//   - 'account/'             for participant balances
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	systemStatePrefix   = []byte("proposal_system")
	roundMetadataPrefix = []byte("round_metadata")
	proposalPrefix      = []byte("proposal/")
	voteReceiptPrefix   = []byte("vote_receipt/")
	roundHistoryPrefix  = []byte("voting_round_history/")
	roundEscrowPrefix   = []byte("round_escrow/")
	claimMarkerPrefix   = []byte("round_claim/")
	accountPrefix       = []byte("account/")
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a create-once record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Storage wraps the underlying database with typed accessors for every
// protocol entity. All mutations go through Update, which serializes writers
// and commits each operation in a single transaction, so protocol operations
// are atomic: either all their effects commit or none do.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance backed by the given database.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		panic(err)
	}
}

// Txn is a single atomic protocol mutation in flight. All typed setters
// write through the same underlying transaction.
type Txn struct {
	tx db.WriteTx
}

// Update runs fn inside a single write transaction. If fn returns an error
// the transaction is discarded and nothing is applied.
func (s *Storage) Update(fn func(txn *Txn) error) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	tx := s.db.WriteTx()
	txn := &Txn{tx: tx}
	if err := fn(txn); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// get reads a raw value under a prefix, mapping the database's not-found
// error to ErrNotFound.
func (s *Storage) get(prefix, key []byte) ([]byte, error) {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (txn *Txn) get(prefix, key []byte) ([]byte, error) {
	data, err := prefixeddb.NewPrefixedWriteTx(txn.tx, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (txn *Txn) set(prefix, key, value []byte) error {
	return prefixeddb.NewPrefixedWriteTx(txn.tx, prefix).Set(key, value)
}

// iterate walks all values under a prefix, optionally filtered by a key
// sub-prefix.
func (s *Storage) iterate(prefix, keyPrefix []byte, cb func(k, v []byte) bool) error {
	return prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(keyPrefix, cb)
}

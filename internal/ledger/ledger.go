package ledger

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cinderledger/cinder/internal/record"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedIdentity reports a signer identity string that is not a
// decodable SPKI PEM public key. It is a caller-input defect, kept distinct
// from a signature mismatch, which is reported through Result.Status.
var ErrMalformedIdentity = errors.New("malformed signer identity")

// Status tags the outcome of an admission attempt.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Result is the explicit outcome of one Admit call. Entry and Solution are
// populated only when Status is StatusAccepted.
type Result struct {
	Status   Status `json:"status"`
	Entry    *Entry `json:"entry,omitempty"`
	Solution int64  `json:"solution,omitempty"`
}

// Ledger is the single in-memory, append-only sequence of entries. Entries,
// once appended, are never mutated or removed. The mutex serialises
// admissions so the predecessor link always reflects the chain tip at
// insertion time.
type Ledger struct {
	mu      sync.RWMutex
	entries []*Entry
	target  string
	logger  *zap.Logger
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithTargetPrefix overrides the puzzle target prefix. Shorter prefixes make
// admission cheaper; tests use this to keep mining fast.
func WithTargetPrefix(prefix string) Option {
	return func(l *Ledger) { l.target = prefix }
}

// New creates a Ledger initialised with the genesis entry.
func New(logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		entries: []*Entry{genesisEntry()},
		target:  DefaultTargetPrefix,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit runs the full admission protocol for a transfer record:
//
//  1. signerPEM is decoded as the claimed payer's public key; undecodable
//     input fails with ErrMalformedIdentity.
//  2. sig is verified as an RSA PKCS#1 v1.5 / SHA-256 signature over the
//     record's canonical serialization. A mismatch appends nothing and
//     returns StatusRejected.
//  3. On success a candidate entry chained to the current tip is built, the
//     hash puzzle is solved by brute force on the calling goroutine, and
//     the solved entry is appended unconditionally.
//
// The puzzle search cannot fail, so an accepted signature always grows the
// chain by exactly one entry before Admit returns.
func (l *Ledger) Admit(_ context.Context, rec record.Record, signerPEM string, sig []byte) (*Result, error) {
	pub, err := ParsePublicKey(signerPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}

	admissionID := uuid.New().String()

	digest := sha256.Sum256(rec.Canonical())
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		l.logger.Warn("transfer rejected: signature mismatch",
			zap.String("admission_id", admissionID),
			zap.Int64("amount", rec.Amount),
		)
		return &Result{Status: StatusRejected}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	candidate := NewEntry(l.entries[len(l.entries)-1].Fingerprint(), rec)
	start := time.Now()
	solution := solvePuzzle(candidate.Nonce, l.target)
	entry := candidate.withSolution(solution)
	l.entries = append(l.entries, entry)

	l.logger.Info("transfer admitted",
		zap.String("admission_id", admissionID),
		zap.Int64("amount", rec.Amount),
		zap.String("fingerprint", entry.Fingerprint()),
		zap.Int64("solution", solution),
		zap.Duration("mining", time.Since(start)),
		zap.Int("height", len(l.entries)),
	)
	return &Result{Status: StatusAccepted, Entry: entry, Solution: solution}, nil
}

// Last returns the most recently appended entry. The chain always contains
// at least the genesis entry, so Last never returns nil.
func (l *Ledger) Last() *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[len(l.entries)-1]
}

// Len returns the total number of entries, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Get returns the entry at the given zero-based index.
func (l *Ledger) Get(index int) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	return l.entries[index], nil
}

// Entries returns a snapshot copy of the chain.
func (l *Ledger) Entries() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// TargetPrefix returns the puzzle target prefix the ledger admits against.
func (l *Ledger) TargetPrefix() string {
	return l.target
}

// Verify walks the entire chain and checks integrity: every non-genesis
// entry must link to its predecessor's current fingerprint and must carry a
// (nonce, solution) pair satisfying the puzzle target. Returns nil if the
// chain is intact.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, curr := range l.entries {
		if i == 0 {
			if curr.PrevFingerprint != "" {
				return fmt.Errorf("genesis entry has a predecessor fingerprint: %q", curr.PrevFingerprint)
			}
			continue
		}
		if curr.PrevFingerprint != l.entries[i-1].Fingerprint() {
			return fmt.Errorf("chain broken at index %d", i)
		}
		if !meetsTarget(curr.Nonce, curr.Solution, l.target) {
			return fmt.Errorf("entry %d carries an invalid proof of work", i)
		}
	}
	return nil
}

// ParsePublicKey decodes an SPKI PEM identity string into an RSA public key.
func ParsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type %T", key)
	}
	return pub, nil
}

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/cinderledger/cinder/internal/record"
)

// nonceRange bounds the random puzzle starting point sampled at entry
// construction. The nonce only varies where the puzzle search begins; it is
// not a secret, so a non-cryptographic source is sufficient.
const nonceRange = 1 << 40

// Entry is a single link in the chain: one transfer record plus linkage and
// puzzle metadata. Entries are immutable after construction.
type Entry struct {
	PrevFingerprint string        `json:"prev_fingerprint"` // empty for genesis
	Record          record.Record `json:"record"`
	Timestamp       time.Time     `json:"timestamp"`
	Nonce           int64         `json:"nonce"`
	Solution        int64         `json:"solution"` // zero until mined; zero forever on genesis
}

// NewEntry constructs a candidate entry for the given predecessor
// fingerprint and record, stamped with the current wall-clock time and a
// randomly seeded puzzle nonce.
func NewEntry(prevFingerprint string, rec record.Record) *Entry {
	return &Entry{
		PrevFingerprint: prevFingerprint,
		Record:          rec,
		Timestamp:       time.Now().UTC(),
		Nonce:           rand.Int63n(nonceRange),
	}
}

// Fingerprint computes the SHA-256 content hash of the entry over its
// canonical serialization. It is computed on demand rather than cached, so
// it always reflects the entry's current field values.
func (e *Entry) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d",
		e.PrevFingerprint,
		e.Record.Canonical(),
		e.Timestamp.Format(time.RFC3339Nano),
		e.Nonce,
		e.Solution,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// withSolution returns a copy of the entry with the accepted puzzle solution
// set. The solution participates in the fingerprint, so the stored chain
// carries an auditable proof of work.
func (e *Entry) withSolution(solution int64) *Entry {
	cp := *e
	cp.Solution = solution
	return &cp
}

// genesisEntry returns the fixed bootstrap entry every chain starts with.
// Its fields are constants, so the genesis fingerprint is identical across
// processes.
func genesisEntry() *Entry {
	return &Entry{
		PrevFingerprint: "",
		Record:          record.New(0, "genesis", "genesis"),
		Timestamp:       time.Unix(0, 0).UTC(),
	}
}

// Package record defines the transfer record, the atomic value-movement
// intent carried by every ledger entry.
//
// A record's canonical serialization is the single deterministic byte form
// used both as the signing payload and as part of the fingerprinted entry
// content. Two records with identical field values always serialize to
// identical bytes.
package record

import (
	"encoding/json"
)

// Record is an immutable value-transfer intent. Payer and Payee are opaque
// identity strings: PEM-encoded public keys in the normal case, or
// well-known labels such as "genesis". Construction performs no validation;
// a zero or negative amount is representable by design.
type Record struct {
	Amount int64  `json:"amount"`
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
}

// New builds a Record. It never fails.
func New(amount int64, payer, payee string) Record {
	return Record{Amount: amount, Payer: payer, Payee: payee}
}

// Canonical returns the deterministic serialization of the record.
// encoding/json emits struct fields in declaration order, so identical
// field values yield identical bytes.
func (r Record) Canonical() []byte {
	b, err := json.Marshal(r)
	if err != nil {
		// Only unsupported types can fail json.Marshal; Record has none.
		panic("record: canonical encoding failed: " + err.Error())
	}
	return b
}

// String implements fmt.Stringer for log output.
func (r Record) String() string {
	return string(r.Canonical())
}

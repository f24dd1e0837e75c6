// Package ledger implements the append-only proof-of-work chain at the heart
// of cinder.
//
// The chain begins with a hard-coded genesis entry whose predecessor
// fingerprint is the empty string. Every later entry records the SHA-256
// fingerprint of its predecessor, making any tampering detectable via
// Verify. Admission of a new entry is gated twice: the transfer record must
// carry a valid RSA signature from the claimed payer, and the ledger must
// solve a brute-force hash puzzle before the entry is appended.
//
// The ledger lives in memory only and is never persisted; a process owns
// exactly one instance, created once at startup and shared by injection.
package ledger

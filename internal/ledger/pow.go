package ledger

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// DefaultTargetPrefix is the leading-zero prefix a puzzle digest must carry
// for an entry to be admitted. Four hex characters means an expected 16^4
// digest evaluations per admission.
const DefaultTargetPrefix = "0000"

// puzzleDigest returns the lowercase hex SHA-1 of the decimal string
// encoding of n. SHA-1 is deliberately a different hash than the SHA-256
// used for entry fingerprints.
func puzzleDigest(n int64) string {
	sum := sha1.Sum([]byte(strconv.FormatInt(n, 10)))
	return hex.EncodeToString(sum[:])
}

// solvePuzzle finds the smallest solution >= 1 such that the puzzle digest
// of nonce+solution starts with target. The search increments by one with
// no upper bound and is fully deterministic for a given nonce and target.
// It blocks the calling goroutine until it succeeds.
func solvePuzzle(nonce int64, target string) int64 {
	for solution := int64(1); ; solution++ {
		if strings.HasPrefix(puzzleDigest(nonce+solution), target) {
			return solution
		}
	}
}

// meetsTarget reports whether the stored (nonce, solution) pair of an entry
// still satisfies the puzzle for the given target prefix.
func meetsTarget(nonce, solution int64, target string) bool {
	return solution >= 1 && strings.HasPrefix(puzzleDigest(nonce+solution), target)
}

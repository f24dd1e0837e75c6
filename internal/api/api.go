// Package api exposes a cinder node over HTTP.
//
// It provides:
//   - TransferHandler — accepts signed transfer submissions
//   - ChainHandler    — read-only chain inspection endpoints
//   - middleware for request ids, metrics, rate limiting, and CORS
//
// The surface is node-local: it lets clients submit transfers to and inspect
// this process's ledger. It is not a propagation protocol between nodes.
package api

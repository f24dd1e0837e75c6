// Package identity implements the cinder authorization agent.
//
// It provides:
//   - Wallet — holder of one RSA key pair that originates and signs transfers
//   - PEM import/export of key material (SPKI public, PKCS#8 private)
//
// A wallet's public identity is its SPKI PEM string; the private key never
// leaves the Wallet value.
package identity

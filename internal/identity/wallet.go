package identity

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cinderledger/cinder/internal/ledger"
	"github.com/cinderledger/cinder/internal/record"
)

const walletKeyBits = 2048

// ErrDetached is returned by Transfer on a wallet constructed without a
// ledger (e.g. one loaded only to sign payloads for a remote node).
var ErrDetached = errors.New("wallet is not attached to a ledger")

// Wallet owns exactly one RSA key pair and originates signed transfers
// against a shared ledger. It carries no state beyond the key pair and the
// injected ledger reference: no balances, no transfer history.
type Wallet struct {
	key       *rsa.PrivateKey
	publicPEM string
	ledger    *ledger.Ledger
}

// NewWallet generates a fresh 2048-bit key pair bound to the shared ledger.
// l may be nil for a signing-only wallet.
func NewWallet(l *ledger.Ledger) (*Wallet, error) {
	key, err := rsa.GenerateKey(rand.Reader, walletKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate wallet key: %w", err)
	}
	return newWallet(key, l)
}

// LoadWallet reconstructs a wallet from a PKCS#8 PEM private key string.
func LoadWallet(privatePEM string, l *ledger.Ledger) (*Wallet, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return nil, errors.New("no PEM block found in private key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", parsed)
	}
	return newWallet(key, l)
}

func newWallet(key *rsa.PrivateKey, l *ledger.Ledger) (*Wallet, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	pub := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return &Wallet{key: key, publicPEM: pub, ledger: l}, nil
}

// PublicPEM returns the wallet's portable identity: its public key in SPKI
// PEM form.
func (w *Wallet) PublicPEM() string { return w.publicPEM }

// PrivatePEM returns the private key in PKCS#8 PEM form for export.
func (w *Wallet) PrivatePEM() (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(w.key)
	if err != nil {
		return "", fmt.Errorf("marshal private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// Sign produces the wallet's RSA PKCS#1 v1.5 / SHA-256 signature over the
// record's canonical serialization — the same payload the ledger verifies.
func (w *Wallet) Sign(rec record.Record) ([]byte, error) {
	digest := sha256.Sum256(rec.Canonical())
	sig, err := rsa.SignPKCS1v15(rand.Reader, w.key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign record: %w", err)
	}
	return sig, nil
}

// Transfer builds a record paying amount from this wallet to payee, signs
// it, and submits it to the attached ledger's admission protocol. The
// wallet performs no retries; a rejection is reported in the result.
func (w *Wallet) Transfer(ctx context.Context, amount int64, payee string) (*ledger.Result, error) {
	if w.ledger == nil {
		return nil, ErrDetached
	}
	rec := record.New(amount, w.publicPEM, payee)
	sig, err := w.Sign(rec)
	if err != nil {
		return nil, err
	}
	return w.ledger.Admit(ctx, rec, w.publicPEM, sig)
}

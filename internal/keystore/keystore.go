// Package keystore seals wallet private keys under a passphrase so exported
// key material can sit on disk without being readable in plain text.
//
// The on-disk form is a small JSON envelope holding the argon2id salt, the
// secretbox nonce, and the ciphertext, all base64-encoded.
package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrWrongPassphrase is returned by Open when the ciphertext does not
// authenticate under the supplied passphrase.
var ErrWrongPassphrase = errors.New("keystore: wrong passphrase or corrupted file")

// argon2id parameters for passphrase-derived keys.
const (
	kdfName    = "argon2id"
	kdfTime    = 1
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	keyLen     = 32
	saltLen    = 16
)

// File is the JSON envelope written to disk.
type File struct {
	KDF        string `json:"kdf"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// Seal encrypts a private key PEM string under passphrase and returns the
// JSON envelope.
func Seal(privatePEM, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key := deriveKey(passphrase, salt)
	sealed := secretbox.Seal(nil, []byte(privatePEM), &nonce, key)

	return json.Marshal(File{
		KDF:        kdfName,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce[:]),
		CipherText: base64.StdEncoding.EncodeToString(sealed),
	})
}

// Open decrypts a JSON envelope produced by Seal and returns the private
// key PEM string.
func Open(data []byte, passphrase string) (string, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("decode keystore file: %w", err)
	}
	if f.KDF != kdfName {
		return "", fmt.Errorf("unsupported kdf %q", f.KDF)
	}

	salt, err := base64.StdEncoding.DecodeString(f.Salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(f.Nonce)
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	if len(nonceBytes) != 24 {
		return "", fmt.Errorf("nonce length %d, want 24", len(nonceBytes))
	}
	sealed, err := base64.StdEncoding.DecodeString(f.CipherText)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	var nonce [24]byte
	copy(nonce[:], nonceBytes)

	plain, ok := secretbox.Open(nil, sealed, &nonce, deriveKey(passphrase, salt))
	if !ok {
		return "", ErrWrongPassphrase
	}
	return string(plain), nil
}

// WriteFile seals privatePEM and writes the envelope to path with owner-only
// permissions.
func WriteFile(path, privatePEM, passphrase string) error {
	data, err := Seal(privatePEM, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keystore file: %w", err)
	}
	return nil
}

// ReadFile opens the envelope at path and returns the private key PEM.
func ReadFile(path, passphrase string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read keystore file: %w", err)
	}
	return Open(data, passphrase)
}

func deriveKey(passphrase string, salt []byte) *[32]byte {
	derived := argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemory, kdfThreads, keyLen)
	var key [32]byte
	copy(key[:], derived)
	return &key
}

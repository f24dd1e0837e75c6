package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cinderledger/cinder/internal/identity"
	"github.com/cinderledger/cinder/internal/ledger"
	"github.com/cinderledger/cinder/internal/record"
)

var ctx = context.Background()

var (
	walletOnce sync.Once
	walletErr  error
	shared     *identity.Wallet
)

// testWallet returns a signing-only wallet backed by a shared key pair, so
// the suite pays the RSA generation cost once.
func testWallet(t *testing.T) *identity.Wallet {
	t.Helper()
	walletOnce.Do(func() {
		shared, walletErr = identity.NewWallet(nil)
	})
	if walletErr != nil {
		t.Fatalf("generate test wallet: %v", walletErr)
	}
	return shared
}

func TestNew_genesis(t *testing.T) {
	l := ledger.New(nil)

	if got := l.Len(); got != 1 {
		t.Errorf("fresh ledger Len() = %d, want 1 (genesis)", got)
	}
	g := l.Last()
	if g.PrevFingerprint != "" {
		t.Errorf("genesis PrevFingerprint = %q, want empty", g.PrevFingerprint)
	}
	if g.Record != record.New(0, "genesis", "genesis") {
		t.Errorf("genesis record = %v", g.Record)
	}
	if err := l.Verify(); err != nil {
		t.Errorf("Verify() on genesis-only chain: %v", err)
	}
}

func TestAdmit_acceptsValidSignature(t *testing.T) {
	l := ledger.New(nil)
	w := testWallet(t)
	genesisFP := l.Last().Fingerprint()

	rec := record.New(50, w.PublicPEM(), "bob")
	sig, err := w.Sign(rec)
	if err != nil {
		t.Fatal(err)
	}

	res, err := l.Admit(ctx, rec, w.PublicPEM(), sig)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Status != ledger.StatusAccepted {
		t.Fatalf("status = %q, want accepted", res.Status)
	}
	if got := l.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if res.Entry.PrevFingerprint != genesisFP {
		t.Errorf("new entry links to %q, want genesis fingerprint %q", res.Entry.PrevFingerprint, genesisFP)
	}
	if string(res.Entry.Record.Canonical()) != string(rec.Canonical()) {
		t.Errorf("stored record %s differs from submitted %s", res.Entry.Record.Canonical(), rec.Canonical())
	}
	if res.Solution < 1 {
		t.Errorf("solution = %d, want >= 1", res.Solution)
	}
	if err := l.Verify(); err != nil {
		t.Errorf("Verify() after accepted admission: %v", err)
	}
}

func TestAdmit_rejectsForeignSignature(t *testing.T) {
	l := ledger.New(nil)
	w := testWallet(t)

	forger, err := identity.NewWallet(nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := record.New(50, w.PublicPEM(), "bob")
	sig, err := forger.Sign(rec)
	if err != nil {
		t.Fatal(err)
	}

	res, err := l.Admit(ctx, rec, w.PublicPEM(), sig)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Status != ledger.StatusRejected {
		t.Errorf("status = %q, want rejected", res.Status)
	}
	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d after rejection, want 1", got)
	}
}

func TestAdmit_rejectsTamperedRecord(t *testing.T) {
	l := ledger.New(nil)
	w := testWallet(t)

	rec := record.New(50, w.PublicPEM(), "bob")
	sig, err := w.Sign(rec)
	if err != nil {
		t.Fatal(err)
	}
	rec.Amount = 5000 // tamper after signing

	res, err := l.Admit(ctx, rec, w.PublicPEM(), sig)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Status != ledger.StatusRejected {
		t.Errorf("status = %q, want rejected", res.Status)
	}
	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d after tampered admission, want 1", got)
	}
}

func TestAdmit_malformedIdentity(t *testing.T) {
	l := ledger.New(nil)
	rec := record.New(50, "not-a-key", "bob")

	_, err := l.Admit(ctx, rec, "not-a-key", []byte("sig"))
	if !errors.Is(err, ledger.ErrMalformedIdentity) {
		t.Errorf("Admit with undecodable identity: err = %v, want ErrMalformedIdentity", err)
	}
	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestAdmit_chainsSuccessiveEntries(t *testing.T) {
	l := ledger.New(nil, ledger.WithTargetPrefix("00"))
	w := testWallet(t)

	for i := int64(1); i <= 3; i++ {
		rec := record.New(i*10, w.PublicPEM(), "bob")
		sig, err := w.Sign(rec)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := l.Admit(ctx, rec, w.PublicPEM(), sig); err != nil {
			t.Fatal(err)
		}
	}

	entries := l.Entries()
	if len(entries) != 4 {
		t.Fatalf("chain length = %d, want 4", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PrevFingerprint != entries[i-1].Fingerprint() {
			t.Errorf("entry %d does not link to its predecessor's fingerprint", i)
		}
	}
	if err := l.Verify(); err != nil {
		t.Errorf("Verify(): %v", err)
	}
}

func TestVerify_detectsTamperedHistory(t *testing.T) {
	l := ledger.New(nil, ledger.WithTargetPrefix("00"))
	w := testWallet(t)

	for i := int64(1); i <= 2; i++ {
		rec := record.New(i, w.PublicPEM(), "bob")
		sig, err := w.Sign(rec)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := l.Admit(ctx, rec, w.PublicPEM(), sig); err != nil {
			t.Fatal(err)
		}
	}

	// Mutate a non-tip entry; the successor's stored link must now mismatch.
	l.Entries()[1].Record.Amount = 999

	if err := l.Verify(); err == nil {
		t.Error("Verify() passed on a tampered chain")
	}
}

func TestGet_bounds(t *testing.T) {
	l := ledger.New(nil)

	if _, err := l.Get(0); err != nil {
		t.Errorf("Get(0): %v", err)
	}
	if _, err := l.Get(1); err == nil {
		t.Error("Get(1) on genesis-only chain should fail")
	}
	if _, err := l.Get(-1); err == nil {
		t.Error("Get(-1) should fail")
	}
}

func TestParsePublicKey_roundTrip(t *testing.T) {
	w := testWallet(t)
	pub, err := ledger.ParsePublicKey(w.PublicPEM())
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if pub.N.BitLen() != 2048 {
		t.Errorf("modulus size = %d bits, want 2048", pub.N.BitLen())
	}
}

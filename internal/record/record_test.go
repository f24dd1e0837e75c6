package record_test

import (
	"bytes"
	"testing"

	"github.com/cinderledger/cinder/internal/record"
)

func TestCanonical_deterministic(t *testing.T) {
	a := record.New(50, "alice-pub", "bob-pub")
	b := record.New(50, "alice-pub", "bob-pub")

	if !bytes.Equal(a.Canonical(), b.Canonical()) {
		t.Errorf("identical records serialize differently:\n%s\n%s", a.Canonical(), b.Canonical())
	}
}

func TestCanonical_fieldOrder(t *testing.T) {
	r := record.New(50, "alice", "bob")
	want := `{"amount":50,"payer":"alice","payee":"bob"}`
	if got := string(r.Canonical()); got != want {
		t.Errorf("Canonical() = %s, want %s", got, want)
	}
}

func TestCanonical_distinguishesFields(t *testing.T) {
	base := record.New(50, "alice", "bob")
	variants := []record.Record{
		record.New(51, "alice", "bob"),
		record.New(50, "carol", "bob"),
		record.New(50, "alice", "carol"),
	}
	for _, v := range variants {
		if bytes.Equal(base.Canonical(), v.Canonical()) {
			t.Errorf("records %v and %v serialize identically", base, v)
		}
	}
}

func TestNew_noValidation(t *testing.T) {
	// Zero and negative amounts, empty identities: all constructible.
	for _, r := range []record.Record{
		record.New(0, "", ""),
		record.New(-10, "alice", "alice"),
	} {
		if got := record.New(r.Amount, r.Payer, r.Payee); got != r {
			t.Errorf("New() = %v, want %v", got, r)
		}
	}
}

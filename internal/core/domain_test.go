package core

import (
	"testing"
	"time"
)

func TestNewSessionEntryDerivesProfit(t *testing.T) {
	cases := []struct {
		buyIn, cashOut, profit int64
	}{
		{10000, 15000, 5000},
		{10000, 5000, -5000},
		{10000, 10000, 0},
		{0, 0, 0}, // absence placeholder
	}
	for i, tc := range cases {
		e := NewSessionEntry(NewDate(2024, 1, 1), "Alice", Money{Cents: tc.buyIn}, Money{Cents: tc.cashOut}, "X")
		if e.Profit.Cents != tc.profit {
			t.Fatalf("case %d profit: got %d, want %d", i, e.Profit.Cents, tc.profit)
		}
		if err := e.Validate(); err != nil {
			t.Fatalf("case %d expected valid, got %v", i, err)
		}
	}
}

func TestSessionEntryValidate(t *testing.T) {
	bads := []SessionEntry{
		{Date: Date{Time: time.Time{}}, Player: "a", Club: "c"},
		NewSessionEntry(NewDate(2024, 1, 1), "", Money{Cents: 100}, Money{Cents: 100}, "c"),
		NewSessionEntry(NewDate(2024, 1, 1), "a", Money{Cents: -100}, Money{Cents: 100}, "c"),
		NewSessionEntry(NewDate(2024, 1, 1), "a", Money{Cents: 100}, Money{Cents: 100}, ""),
		// profit tampered after construction
		{Date: NewDate(2024, 1, 1), Player: "a", BuyIn: Money{Cents: 100}, CashOut: Money{Cents: 200}, Profit: Money{Cents: 999}, Club: "c"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSessionEntryActive(t *testing.T) {
	played := NewSessionEntry(NewDate(2024, 1, 1), "a", Money{Cents: 1}, Money{Cents: 1}, "c")
	absent := NewSessionEntry(NewDate(2024, 1, 1), "a", Money{}, Money{}, "c")
	if !played.Active() {
		t.Fatalf("expected active")
	}
	if absent.Active() {
		t.Fatalf("zero buy-in must not be active")
	}
}

func TestDateISO(t *testing.T) {
	d := NewDate(2024, 3, 7)
	if d.ISO() != "2024-03-07" {
		t.Fatalf("got %s", d.ISO())
	}
	back, err := ParseISODate(d.ISO())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}

func TestClubMembership(t *testing.T) {
	c := Club{Name: "X", Owner: "Alice", Members: []string{"Alice", "Bob"}}
	if !c.HasMember("Bob") || c.HasMember("Carol") {
		t.Fatalf("membership check failed")
	}
	if !c.IsHost("Alice") || c.IsHost("Bob") {
		t.Fatalf("host check failed")
	}
}

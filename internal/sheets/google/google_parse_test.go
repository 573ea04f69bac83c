package google

import (
	"testing"
)

func TestParseLedgerRow(t *testing.T) {
	cols := []string{"2024-01-05", "Alice", "100", "150", "9999", "X"}
	e, err := parseLedgerRow(cols)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if e.Date.ISO() != "2024-01-05" || e.Player != "Alice" || e.Club != "X" {
		t.Fatalf("row: %+v", e)
	}
	if e.BuyIn.Cents != 10000 || e.CashOut.Cents != 15000 {
		t.Fatalf("amounts: %d/%d", e.BuyIn.Cents, e.CashOut.Cents)
	}
	// Stored profit column is untrusted and recomputed.
	if e.Profit.Cents != 5000 {
		t.Fatalf("profit: got %d, want 5000", e.Profit.Cents)
	}
}

func TestParseLedgerRowLocaleValues(t *testing.T) {
	cols := []string{"05/01/2024", "Alice", "€ 17,50", "-", "0", "X"}
	e, err := parseLedgerRow(cols)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if e.Date.ISO() != "2024-01-05" || e.BuyIn.Cents != 1750 || e.CashOut.Cents != 0 {
		t.Fatalf("row: %+v", e)
	}
}

func TestParseLedgerRowRejects(t *testing.T) {
	bads := [][]string{
		{"2024-01-05", "Alice", "100"},                           // short
		{"soon", "Alice", "100", "150", "50", "X"},               // bad date
		{"2024-01-05", "", "100", "150", "50", "X"},              // no player
		{"2024-01-05", "Alice", "lots", "150", "50", "X"},        // bad amount
		{"2024-01-05", "Alice", "100", "150", "50", ""},          // no club
	}
	for i, cols := range bads {
		if _, err := parseLedgerRow(cols); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestLedgerRowRoundTrip(t *testing.T) {
	in := []string{"2024-01-05", "Alice", "100", "150", "50", "X"}
	e, err := parseLedgerRow(in)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	row := ledgerRow(e, "X")
	if len(row) != ledgerCols {
		t.Fatalf("row width: %d", len(row))
	}
	if row[0] != "2024-01-05" || row[1] != "Alice" || row[5] != "X" {
		t.Fatalf("row: %v", row)
	}
	if row[2] != 100.0 || row[3] != 150.0 || row[4] != 50.0 {
		t.Fatalf("amounts: %v", row)
	}
}

func TestParseClubRow(t *testing.T) {
	club, ok := parseClubRow([]string{"X", "Alice", "Alice, Bob ,Carol"})
	if !ok {
		t.Fatalf("expected ok")
	}
	if club.Name != "X" || club.Owner != "Alice" || len(club.Members) != 3 {
		t.Fatalf("club: %+v", club)
	}
	if club.Members[1] != "Bob" {
		t.Fatalf("members must be trimmed: %v", club.Members)
	}

	if _, ok := parseClubRow([]string{"X"}); ok {
		t.Fatalf("short row must be rejected")
	}
	if _, ok := parseClubRow([]string{"", "Alice"}); ok {
		t.Fatalf("empty name must be rejected")
	}
}

func TestHeaderDetection(t *testing.T) {
	if !isLedgerHeader([]string{"Data", "Giocatore"}) {
		t.Fatalf("italian header not detected")
	}
	if isLedgerHeader([]string{"2024-01-05", "Alice"}) {
		t.Fatalf("data row mistaken for header")
	}
	if !isClubsHeader([]string{"NomeClub", "Owner", "Membri"}) {
		t.Fatalf("clubs header not detected")
	}
}

package core

import (
	"reflect"
	"testing"
)

func TestBuildClubReportEndToEnd(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Alice", 10000, 15000),
		entry("2024-01-01", "Bob", 10000, 5000),
		entry("2024-01-08", "Alice", 10000, 8000),
	}
	rep := BuildClubReport(ledger, nil)

	if rep.Shark.Player != "Alice" || rep.Shark.Amount.Cents != 3000 {
		t.Fatalf("shark: %+v", rep.Shark)
	}
	if rep.Sniper.Player != "Alice" || rep.Sniper.Date.ISO() != "2024-01-01" || rep.Sniper.Amount.Cents != 5000 {
		t.Fatalf("sniper: %+v", rep.Sniper)
	}
	if rep.Sessions != 2 || rep.Volume.Cents != 30000 {
		t.Fatalf("sessions/volume: %d/%d", rep.Sessions, rep.Volume.Cents)
	}
	if rep.AvgPot != 150.0 || rep.AvgPlayers != 1.5 {
		t.Fatalf("averages: %v/%v", rep.AvgPot, rep.AvgPlayers)
	}
	if rep.Stakanovista.Player != "Alice" || rep.Stakanovista.Count != 2 {
		t.Fatalf("stakanovista: %+v", rep.Stakanovista)
	}
}

func TestBuildClubReportStandings(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Alice", 10000, 15000),
		entry("2024-01-01", "Bob", 10000, 5000),
		entry("2024-01-08", "Alice", 10000, 8000),
		entry("2024-01-08", "Carol", 0, 0), // recorded absence
	}
	rep := BuildClubReport(ledger, nil)

	if len(rep.Standings) != 3 {
		t.Fatalf("standings rows: %d", len(rep.Standings))
	}
	// Sorted by profit descending.
	if rep.Standings[0].Player != "Alice" || rep.Standings[0].Profit.Cents != 3000 {
		t.Fatalf("first standing: %+v", rep.Standings[0])
	}
	if rep.Standings[0].Sessions != 2 || rep.Standings[0].Volume.Cents != 20000 {
		t.Fatalf("alice aggregates: %+v", rep.Standings[0])
	}
	if rep.Standings[0].ROI != 15.0 {
		t.Fatalf("alice roi: %v", rep.Standings[0].ROI)
	}
	// Zero volume player: ROI defined as 0.
	for _, st := range rep.Standings {
		if st.Player == "Carol" && st.ROI != 0 {
			t.Fatalf("carol roi must be 0: %v", st.ROI)
		}
	}
}

func TestBuildClubReportStakanovistaExclusion(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Host", 1000, 1000),
		entry("2024-01-08", "Host", 1000, 1000),
		entry("2024-01-08", "Alice", 1000, 1000),
	}
	rep := BuildClubReport(ledger, []string{"Host"})
	if rep.Stakanovista.Player != "Alice" || rep.Stakanovista.Count != 1 {
		t.Fatalf("exclusion ignored: %+v", rep.Stakanovista)
	}

	all := BuildClubReport(ledger, []string{"Host", "Alice"})
	if all.Stakanovista.Player != "" || all.Stakanovista.Count != 0 {
		t.Fatalf("all excluded must report none: %+v", all.Stakanovista)
	}
}

func TestBuildClubReportDaily(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Alice", 10000, 15000),
		entry("2024-01-01", "Bob", 5000, 0),
		entry("2024-01-08", "Alice", 10000, 8000),
	}
	rep := BuildClubReport(ledger, nil)
	want := []DailyStat{
		{Date: NewDate(2024, 1, 1), Players: 2, Pot: Money{Cents: 15000}},
		{Date: NewDate(2024, 1, 8), Players: 1, Pot: Money{Cents: 10000}},
	}
	if !reflect.DeepEqual(rep.Daily, want) {
		t.Fatalf("daily: %+v", rep.Daily)
	}
}

func TestBuildClubReportThrone(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Alice", 10000, 15000), // Alice +50
		entry("2024-01-01", "Bob", 10000, 12000),   // Bob +20
		entry("2024-01-08", "Alice", 10000, 2000),  // Alice -80 -> cum -30
		entry("2024-01-08", "Bob", 10000, 11000),   // Bob +10 -> cum 30
	}
	rep := BuildClubReport(ledger, nil)

	if len(rep.Throne) != 3 {
		t.Fatalf("throne points: %d", len(rep.Throne))
	}
	lead := rep.Throne[0]
	if lead.Date.ISO() != "2023-12-31" || lead.Leader != "Alice" || lead.Cumulative.Cents != 0 {
		t.Fatalf("synthetic lead-in: %+v", lead)
	}
	if rep.Throne[1].Leader != "Alice" || rep.Throne[1].Cumulative.Cents != 5000 {
		t.Fatalf("day one leader: %+v", rep.Throne[1])
	}
	if rep.Throne[2].Leader != "Bob" || rep.Throne[2].Cumulative.Cents != 3000 {
		t.Fatalf("day two leader: %+v", rep.Throne[2])
	}
}

func TestBuildClubReportThroneTieBreak(t *testing.T) {
	// Bob and Alice tied: the alphabetically first player holds the throne.
	ledger := []SessionEntry{
		entry("2024-01-01", "Bob", 1000, 2000),
		entry("2024-01-01", "Alice", 1000, 2000),
	}
	first := BuildClubReport(ledger, nil)
	second := BuildClubReport(ledger, nil)
	if first.Throne[1].Leader != "Alice" {
		t.Fatalf("tie must go to alphabetically first player: %+v", first.Throne[1])
	}
	if !reflect.DeepEqual(first.Throne, second.Throne) {
		t.Fatalf("throne computation must be deterministic")
	}
}

func TestBuildClubReportEmpty(t *testing.T) {
	rep := BuildClubReport(nil, nil)
	if rep.Sessions != 0 || len(rep.Standings) != 0 || len(rep.Throne) != 0 {
		t.Fatalf("empty ledger: %+v", rep)
	}
}

func TestBuildClubReportSniperTieKeepsFirstRow(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-01", "Bob", 1000, 2000),
		entry("2024-01-08", "Alice", 1000, 2000),
	}
	rep := BuildClubReport(ledger, nil)
	if rep.Sniper.Player != "Bob" || rep.Sniper.Date.ISO() != "2024-01-01" {
		t.Fatalf("sniper tie must keep first row: %+v", rep.Sniper)
	}
}

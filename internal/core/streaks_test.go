package core

import "testing"

func cents(vals ...int64) []Money {
	out := make([]Money, len(vals))
	for i, v := range vals {
		out[i] = Money{Cents: v}
	}
	return out
}

func TestDetectStreaksReference(t *testing.T) {
	// Active profits 10, 20, -5, -5, -5, 0, 7 (euros, here cents).
	s := DetectStreaks(cents(1000, 2000, -500, -500, -500, 0, 700))

	if s.MaxWinRunLength != 2 || s.MaxWinRunMoney.Cents != 3000 {
		t.Fatalf("longest win run: %d/%d", s.MaxWinRunLength, s.MaxWinRunMoney.Cents)
	}
	if s.BestWinRunMoney.Cents != 3000 || s.BestWinRunLength != 2 {
		t.Fatalf("best win money: %d/%d", s.BestWinRunMoney.Cents, s.BestWinRunLength)
	}
	if s.MaxLossRunLength != 3 || s.MaxLossRunMoney.Cents != -1500 {
		t.Fatalf("longest loss run: %d/%d", s.MaxLossRunLength, s.MaxLossRunMoney.Cents)
	}
	if s.WorstLossRunMoney.Cents != -1500 || s.WorstLossRunLength != 3 {
		t.Fatalf("worst loss money: %d/%d", s.WorstLossRunMoney.Cents, s.WorstLossRunLength)
	}
	if s.Current != 1 {
		t.Fatalf("current streak: got %d, want 1", s.Current)
	}
}

func TestDetectStreaksRecordsCanDiverge(t *testing.T) {
	// Two win runs: 5,5,5 (len 3, sum 15) and 100 (len 1, sum 100).
	// Longest-by-count and best-by-money point to different runs.
	s := DetectStreaks(cents(500, 500, 500, -100, 10000))
	if s.MaxWinRunLength != 3 || s.MaxWinRunMoney.Cents != 1500 {
		t.Fatalf("longest win run: %d/%d", s.MaxWinRunLength, s.MaxWinRunMoney.Cents)
	}
	if s.BestWinRunMoney.Cents != 10000 || s.BestWinRunLength != 1 {
		t.Fatalf("best win money: %d/%d", s.BestWinRunMoney.Cents, s.BestWinRunLength)
	}
	if s.Current != 1 {
		t.Fatalf("current streak: got %d", s.Current)
	}
}

func TestDetectStreaksLossRecords(t *testing.T) {
	// Loss runs: -1,-1,-1,-1 (len 4, sum -4) and -50 (len 1, sum -50).
	s := DetectStreaks(cents(-100, -100, -100, -100, 200, -5000))
	if s.MaxLossRunLength != 4 || s.MaxLossRunMoney.Cents != -400 {
		t.Fatalf("longest loss run: %d/%d", s.MaxLossRunLength, s.MaxLossRunMoney.Cents)
	}
	if s.WorstLossRunMoney.Cents != -5000 || s.WorstLossRunLength != 1 {
		t.Fatalf("worst loss money: %d/%d", s.WorstLossRunMoney.Cents, s.WorstLossRunLength)
	}
	if s.Current != -1 {
		t.Fatalf("current streak: got %d", s.Current)
	}
}

func TestDetectStreaksEmpty(t *testing.T) {
	s := DetectStreaks(nil)
	if s != (StreakSummary{}) {
		t.Fatalf("empty input must yield the zero summary: %+v", s)
	}
}

func TestDetectStreaksTrailingRun(t *testing.T) {
	// A run that ends the sequence must still be recorded.
	s := DetectStreaks(cents(-200, 300, 400))
	if s.MaxWinRunLength != 2 || s.MaxWinRunMoney.Cents != 700 {
		t.Fatalf("trailing run not closed: %d/%d", s.MaxWinRunLength, s.MaxWinRunMoney.Cents)
	}
	if s.Current != 2 {
		t.Fatalf("current streak: got %d, want 2", s.Current)
	}
}

func TestCurrentStreakStopsAtBreakEven(t *testing.T) {
	s := DetectStreaks(cents(500, 500, 0))
	if s.Current != 0 {
		t.Fatalf("trailing break-even must zero the streak: got %d", s.Current)
	}
	s = DetectStreaks(cents(-500, -500))
	if s.Current != -2 {
		t.Fatalf("got %d, want -2", s.Current)
	}
}

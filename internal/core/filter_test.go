package core

import (
	"reflect"
	"testing"
)

func entry(iso, player string, buyIn, cashOut int64) SessionEntry {
	d, err := ParseISODate(iso)
	if err != nil {
		panic(err)
	}
	return NewSessionEntry(d, player, Money{Cents: buyIn}, Money{Cents: cashOut}, "X")
}

func TestFilterPeriod(t *testing.T) {
	ledger := []SessionEntry{
		entry("2023-12-30", "Alice", 100, 150),
		entry("2024-01-05", "Alice", 100, 80),
		entry("2024-02-09", "Bob", 100, 120),
		entry("2024-02-16", "Alice", 100, 90),
	}

	if got := FilterPeriod(ledger, AllTime); len(got) != 4 {
		t.Fatalf("all-time: got %d rows", len(got))
	}
	if got := FilterPeriod(ledger, Period{Year: 2024}); len(got) != 3 {
		t.Fatalf("year: got %d rows", len(got))
	}
	if got := FilterPeriod(ledger, Period{Year: 2024, Month: 2}); len(got) != 2 {
		t.Fatalf("month: got %d rows", len(got))
	}
	if got := FilterPeriod(ledger, Period{Year: 2022}); len(got) != 0 {
		t.Fatalf("empty period must be empty, got %d rows", len(got))
	}
}

func TestFilterPeriodIdempotent(t *testing.T) {
	ledger := []SessionEntry{
		entry("2024-01-05", "Alice", 100, 80),
		entry("2023-06-01", "Bob", 100, 120),
	}
	once := FilterPeriod(ledger, Period{Year: 2024})
	twice := FilterPeriod(once, Period{Year: 2024})
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filtering twice changed the result")
	}
}

func TestYearsAndMonths(t *testing.T) {
	ledger := []SessionEntry{
		entry("2022-05-01", "Alice", 100, 80),
		entry("2024-03-05", "Alice", 100, 80),
		entry("2024-01-05", "Bob", 100, 80),
		entry("2024-03-12", "Bob", 100, 80),
		entry("2023-07-01", "Alice", 100, 80),
	}
	if got := Years(ledger); !reflect.DeepEqual(got, []int{2024, 2023, 2022}) {
		t.Fatalf("years: %v", got)
	}
	if got := MonthsOf(ledger, 2024); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("months: %v", got)
	}
	if got := MonthsOf(ledger, 2021); len(got) != 0 {
		t.Fatalf("months of absent year: %v", got)
	}
}

func TestYearsEmptyLedger(t *testing.T) {
	if got := Years(nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

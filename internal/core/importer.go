package core

import (
	"fmt"
	"strings"
	"time"
)

// RawTable is a tabular import batch as handed over by the upload collaborator:
// a header row plus data rows, all text. The importer owns header resolution
// and per-row normalization; reading the file format is not its concern.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ImportResult carries the accepted entries plus how many submitted rows were
// dropped for unparseable dates or amounts. Dropping is per-row and never
// fails the batch.
type ImportResult struct {
	Entries   []SessionEntry
	Submitted int
	Dropped   int
}

// MissingColumnsError fails a whole batch whose header lacks a required
// semantic column. Found lists the headers actually present so the caller can
// report a useful message.
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns %v; found columns %v", e.Missing, e.Found)
}

// Historical exports name their columns inconsistently; matching is
// case-insensitive and tolerant of the known Italian/English synonyms.
var (
	dateSynonyms   = []string{"data", "date"}
	playerSynonyms = []string{"nome del giocatore", "giocatore", "player", "nome"}
	buyInSynonyms  = []string{"entrata", "buyin", "buy-in", "buy in"}
	// Cash-out matches by substring: exports use "uscita", "uscita (€)",
	// "cashout", "cash-out" and friends.
	cashOutFragments = []string{"uscita", "cashout", "cash-out", "cash out"}
)

// Day-first layouts tried in order when a date is not already ISO.
var importDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"02/01/06",
}

// NormalizeTable turns a raw import batch into validated entries for one club.
//
// The required columns are date, player, buy-in and cash-out; any column that
// would carry a profit value is deliberately ignored and profit is recomputed.
// Rows whose date or amounts cannot be parsed are dropped and counted.
func NormalizeTable(t RawTable, club string) (ImportResult, error) {
	if strings.TrimSpace(club) == "" {
		return ImportResult{}, ErrEmptyClub
	}

	cols, err := resolveColumns(t.Header)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Submitted: len(t.Rows)}
	for _, row := range t.Rows {
		entry, ok := normalizeRow(row, cols, club)
		if !ok {
			res.Dropped++
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

// columnIndexes holds the resolved position of each semantic column.
type columnIndexes struct {
	date    int
	player  int
	buyIn   int
	cashOut int
}

func resolveColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, player: -1, buyIn: -1, cashOut: -1}
	found := make([]string, 0, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		found = append(found, strings.TrimSpace(h))
		switch {
		case cols.date == -1 && matchesAny(name, dateSynonyms):
			cols.date = i
		case cols.player == -1 && matchesAny(name, playerSynonyms):
			cols.player = i
		case cols.buyIn == -1 && matchesAny(name, buyInSynonyms):
			cols.buyIn = i
		case cols.cashOut == -1 && containsAny(name, cashOutFragments):
			cols.cashOut = i
		}
	}

	var missing []string
	if cols.date == -1 {
		missing = append(missing, "date")
	}
	if cols.player == -1 {
		missing = append(missing, "player")
	}
	if cols.buyIn == -1 {
		missing = append(missing, "buy-in")
	}
	if cols.cashOut == -1 {
		missing = append(missing, "cash-out")
	}
	if len(missing) > 0 {
		return cols, &MissingColumnsError{Missing: missing, Found: found}
	}
	return cols, nil
}

func normalizeRow(row []string, cols columnIndexes, club string) (SessionEntry, bool) {
	date, err := ParseFlexibleDate(cell(row, cols.date))
	if err != nil {
		return SessionEntry{}, false
	}
	player := strings.TrimSpace(cell(row, cols.player))
	if player == "" {
		return SessionEntry{}, false
	}
	buyIn, err := ParseAmount(cell(row, cols.buyIn))
	if err != nil {
		return SessionEntry{}, false
	}
	cashOut, err := ParseAmount(cell(row, cols.cashOut))
	if err != nil {
		return SessionEntry{}, false
	}
	return NewSessionEntry(date, player, buyIn, cashOut, club), true
}

// ParseFlexibleDate resolves the day-first ambiguous formats found in
// historical files, preferring ISO when it fits. Unresolvable values are an
// error; the caller drops the row.
func ParseFlexibleDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func matchesAny(name string, synonyms []string) bool {
	for _, syn := range synonyms {
		if name == syn {
			return true
		}
	}
	return false
}

func containsAny(name string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

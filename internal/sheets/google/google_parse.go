package google

import (
	"fmt"
	"strings"

	"pokerhub/internal/core"
)

// The ledger worksheet carries the persisted six-column row layout:
// date (YYYY-MM-DD), player, buy-in, cash-out, profit, club.
const (
	colDate = iota
	colPlayer
	colBuyIn
	colCashOut
	colProfit
	colClub
	ledgerCols
)

// parseLedgerRow converts one worksheet row into a SessionEntry. The stored
// profit column is ignored; profit is recomputed from buy-in and cash-out.
func parseLedgerRow(cols []string) (core.SessionEntry, error) {
	if len(cols) < ledgerCols {
		return core.SessionEntry{}, fmt.Errorf("short row: %d columns", len(cols))
	}
	date, err := core.ParseISODate(cols[colDate])
	if err != nil {
		// Hand-edited sheets sometimes hold locale dates.
		date, err = core.ParseFlexibleDate(cols[colDate])
		if err != nil {
			return core.SessionEntry{}, fmt.Errorf("date: %w", err)
		}
	}
	player := strings.TrimSpace(cols[colPlayer])
	if player == "" {
		return core.SessionEntry{}, core.ErrEmptyPlayer
	}
	buyIn, err := core.ParseAmount(cols[colBuyIn])
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("buy-in: %w", err)
	}
	cashOut, err := core.ParseAmount(cols[colCashOut])
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("cash-out: %w", err)
	}
	club := strings.TrimSpace(cols[colClub])
	if club == "" {
		return core.SessionEntry{}, core.ErrEmptyClub
	}
	return core.NewSessionEntry(date, player, buyIn, cashOut, club), nil
}

// ledgerRow renders an entry in the persisted layout. Amounts go out as euro
// floats so the sheet shows numbers, not cents.
func ledgerRow(e core.SessionEntry, club string) []any {
	return []any{
		e.Date.ISO(),
		e.Player,
		e.BuyIn.Euros(),
		e.CashOut.Euros(),
		e.Profit.Euros(),
		club,
	}
}

// parseClubRow reads a directory row: name, owner, comma-joined members.
func parseClubRow(cols []string) (core.Club, bool) {
	if len(cols) < 2 {
		return core.Club{}, false
	}
	name := strings.TrimSpace(cols[0])
	owner := strings.TrimSpace(cols[1])
	if name == "" || owner == "" {
		return core.Club{}, false
	}
	var members []string
	if len(cols) >= 3 {
		for _, m := range strings.Split(cols[2], ",") {
			if m = strings.TrimSpace(m); m != "" {
				members = append(members, m)
			}
		}
	}
	return core.Club{Name: name, Owner: owner, Members: members}, true
}

func isLedgerHeader(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(cols[0]))
	return first == "data" || first == "date"
}

func isClubsHeader(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(cols[0]))
	return first == "nomeclub" || first == "club" || first == "name"
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

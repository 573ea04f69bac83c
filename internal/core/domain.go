package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with day precision, timezone-naive (stored as UTC midnight).
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// SessionEntry is one row of a club ledger: what one player bought in and
	// cashed out on one date. Profit is always derived as CashOut - BuyIn; a
	// row with BuyIn == 0 marks a player who did not play that date.
	SessionEntry struct {
		Date    Date
		Player  string
		BuyIn   Money
		CashOut Money
		Profit  Money
		Club    string
	}

	// Club is a directory record: who owns the club and who plays in it.
	// The owner is the "host", the sole writer of sessions by convention.
	Club struct {
		Name    string
		Owner   string
		Members []string
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyPlayer    = errors.New("empty player name")
	ErrEmptyClub      = errors.New("empty club name")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseISODate parses a YYYY-MM-DD string, the persisted row layout format.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewSessionEntry builds an entry and derives the profit. Any profit value
// present in raw input must be discarded in favor of this computation.
func NewSessionEntry(date Date, player string, buyIn, cashOut Money, club string) SessionEntry {
	return SessionEntry{
		Date:    date,
		Player:  player,
		BuyIn:   buyIn,
		CashOut: cashOut,
		Profit:  cashOut.Sub(buyIn),
		Club:    club,
	}
}

func (e SessionEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Player) == "" {
		return ErrEmptyPlayer
	}
	if e.BuyIn.Cents < 0 || e.CashOut.Cents < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(e.Club) == "" {
		return ErrEmptyClub
	}
	if e.Profit.Cents != e.CashOut.Cents-e.BuyIn.Cents {
		return errors.New("profit does not match cashout minus buyin")
	}
	return nil
}

// Active reports whether the player actually played, as opposed to a
// zero-buy-in absence placeholder.
func (e SessionEntry) Active() bool {
	return e.BuyIn.Cents > 0
}

// HasMember reports whether the named player belongs to the club.
func (c Club) HasMember(player string) bool {
	for _, m := range c.Members {
		if m == player {
			return true
		}
	}
	return false
}

// IsHost reports whether the named player is the club owner.
func (c Club) IsHost(player string) bool {
	return c.Owner == player
}

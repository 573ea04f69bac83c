package sheets

import (
	"context"
	"errors"

	"pokerhub/internal/core"
)

// ErrClubNotFound is returned by directory lookups for unknown clubs.
var ErrClubNotFound = errors.New("club not found")

// Ports for outbound adapters. The ledger is append-only: sessions are added
// whole and single rows are removed only for maintenance by the host.
type (
	LedgerReader interface {
		// Load returns the club's ledger rows in insertion order.
		Load(ctx context.Context, club string) ([]core.SessionEntry, error)
	}

	LedgerWriter interface {
		// Append adds the entries of one session to the club's ledger.
		Append(ctx context.Context, club string, entries []core.SessionEntry) error
	}

	LedgerDeleter interface {
		// Delete removes a single entry by its backend row reference.
		Delete(ctx context.Context, club string, rowRef string) error
	}

	ClubDirectory interface {
		ListClubs(ctx context.Context) ([]core.Club, error)
		// GetClub returns ErrClubNotFound when the club does not exist.
		GetClub(ctx context.Context, name string) (core.Club, error)
	}
)

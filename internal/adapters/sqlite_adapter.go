package adapters

import (
	"context"
	"fmt"
	"strconv"

	"pokerhub/internal/core"
	"pokerhub/internal/services"
	"pokerhub/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and SessionService to the sheets.*
// ports. Writes and deletes go through the service so sync messages get
// published; reads hit the repository directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.SessionService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.SessionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Load implements sheets.LedgerReader
func (a *SQLiteAdapter) Load(ctx context.Context, club string) ([]core.SessionEntry, error) {
	return a.storage.Load(ctx, club)
}

// Append implements sheets.LedgerWriter
func (a *SQLiteAdapter) Append(ctx context.Context, club string, entries []core.SessionEntry) error {
	return a.service.SubmitSessions(ctx, club, entries)
}

// Delete implements sheets.LedgerDeleter
func (a *SQLiteAdapter) Delete(ctx context.Context, club string, rowRef string) error {
	id, err := strconv.ParseInt(rowRef, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid row reference %q: %w", rowRef, err)
	}
	return a.service.DeleteSession(ctx, club, id)
}

// ListClubs implements sheets.ClubDirectory
func (a *SQLiteAdapter) ListClubs(ctx context.Context) ([]core.Club, error) {
	return a.storage.ListClubs(ctx)
}

// GetClub implements sheets.ClubDirectory
func (a *SQLiteAdapter) GetClub(ctx context.Context, name string) (core.Club, error) {
	return a.storage.GetClub(ctx, name)
}

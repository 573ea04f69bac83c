package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pokerhub/internal/core"
	ports "pokerhub/internal/sheets"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ ports.LedgerReader  = (*SQLiteRepository)(nil)
	_ ports.LedgerWriter  = (*SQLiteRepository)(nil)
	_ ports.LedgerDeleter = (*SQLiteRepository)(nil)
	_ ports.ClubDirectory = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements sheets.LedgerReader
func (r *SQLiteRepository) Load(ctx context.Context, club string) ([]core.SessionEntry, error) {
	rows, err := r.queries.ListSessionsByClub(ctx, club)
	if err != nil {
		return nil, fmt.Errorf("list sessions for club %s: %w", club, err)
	}

	entries := make([]core.SessionEntry, 0, len(rows))
	for _, s := range rows {
		e, err := sessionToEntry(s)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed session row",
				"id", s.ID, "club", club, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Append implements sheets.LedgerWriter
func (r *SQLiteRepository) Append(ctx context.Context, club string, entries []core.SessionEntry) error {
	for _, e := range entries {
		if _, err := r.CreateSessionEntry(ctx, club, e); err != nil {
			return err
		}
	}
	return nil
}

// CreateSessionEntry stores a single entry and returns its database ID.
func (r *SQLiteRepository) CreateSessionEntry(ctx context.Context, club string, e core.SessionEntry) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("invalid session entry: %w", err)
	}
	s, err := r.queries.CreateSession(ctx, CreateSessionParams{
		Date:         e.Date.ISO(),
		Player:       e.Player,
		BuyInCents:   e.BuyIn.Cents,
		CashOutCents: e.CashOut.Cents,
		ProfitCents:  e.Profit.Cents,
		Club:         club,
	})
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "Session saved to SQLite",
		"id", s.ID,
		"player", s.Player,
		"date", s.Date,
		"profit_cents", s.ProfitCents,
		"club", s.Club)

	return s.ID, nil
}

// Delete implements sheets.LedgerDeleter. The row reference is the
// session's database ID.
func (r *SQLiteRepository) Delete(ctx context.Context, club string, rowRef string) error {
	id, err := strconv.ParseInt(rowRef, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid row reference %q: %w", rowRef, err)
	}

	s, err := r.queries.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("get session %d: %w", id, err)
	}
	if s.Club != club {
		return fmt.Errorf("session %d does not belong to club %s", id, club)
	}

	if err := r.queries.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Session deleted from SQLite", "id", id, "club", club)
	return nil
}

// ListClubs implements sheets.ClubDirectory
func (r *SQLiteRepository) ListClubs(ctx context.Context) ([]core.Club, error) {
	rows, err := r.queries.ListClubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	clubs := make([]core.Club, len(rows))
	for i, c := range rows {
		clubs[i] = clubRowToClub(c)
	}
	return clubs, nil
}

// GetClub implements sheets.ClubDirectory
func (r *SQLiteRepository) GetClub(ctx context.Context, name string) (core.Club, error) {
	row, err := r.queries.GetClub(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Club{}, ports.ErrClubNotFound
	}
	if err != nil {
		return core.Club{}, fmt.Errorf("get club %s: %w", name, err)
	}
	return clubRowToClub(row), nil
}

// UpsertClub stores or updates a club in the local directory.
func (r *SQLiteRepository) UpsertClub(ctx context.Context, c core.Club) error {
	err := r.queries.UpsertClub(ctx, ClubRow{
		Name:    c.Name,
		Owner:   c.Owner,
		Members: strings.Join(c.Members, ","),
	})
	if err != nil {
		return fmt.Errorf("upsert club %s: %w", c.Name, err)
	}
	return nil
}

// PendingSyncSession is the minimal data carried in sync queue messages.
type PendingSyncSession struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncSessions returns sessions not yet pushed to the remote ledger.
func (r *SQLiteRepository) GetPendingSyncSessions(ctx context.Context, limit int) ([]PendingSyncSession, error) {
	rows, err := r.queries.GetPendingSyncSessions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync sessions: %w", err)
	}

	pending := make([]PendingSyncSession, len(rows))
	for i, s := range rows {
		pending[i] = PendingSyncSession{ID: s.ID, Version: s.Version, CreatedAt: s.CreatedAt}
	}
	return pending, nil
}

// GetSessionEntry retrieves a single session by ID together with its club.
func (r *SQLiteRepository) GetSessionEntry(ctx context.Context, id int64) (core.SessionEntry, string, error) {
	s, err := r.queries.GetSession(ctx, id)
	if err != nil {
		return core.SessionEntry{}, "", fmt.Errorf("get session %d: %w", id, err)
	}
	e, err := sessionToEntry(s)
	if err != nil {
		return core.SessionEntry{}, "", err
	}
	return e, s.Club, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkSessionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark session synced: %w", err)
	}
	slog.InfoContext(ctx, "Session marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkSessionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark session sync error: %w", err)
	}
	slog.WarnContext(ctx, "Session marked with sync error", "id", id)
	return nil
}

func sessionToEntry(s Session) (core.SessionEntry, error) {
	d, err := core.ParseISODate(s.Date)
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("parse date %q: %w", s.Date, err)
	}
	return core.NewSessionEntry(d, s.Player,
		core.Money{Cents: s.BuyInCents}, core.Money{Cents: s.CashOutCents}, s.Club), nil
}

func clubRowToClub(c ClubRow) core.Club {
	var members []string
	for _, m := range strings.Split(c.Members, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return core.Club{Name: c.Name, Owner: c.Owner, Members: members}
}

package storage

import (
	"context"
	"database/sql"
	"time"
)

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Session is a ledger row as stored in SQLite. Dates are ISO strings,
// amounts are euro cents.
type Session struct {
	ID           int64
	Date         string
	Player       string
	BuyInCents   int64
	CashOutCents int64
	ProfitCents  int64
	Club         string
	CreatedAt    time.Time
	SyncStatus   string
	Version      int64
}

type ClubRow struct {
	Name    string
	Owner   string
	Members string
}

type CreateSessionParams struct {
	Date         string
	Player       string
	BuyInCents   int64
	CashOutCents int64
	ProfitCents  int64
	Club         string
}

const createSession = `
INSERT INTO sessions (date, player, buyin_cents, cashout_cents, profit_cents, club)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, date, player, buyin_cents, cashout_cents, profit_cents, club, created_at, sync_status, version
`

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRowContext(ctx, createSession,
		arg.Date, arg.Player, arg.BuyInCents, arg.CashOutCents, arg.ProfitCents, arg.Club)
	var s Session
	err := row.Scan(&s.ID, &s.Date, &s.Player, &s.BuyInCents, &s.CashOutCents,
		&s.ProfitCents, &s.Club, &s.CreatedAt, &s.SyncStatus, &s.Version)
	return s, err
}

const getSession = `
SELECT id, date, player, buyin_cents, cashout_cents, profit_cents, club, created_at, sync_status, version
FROM sessions WHERE id = ?
`

func (q *Queries) GetSession(ctx context.Context, id int64) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, id)
	var s Session
	err := row.Scan(&s.ID, &s.Date, &s.Player, &s.BuyInCents, &s.CashOutCents,
		&s.ProfitCents, &s.Club, &s.CreatedAt, &s.SyncStatus, &s.Version)
	return s, err
}

const listSessionsByClub = `
SELECT id, date, player, buyin_cents, cashout_cents, profit_cents, club, created_at, sync_status, version
FROM sessions WHERE club = ? ORDER BY date, id
`

func (q *Queries) ListSessionsByClub(ctx context.Context, club string) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx, listSessionsByClub, club)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Date, &s.Player, &s.BuyInCents, &s.CashOutCents,
			&s.ProfitCents, &s.Club, &s.CreatedAt, &s.SyncStatus, &s.Version); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const deleteSession = `DELETE FROM sessions WHERE id = ?`

func (q *Queries) DeleteSession(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const getPendingSyncSessions = `
SELECT id, date, player, buyin_cents, cashout_cents, profit_cents, club, created_at, sync_status, version
FROM sessions WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?
`

func (q *Queries) GetPendingSyncSessions(ctx context.Context, limit int64) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncSessions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Date, &s.Player, &s.BuyInCents, &s.CashOutCents,
			&s.ProfitCents, &s.Club, &s.CreatedAt, &s.SyncStatus, &s.Version); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const markSessionSynced = `UPDATE sessions SET sync_status = 'synced' WHERE id = ?`

func (q *Queries) MarkSessionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSessionSynced, id)
	return err
}

const markSessionSyncError = `UPDATE sessions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkSessionSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSessionSyncError, id)
	return err
}

const upsertClub = `
INSERT INTO clubs (name, owner, members) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET owner = excluded.owner, members = excluded.members
`

func (q *Queries) UpsertClub(ctx context.Context, c ClubRow) error {
	_, err := q.db.ExecContext(ctx, upsertClub, c.Name, c.Owner, c.Members)
	return err
}

const listClubs = `SELECT name, owner, members FROM clubs ORDER BY name`

func (q *Queries) ListClubs(ctx context.Context) ([]ClubRow, error) {
	rows, err := q.db.QueryContext(ctx, listClubs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []ClubRow
	for rows.Next() {
		var c ClubRow
		if err := rows.Scan(&c.Name, &c.Owner, &c.Members); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

const getClub = `SELECT name, owner, members FROM clubs WHERE name = ?`

func (q *Queries) GetClub(ctx context.Context, name string) (ClubRow, error) {
	row := q.db.QueryRowContext(ctx, getClub, name)
	var c ClubRow
	err := row.Scan(&c.Name, &c.Owner, &c.Members)
	return c, err
}

package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"pokerhub/internal/core"
	ports "pokerhub/internal/sheets"
)

// Store is an in-memory backend for tests and local development. Row
// references are 1-based insertion positions within a club's ledger.
type Store struct {
	mu      sync.Mutex
	ledgers map[string][]core.SessionEntry
	clubs   []core.Club
}

var (
	_ ports.LedgerReader  = (*Store)(nil)
	_ ports.LedgerWriter  = (*Store)(nil)
	_ ports.LedgerDeleter = (*Store)(nil)
	_ ports.ClubDirectory = (*Store)(nil)
)

func New(clubs ...core.Club) *Store {
	return &Store{
		ledgers: map[string][]core.SessionEntry{},
		clubs:   clubs,
	}
}

// Seed replaces the club's ledger wholesale; test setup only.
func (s *Store) Seed(club string, entries []core.SessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[club] = append([]core.SessionEntry(nil), entries...)
}

func (s *Store) Load(_ context.Context, club string) ([]core.SessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SessionEntry(nil), s.ledgers[club]...), nil
}

func (s *Store) Append(_ context.Context, club string, entries []core.SessionEntry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[club] = append(s.ledgers[club], entries...)
	return nil
}

func (s *Store) Delete(_ context.Context, club string, rowRef string) error {
	idx, err := strconv.Atoi(rowRef)
	if err != nil || idx < 1 {
		return fmt.Errorf("invalid row reference %q", rowRef)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := s.ledgers[club]
	if idx > len(ledger) {
		return fmt.Errorf("row %d not found in club %q", idx, club)
	}
	s.ledgers[club] = append(ledger[:idx-1], ledger[idx:]...)
	return nil
}

func (s *Store) ListClubs(_ context.Context) ([]core.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Club(nil), s.clubs...), nil
}

func (s *Store) GetClub(_ context.Context, name string) (core.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clubs {
		if c.Name == name {
			return c, nil
		}
	}
	return core.Club{}, ports.ErrClubNotFound
}

// AddClub registers a club in the directory.
func (s *Store) AddClub(c core.Club) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs = append(s.clubs, c)
}

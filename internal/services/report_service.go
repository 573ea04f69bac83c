package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"pokerhub/internal/core"
	applog "pokerhub/internal/log"
	sheets "pokerhub/internal/sheets"
)

var (
	// ErrNoHistory means the club ledger has no rows at all.
	ErrNoHistory = errors.New("no session history")
	// ErrEmptyPeriod means the ledger has rows but none in the requested period.
	ErrEmptyPeriod = errors.New("no sessions in period")
)

// PeriodList is the set of selectable reporting periods for a club.
type PeriodList struct {
	Years []int `json:"years"`
	// MonthsByYear maps each year to its months with activity, ascending.
	MonthsByYear map[int][]int `json:"months_by_year"`
}

// ReportService builds analytics on top of the ledger ports.
type ReportService struct {
	reader    sheets.LedgerReader
	directory sheets.ClubDirectory
}

func NewReportService(reader sheets.LedgerReader, directory sheets.ClubDirectory) *ReportService {
	return &ReportService{reader: reader, directory: directory}
}

// loadClubLedger fetches the club record and its ledger concurrently.
func (s *ReportService) loadClubLedger(ctx context.Context, club string) (core.Club, []core.SessionEntry, error) {
	var (
		clubRec core.Club
		entries []core.SessionEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.directory.GetClub(gctx, club)
		if err != nil {
			return fmt.Errorf("get club %s: %w", club, err)
		}
		clubRec = c
		return nil
	})
	g.Go(func() error {
		e, err := s.reader.Load(gctx, club)
		if err != nil {
			return fmt.Errorf("load ledger for %s: %w", club, err)
		}
		entries = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Club{}, nil, err
	}

	return clubRec, entries, nil
}

// Ledger returns the raw session history for a club.
func (s *ReportService) Ledger(ctx context.Context, club string) ([]core.SessionEntry, error) {
	_, entries, err := s.loadClubLedger(ctx, club)
	return entries, err
}

// Periods lists the years and months with recorded activity.
func (s *ReportService) Periods(ctx context.Context, club string) (PeriodList, error) {
	_, entries, err := s.loadClubLedger(ctx, club)
	if err != nil {
		return PeriodList{}, err
	}
	if len(entries) == 0 {
		return PeriodList{}, ErrNoHistory
	}

	years := core.Years(entries)
	months := make(map[int][]int, len(years))
	for _, y := range years {
		months[y] = core.MonthsOf(entries, y)
	}
	return PeriodList{Years: years, MonthsByYear: months}, nil
}

// PersonalReport builds the per-player analytics for one period.
func (s *ReportService) PersonalReport(ctx context.Context, club, player string, period core.Period) (core.PersonalReport, error) {
	clubRec, entries, err := s.loadClubLedger(ctx, club)
	if err != nil {
		return core.PersonalReport{}, err
	}
	if len(entries) == 0 {
		return core.PersonalReport{}, ErrNoHistory
	}
	if !clubRec.HasMember(player) {
		slog.WarnContext(ctx, "Report requested for non-member",
			applog.FieldPlayer, player, applog.FieldClub, club)
	}

	filtered := core.FilterPeriod(entries, period)
	if len(filtered) == 0 {
		return core.PersonalReport{}, ErrEmptyPeriod
	}

	return core.BuildPersonalReport(filtered, player), nil
}

// ClubReport builds the club-wide analytics for one period. Players in
// excluded are ignored for the attendance award only.
func (s *ReportService) ClubReport(ctx context.Context, club string, period core.Period, excluded []string) (core.ClubReport, error) {
	_, entries, err := s.loadClubLedger(ctx, club)
	if err != nil {
		return core.ClubReport{}, err
	}
	if len(entries) == 0 {
		return core.ClubReport{}, ErrNoHistory
	}

	filtered := core.FilterPeriod(entries, period)
	if len(filtered) == 0 {
		return core.ClubReport{}, ErrEmptyPeriod
	}

	return core.BuildClubReport(filtered, excluded), nil
}

// ImportTable normalizes an uploaded table and appends the surviving
// rows to the club ledger.
func (s *ReportService) ImportTable(ctx context.Context, writer sheets.LedgerWriter, club string, table core.RawTable) (core.ImportResult, error) {
	result, err := core.NormalizeTable(table, club)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("normalize table: %w", err)
	}

	if len(result.Entries) > 0 {
		if err := writer.Append(ctx, club, result.Entries); err != nil {
			return core.ImportResult{}, fmt.Errorf("append imported rows: %w", err)
		}
	}

	slog.InfoContext(ctx, "Imported session table",
		applog.FieldClub, club,
		applog.FieldRowsSubmitted, result.Submitted,
		applog.FieldRowsDropped, result.Dropped)

	return result, nil
}

package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pokerhub/internal/core"
	applog "pokerhub/internal/log"
	sheets "pokerhub/internal/sheets"
)

func (s *Server) handleListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := s.backend.ListClubs(r.Context())
	if err != nil {
		s.audit.LogError(r.Context(), "List clubs error", err, applog.ComponentHTTP, applog.OpList, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "failed to list clubs")
		return
	}

	type clubView struct {
		Name    string   `json:"name"`
		Owner   string   `json:"owner"`
		Members []string `json:"members"`
	}
	views := make([]clubView, len(clubs))
	for i, c := range clubs {
		views[i] = clubView{Name: c.Name, Owner: c.Owner, Members: c.Members}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clubs": views})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	entries, err := s.reports.Ledger(r.Context(), club)
	if err != nil {
		s.writeReportError(w, r, club, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"club":    club,
		"entries": entries,
	})
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	periods, err := s.reports.Periods(r.Context(), club)
	if err != nil {
		s.writeReportError(w, r, club, err)
		return
	}

	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handlePersonalReport(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, "player query parameter is required")
		return
	}

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.reports.PersonalReport(r.Context(), club, player, period)
	if err != nil {
		s.writeReportError(w, r, club, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleClubReport(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	excluded := parseExcluded(r)

	report, err := s.reports.ClubReport(r.Context(), club, period, excluded)
	if err != nil {
		s.writeReportError(w, r, club, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// sessionRequest is one ledger row as submitted by the host. Amounts are
// strings so locale forms like "17,50" survive the trip.
type sessionRequest struct {
	Date    string `json:"date"`
	Player  string `json:"player"`
	BuyIn   string `json:"buyin"`
	CashOut string `json:"cashout"`
}

func (s *Server) handleCreateSessions(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	var reqs []sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON array of sessions")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "no sessions submitted")
		return
	}

	entries := make([]core.SessionEntry, 0, len(reqs))
	for i, req := range reqs {
		entry, err := entryFromRequest(req, club)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("session %d: %v", i, err))
			return
		}
		entries = append(entries, entry)
	}

	if err := s.backend.Append(r.Context(), club, entries); err != nil {
		s.audit.LogError(r.Context(), "Session append error", err, applog.ComponentHTTP, applog.OpAppend,
			applog.LogFields{applog.FieldClub: club})
		writeError(w, http.StatusInternalServerError, "failed to save sessions")
		return
	}

	for _, e := range entries {
		s.audit.LogSessionRecorded(r.Context(), e.Player, e.Date.ISO(), e.BuyIn.Cents, e.CashOut.Cents, club)
	}

	s.ledger.invalidate(club)
	writeJSON(w, http.StatusCreated, map[string]any{"submitted": len(entries)})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")
	id := r.PathValue("id")

	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.backend.Delete(r.Context(), club, id); err != nil {
		s.audit.LogError(r.Context(), "Session delete error", err, applog.ComponentHTTP, applog.OpDelete,
			applog.LogFields{applog.FieldClub: club, "id": id})
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	s.ledger.invalidate(club)
	w.WriteHeader(http.StatusNoContent)
}

// handleImport accepts a CSV upload, normalizes it through the flexible
// column mapping and appends the surviving rows to the club ledger.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	club := r.PathValue("club")

	reader := csv.NewReader(r.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid CSV: "+err.Error())
		return
	}
	if len(records) < 1 {
		writeError(w, http.StatusBadRequest, "empty CSV")
		return
	}

	table := core.RawTable{
		Header: records[0],
		Rows:   records[1:],
	}

	result, err := s.reports.ImportTable(r.Context(), s.backend, club, table)
	if err != nil {
		var missing *core.MissingColumnsError
		if errors.As(err, &missing) {
			writeError(w, http.StatusUnprocessableEntity, missing.Error())
			return
		}
		s.audit.LogError(r.Context(), "Import error", err, applog.ComponentHTTP, applog.OpImport,
			applog.LogFields{applog.FieldClub: club})
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	s.ledger.invalidate(club)
	writeJSON(w, http.StatusOK, map[string]any{
		"submitted": result.Submitted,
		"dropped":   result.Dropped,
	})
}

func entryFromRequest(req sessionRequest, club string) (core.SessionEntry, error) {
	date, err := core.ParseFlexibleDate(req.Date)
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("invalid date %q", req.Date)
	}
	buyIn, err := core.ParseAmount(req.BuyIn)
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("invalid buy-in %q", req.BuyIn)
	}
	cashOut, err := core.ParseAmount(req.CashOut)
	if err != nil {
		return core.SessionEntry{}, fmt.Errorf("invalid cash-out %q", req.CashOut)
	}

	entry := core.NewSessionEntry(date, req.Player, buyIn, cashOut, club)
	if err := entry.Validate(); err != nil {
		return core.SessionEntry{}, err
	}
	return entry, nil
}

// writeReportError maps service sentinel errors onto HTTP statuses.
func (s *Server) writeReportError(w http.ResponseWriter, r *http.Request, club string, err error) {
	switch {
	case errors.Is(err, sheets.ErrClubNotFound):
		writeError(w, http.StatusNotFound, "club not found: "+club)
	case isNoData(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.audit.LogError(r.Context(), "Report failed", err, applog.ComponentReport, applog.OpReport,
			applog.LogFields{applog.FieldClub: club})
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

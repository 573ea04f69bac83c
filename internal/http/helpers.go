package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pokerhub/internal/core"
	"pokerhub/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parsePeriod reads optional year and month query parameters. Absent
// parameters mean all-time; month without year is rejected.
func parsePeriod(r *http.Request) (core.Period, error) {
	q := r.URL.Query()
	var period core.Period

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1900 || year > 9999 {
			return core.Period{}, fmt.Errorf("invalid year %q", v)
		}
		period.Year = year
	}

	if v := strings.TrimSpace(q.Get("month")); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return core.Period{}, fmt.Errorf("invalid month %q", v)
		}
		if period.Year == 0 {
			return core.Period{}, fmt.Errorf("month filter requires a year")
		}
		period.Month = month
	}

	return period, nil
}

// parseExcluded reads the comma-separated exclude parameter for the
// attendance award.
func parseExcluded(r *http.Request) []string {
	raw := r.URL.Query().Get("exclude")
	if raw == "" {
		return nil
	}
	var excluded []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			excluded = append(excluded, name)
		}
	}
	return excluded
}

func isNoData(err error) bool {
	return errors.Is(err, services.ErrNoHistory) || errors.Is(err, services.ErrEmptyPeriod)
}

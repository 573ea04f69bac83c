package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pokerhub/internal/core"
	"pokerhub/internal/sheets/memory"
)

func entry(iso, player string, buyIn, cashOut int64) core.SessionEntry {
	d, _ := core.ParseISODate(iso)
	return core.NewSessionEntry(d, player, core.Money{Cents: buyIn}, core.Money{Cents: cashOut}, "Royal")
}

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New(core.Club{Name: "Royal", Owner: "Alice", Members: []string{"Alice", "Bob"}})
	store.Seed("Royal", []core.SessionEntry{
		entry("2024-01-01", "Alice", 1000, 6000),
		entry("2024-01-01", "Bob", 1000, 500),
		entry("2024-02-10", "Alice", 2000, 1000),
	})
	s := NewServer(":0", store)
	t.Cleanup(func() {
		s.rateLimiter.stop()
		close(s.stopCacheCleanup)
	})
	return s, store
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestListClubs(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Clubs []struct {
			Name  string `json:"name"`
			Owner string `json:"owner"`
		} `json:"clubs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Clubs) != 1 || resp.Clubs[0].Name != "Royal" || resp.Clubs[0].Owner != "Alice" {
		t.Errorf("clubs = %+v, want Royal owned by Alice", resp.Clubs)
	}
}

func TestLedgerUnknownClub(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Nowhere/ledger", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLedger(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/ledger", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Entries []struct {
			Date   string `json:"Date"`
			Player string `json:"Player"`
			Profit int64  `json:"Profit"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(resp.Entries))
	}
	if resp.Entries[0].Player != "Alice" || resp.Entries[0].Profit != 5000 {
		t.Errorf("first entry = %+v, want Alice with 5000 cents profit", resp.Entries[0])
	}
	if resp.Entries[0].Date != "2024-01-01" {
		t.Errorf("first entry date = %q, want 2024-01-01", resp.Entries[0].Date)
	}
}

func TestPeriods(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/periods", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Years        []int         `json:"years"`
		MonthsByYear map[int][]int `json:"months_by_year"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Years) != 1 || resp.Years[0] != 2024 {
		t.Errorf("years = %v, want [2024]", resp.Years)
	}
	months := resp.MonthsByYear[2024]
	if len(months) != 2 || months[0] != 1 || months[1] != 2 {
		t.Errorf("months for 2024 = %v, want [1 2]", months)
	}
}

func TestPersonalReport(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/reports/personal?player=Alice&year=2024&month=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Player      string `json:"Player"`
		TotalProfit int64  `json:"TotalProfit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Player != "Alice" || resp.TotalProfit != 5000 {
		t.Errorf("report = %+v, want Alice with 5000 cents", resp)
	}
}

func TestPersonalReportValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/clubs/Royal/reports/personal", http.StatusBadRequest},
		{"/api/clubs/Royal/reports/personal?player=Alice&month=3", http.StatusBadRequest},
		{"/api/clubs/Royal/reports/personal?player=Alice&year=abc", http.StatusBadRequest},
		{"/api/clubs/Royal/reports/personal?player=Alice&year=2024&month=13", http.StatusBadRequest},
		{"/api/clubs/Royal/reports/personal?player=Alice&year=2020", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := doRequest(s, http.MethodGet, tt.path, "")
		if rec.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestClubReport(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/reports/club", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Shark struct {
			Player string `json:"Player"`
			Amount int64  `json:"Amount"`
		} `json:"Shark"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Shark.Player != "Alice" || resp.Shark.Amount != 4000 {
		t.Errorf("shark = %+v, want Alice with 4000 cents", resp.Shark)
	}
}

func TestClubReportExclude(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/reports/club?exclude=Alice,Bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Stakanovista struct {
			Player string `json:"Player"`
		} `json:"Stakanovista"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stakanovista.Player != "" {
		t.Errorf("Stakanovista = %q, want empty when every player is excluded", resp.Stakanovista.Player)
	}
}

func TestCreateSessions(t *testing.T) {
	s, store := newTestServer(t)

	body := `[
		{"date": "05/03/2024", "player": "Carol", "buyin": "17,50", "cashout": "30"},
		{"date": "2024-03-05", "player": "Dave", "buyin": "20", "cashout": "-"}
	]`
	rec := doRequest(s, http.MethodPost, "/api/clubs/Royal/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	entries, _ := store.Load(context.Background(), "Royal")
	if len(entries) != 5 {
		t.Fatalf("ledger has %d rows, want 5", len(entries))
	}
	carol := entries[3]
	if carol.Player != "Carol" || carol.BuyIn.Cents != 1750 || carol.Profit.Cents != 1250 {
		t.Errorf("Carol entry = %+v, want buy-in 1750 and profit 1250", carol)
	}
	if carol.Date.ISO() != "2024-03-05" {
		t.Errorf("Carol date = %s, want day-first 05/03/2024 read as 2024-03-05", carol.Date.ISO())
	}
}

func TestCreateSessionsValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "not json", http.StatusBadRequest},
		{"empty array", "[]", http.StatusBadRequest},
		{"bad date", `[{"date": "soon", "player": "Carol", "buyin": "10", "cashout": "20"}]`, http.StatusUnprocessableEntity},
		{"negative amount", `[{"date": "2024-03-05", "player": "Carol", "buyin": "-5", "cashout": "20"}]`, http.StatusUnprocessableEntity},
		{"empty player", `[{"date": "2024-03-05", "player": "", "buyin": "10", "cashout": "20"}]`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/clubs/Royal/sessions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	s, store := newTestServer(t)

	rec := doRequest(s, http.MethodDelete, "/api/clubs/Royal/sessions/2", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body: %s", rec.Code, rec.Body.String())
	}

	entries, _ := store.Load(context.Background(), "Royal")
	if len(entries) != 2 {
		t.Fatalf("ledger has %d rows after delete, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Player == "Bob" {
			t.Errorf("Bob's row should have been deleted")
		}
	}
}

func TestDeleteSessionBadID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodDelete, "/api/clubs/Royal/sessions/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportCSV(t *testing.T) {
	s, store := newTestServer(t)

	csvBody := "Data,Giocatore,Entrata,Uscita (€)\n" +
		"01/04/2024,Carol,\"10\",\"25\"\n" +
		"01/04/2024,Dave,\"€ 17,50\",\"0\"\n" +
		"bad-date,Carol,10,25\n"

	rec := doRequest(s, http.MethodPost, "/api/clubs/Royal/import", csvBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Submitted int `json:"submitted"`
		Dropped   int `json:"dropped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// submitted is the total row count handed in, dropped the rejects; the
	// ledger grows by the difference.
	if resp.Submitted != 3 || resp.Dropped != 1 {
		t.Errorf("import result = %+v, want submitted 3 dropped 1", resp)
	}

	entries, _ := store.Load(context.Background(), "Royal")
	if len(entries) != 5 {
		t.Errorf("ledger has %d rows after import, want 5", len(entries))
	}
}

func TestImportCSVMissingColumns(t *testing.T) {
	s, _ := newTestServer(t)

	csvBody := "Data,Giocatore\n2024-01-01,Carol\n"
	rec := doRequest(s, http.MethodPost, "/api/clubs/Royal/import", csvBody)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "cash-out") {
		t.Errorf("error should name the missing column, got: %s", rec.Body.String())
	}
}

func TestLedgerCacheInvalidation(t *testing.T) {
	s, _ := newTestServer(t)

	// Warm the cache, write a row, then make sure the next read sees it
	if rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/ledger", ""); rec.Code != http.StatusOK {
		t.Fatalf("warmup status = %d", rec.Code)
	}

	body := `[{"date": "2024-05-01", "player": "Eve", "buyin": "10", "cashout": "0"}]`
	if rec := doRequest(s, http.MethodPost, "/api/clubs/Royal/sessions", body); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec := doRequest(s, http.MethodGet, "/api/clubs/Royal/ledger", "")
	var resp struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 4 {
		t.Errorf("entries after write = %d, want 4 (stale cache?)", len(resp.Entries))
	}
}

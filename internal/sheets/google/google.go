package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"pokerhub/internal/core"
	ports "pokerhub/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// appendChunkSize bounds one Values.Append call; historical imports can be
// thousands of rows and the Sheets API rejects oversized payloads.
const appendChunkSize = 50

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	clubsSheet    string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Ensure interface conformance
var (
	_ ports.LedgerReader  = (*Client)(nil)
	_ ports.LedgerWriter  = (*Client)(nil)
	_ ports.LedgerDeleter = (*Client)(nil)
	_ ports.ClubDirectory = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_LEDGER_SHEET_NAME (default "Partite"),
// GOOGLE_CLUBS_SHEET_NAME (default "Club").
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerSheet := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerSheet == "" {
		ledgerSheet = "Partite"
	}
	clubsSheet := strings.TrimSpace(os.Getenv("GOOGLE_CLUBS_SHEET_NAME"))
	if clubsSheet == "" {
		clubsSheet = "Club"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ledgerSheet:   ledgerSheet,
		clubsSheet:    clubsSheet,
		sheetIDs:      map[string]int64{},
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load reads the ledger worksheet and returns the rows belonging to the club,
// in sheet order. Malformed rows are skipped, matching the import contract:
// a bad row never fails a read.
func (c *Client) Load(ctx context.Context, club string) ([]core.SessionEntry, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.SessionEntry
	skipped := 0
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && isLedgerHeader(cols) {
			continue
		}
		entry, err := parseLedgerRow(cols)
		if err != nil {
			skipped++
			continue
		}
		if entry.Club != club {
			continue
		}
		out = append(out, entry)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed ledger rows",
			"sheet", c.ledgerSheet, "skipped", skipped, "club", club)
	}
	return out, nil
}

// Append writes the session entries as new rows, in chunks.
func (c *Client) Append(ctx context.Context, club string, entries []core.SessionEntry) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		rows = append(rows, ledgerRow(e, club))
	}

	rng := fmt.Sprintf("%s!A:F", c.ledgerSheet)
	for start := 0; start < len(rows); start += appendChunkSize {
		end := start + appendChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		vr := &gsheet.ValueRange{Values: rows[start:end]}
		_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append rows %d-%d to %s: %w", start, end, c.ledgerSheet, err)
		}
	}

	slog.InfoContext(ctx, "Appended session rows to sheet",
		"sheet", c.ledgerSheet, "club", club, "rows", len(rows))
	return nil
}

// Delete removes a single ledger row by its 1-based sheet row number.
func (c *Client) Delete(ctx context.Context, club string, rowRef string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowNum, err := strconv.ParseInt(rowRef, 10, 64)
	if err != nil || rowNum < 2 {
		// Row 1 is the header.
		return fmt.Errorf("invalid row reference %q", rowRef)
	}

	sheetID, err := c.sheetID(ctx, c.ledgerSheet)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: rowNum - 1,
					EndIndex:   rowNum,
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowNum, c.ledgerSheet, err)
	}

	slog.InfoContext(ctx, "Deleted ledger row from sheet",
		"sheet", c.ledgerSheet, "club", club, "row", rowNum)
	return nil
}

// ListClubs reads the club directory worksheet.
func (c *Client) ListClubs(ctx context.Context) ([]core.Club, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:C", c.clubsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	var out []core.Club
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && isClubsHeader(cols) {
			continue
		}
		club, ok := parseClubRow(cols)
		if !ok {
			continue
		}
		out = append(out, club)
	}
	return out, nil
}

func (c *Client) GetClub(ctx context.Context, name string) (core.Club, error) {
	clubs, err := c.ListClubs(ctx)
	if err != nil {
		return core.Club{}, err
	}
	for _, club := range clubs {
		if club.Name == name {
			return club, nil
		}
	}
	return core.Club{}, ports.ErrClubNotFound
}

// sheetID resolves and caches the numeric sheet ID needed by batchUpdate.
func (c *Client) sheetID(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[name]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			c.mu.Lock()
			c.sheetIDs[name] = sh.Properties.SheetId
			c.mu.Unlock()
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found", name)
}

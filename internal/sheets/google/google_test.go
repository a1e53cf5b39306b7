package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"churchledger/internal/core"
	"churchledger/internal/sheets"
)

// fakeSheets answers the four Sheets endpoints WriteReport uses.
type fakeSheets struct {
	mu      sync.Mutex
	titles  []string
	added   []string
	cleared []string
	updated map[string][][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		var ss gsheet.Spreadsheet
		for _, title := range f.titles {
			ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: title}})
		}
		_ = json.NewEncoder(w).Encode(ss)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_ = json.NewEncoder(w).Encode(gsheet.BatchUpdateSpreadsheetResponse{SpreadsheetId: "sheet-id"})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		rng := strings.TrimSuffix(path[strings.Index(path, "/values/")+len("/values/"):], ":clear")
		f.cleared = append(f.cleared, rng)
		_ = json.NewEncoder(w).Encode(gsheet.ClearValuesResponse{ClearedRange: rng})

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		if r.URL.Query().Get("valueInputOption") != "USER_ENTERED" {
			http.Error(w, "missing valueInputOption", http.StatusBadRequest)
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updated[rng] = vr.Values
		_ = json.NewEncoder(w).Encode(gsheet.UpdateValuesResponse{
			UpdatedRange: rng,
			UpdatedRows:  int64(len(vr.Values)),
		})

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "sheet-id", nil)
}

func reportRows() [][]any {
	return sheets.BalanceRows([]core.ServiceBalance{
		{Date: "2024-05-05", ServiceType: "sunday", TotalGiving: 150, TotalExpenses: 30, Balance: 120},
	})
}

func TestWriteReport_CreatesMissingSheet(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Sheet1"}, updated: map[string][][]any{}}
	c := newTestClient(t, fake)

	ref, err := c.WriteReport(context.Background(), "2024-05", reportRows())
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	if len(fake.added) != 1 || fake.added[0] != "Report 2024-05" {
		t.Errorf("added sheets = %v", fake.added)
	}
	if len(fake.cleared) != 1 || fake.cleared[0] != "'Report 2024-05'" {
		t.Errorf("cleared = %v", fake.cleared)
	}
	if ref != "'Report 2024-05'!A1" {
		t.Errorf("ref = %q", ref)
	}
	values := fake.updated["'Report 2024-05'!A1"]
	if len(values) != 3 || values[1][1] != "sunday" {
		t.Errorf("written values = %v", values)
	}
}

func TestWriteReport_ReusesExistingSheet(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Report 2024-05"}, updated: map[string][][]any{}}
	c := newTestClient(t, fake)

	if _, err := c.WriteReport(context.Background(), "2024-05", reportRows()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if len(fake.added) != 0 {
		t.Errorf("existing sheet re-added: %v", fake.added)
	}
}

func TestWriteReport_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "sheet-id"}
	if _, err := c.WriteReport(context.Background(), "2024-05", nil); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx, " ", Credentials{JSON: "{}"}, nil); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("missing id err = %v", err)
	}
	if _, err := New(ctx, "sheet-id", Credentials{}, nil); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("missing creds err = %v", err)
	}
	if _, err := New(ctx, "sheet-id", Credentials{File: filepath.Join(t.TempDir(), "missing.json")}, nil); err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("missing file err = %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := credentialsJSON(Credentials{File: path})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("from file = %q, %v", got, err)
	}
	got, err = credentialsJSON(Credentials{JSON: `{"inline":true}`, File: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Errorf("inline should win, got %q, %v", got, err)
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Pastor's Report"); got != "'Pastor''s Report'" {
		t.Errorf("quoteSheet = %q", got)
	}
}

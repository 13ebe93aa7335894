/* server_test.go
 * Contains unit tests for the HTTP API routes, run against the chi router with httptest
 * Authors: Zachary Bower
 */

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tournament-importer/api/api"
	"tournament-importer/api/external"
	"tournament-importer/api/shared"
	"tournament-importer/api/store"
	"tournament-importer/api/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, *api.API, *api.MockStore) {
	t.Helper()
	apiPtr, mockStore, err := api.NewTestAPI()
	require.NoError(t, err)
	data, err := api.SampleWorkbookBytes()
	require.NoError(t, err)
	apiPtr.Fetcher = api.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		switch {
		case strings.HasPrefix(url, "ftp:"):
			return nil, fmt.Errorf("%w: %q", external.ErrInvalidURL, url)
		case strings.Contains(url, "missing"):
			return nil, &external.StatusError{URL: url, StatusCode: http.StatusNotFound}
		}
		return data, nil
	})
	return NewServer(Config{Addr: ":0", API: apiPtr}).Routes(), apiPtr, mockStore
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func sampleBytes(t *testing.T) []byte {
	t.Helper()
	data, err := api.SampleWorkbookBytes()
	require.NoError(t, err)
	return data
}

// region Server tests

func TestNewServer_DefaultLogger(t *testing.T) {
	s := NewServer(Config{Addr: ":8080"})
	assert.NotNil(t, s.logger)
	assert.Nil(t, s.api)
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	h, _, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/imports", sampleBytes(t))

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tournament_importer_imports_total{organization="TEST",outcome="parsed"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	h, _, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/healthz", nil).Code)
}

// endregion

// region Import tests

func TestImport_Upload(t *testing.T) {
	h, _, mockStore := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/imports?source=tavaszi.xlsx", sampleBytes(t))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[api.ImportResult](t, rec)
	assert.Equal(t, "Tavaszi_Kupa_Budapest__", result.Record.TournamentID)
	assert.False(t, result.Cached)
	require.Len(t, mockStore.Imports, 1)
	assert.Equal(t, "tavaszi.xlsx", mockStore.Imports[0].Source)

	rec = do(t, h, http.MethodPost, "/imports", sampleBytes(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[api.ImportResult](t, rec).Cached)
	assert.Equal(t, "upload", mockStore.Imports[1].Source)
}

func TestImport_SheetFilter(t *testing.T) {
	h, _, mockStore := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/imports?sheetFilter=ws", sampleBytes(t))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decode[api.ImportResult](t, rec).Record.Draws)
	assert.Equal(t, "ws", mockStore.Imports[0].SheetFilter)
}

func TestImport_EmptyBody(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/imports", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty request body", decode[errorResponse](t, rec).Error)
}

func TestImport_NotAWorkbook(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/imports", []byte("a,b,c\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "not an xlsx workbook")
}

func TestImport_Unidentified(t *testing.T) {
	h, _, _ := newTestServer(t)
	wb := api.SampleWorkbook()
	wb.SheetNames = []string{"Sheet1"}
	wb.Sheets = map[string]shared.Sheet{"Sheet1": wb.Sheets["MS"]}
	data, err := workbook.Encode(wb)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/imports", data)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Len(t, body.Diagnostics, 1)
	assert.Equal(t, shared.KindWorkbookUnidentified, body.Diagnostics[0].Kind)
}

func TestImport_StoreError(t *testing.T) {
	h, _, mockStore := newTestServer(t)
	mockStore.SaveRecordError = errors.New("database unavailable")

	rec := do(t, h, http.MethodPost, "/imports", sampleBytes(t))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database unavailable", decode[errorResponse](t, rec).Error)
}

func TestImportURL(t *testing.T) {
	h, _, mockStore := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/imports/url",
		[]byte(`{"url":"https://example.com/tavaszi.xlsx","sheetFilter":"ms"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, mockStore.Imports, 1)
	assert.Equal(t, "https://example.com/tavaszi.xlsx", mockStore.Imports[0].Source)
	assert.Equal(t, "ms", mockStore.Imports[0].SheetFilter)
}

func TestImportURL_Errors(t *testing.T) {
	h, _, _ := newTestServer(t)
	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"invalid json", `{"url":`, http.StatusBadRequest},
		{"missing url", `{}`, http.StatusBadRequest},
		{"invalid url", `{"url":"ftp://example.com/a.xlsx"}`, http.StatusBadRequest},
		{"remote not found", `{"url":"https://example.com/missing.xlsx"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/imports/url", []byte(tt.body))
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}

func TestImportErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, importErrorStatus(fmt.Errorf("fetch: %w", external.ErrTooLarge)))
	assert.Equal(t, http.StatusUnprocessableEntity,
		importErrorStatus(&shared.ParseError{Kind: shared.KindMissingProfile}))
	assert.Equal(t, http.StatusInternalServerError, importErrorStatus(errors.New("boom")))
}

// endregion

// region Record tests

func TestRecords(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	do(t, h, http.MethodPost, "/imports", sampleBytes(t))
	rec = do(t, h, http.MethodGet, "/records", nil)
	summaries := decode[[]store.RecordSummary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Tavaszi Kupa", summaries[0].TournamentName)
	assert.Equal(t, 1, summaries[0].Draws)
}

func TestRecord(t *testing.T) {
	h, _, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/imports", sampleBytes(t))

	rec := do(t, h, http.MethodGet, "/records/Tavaszi_Kupa_Budapest__", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[shared.TournamentRecord](t, rec)
	assert.Equal(t, "Budapest", record.City)
	require.Len(t, record.Draws, 1)
	assert.Len(t, record.Draws[0].MatchUps, 3)

	rec = do(t, h, http.MethodGet, "/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecord_StoreErrors(t *testing.T) {
	h, apiPtr, mockStore := newTestServer(t)
	mockStore.ListRecordsError = errors.New("database unavailable")
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/records", nil).Code)

	apiPtr.Store = nil
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/records/a", nil).Code)
}

func TestImports(t *testing.T) {
	h, _, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/imports/Tavaszi_Kupa_Budapest__", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	do(t, h, http.MethodPost, "/imports", sampleBytes(t))
	do(t, h, http.MethodPost, "/imports", sampleBytes(t))
	rec = do(t, h, http.MethodGet, "/imports/Tavaszi_Kupa_Budapest__", nil)
	logs := decode[[]store.ImportLog](t, rec)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Cached)
	assert.False(t, logs[1].Cached)
}

// endregion

// region Profile tests

func TestProfiles(t *testing.T) {
	h, apiPtr, _ := newTestServer(t)
	require.NoError(t, apiPtr.Registry.LoadYAML([]byte(`
- organization: TP
  mustContainSheetNames: ["Players"]
`)))

	profiles := decode[[]api.ProfileInfo](t, do(t, h, http.MethodGet, "/profiles", nil))
	require.Len(t, profiles, 2)
	assert.True(t, profiles[0].Supported)
	assert.False(t, profiles[1].Supported)

	profiles = decode[[]api.ProfileInfo](t, do(t, h, http.MethodGet, "/profiles?q=tp", nil))
	require.Len(t, profiles, 1)
	assert.Equal(t, "TP", profiles[0].Organization)
}

// endregion

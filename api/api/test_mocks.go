/* test_mocks.go
 * Contains mock structures and interfaces for testing the API package and its consumers
 * Authors: Zachary Bower
 */

package api

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"tournament-importer/api/cache"
	"tournament-importer/api/metrics"
	"tournament-importer/api/profile"
	"tournament-importer/api/shared"
	"tournament-importer/api/store"
	"tournament-importer/api/workbook"
)

// MockStore implements the store Interface in memory
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Records map[string]shared.TournamentRecord
	Imports []store.ImportLog

	// Error injection for testing error paths
	SaveRecordError  error
	GetRecordError   error
	ListRecordsError error
	SaveImportError  error
	ListImportsError error

	DatabaseName string
}

var _ store.Interface = (*MockStore)(nil)

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

type mockClient struct{}

func (mockClient) Disconnect(context.Context) error {
	return nil
}

// NewMockStore creates a new MockStore with no records
func NewMockStore() *MockStore {
	return &MockStore{Records: make(map[string]shared.TournamentRecord), DatabaseName: "test_db"}
}

// SaveRecord mock implementation
func (m *MockStore) SaveRecord(_ context.Context, record shared.TournamentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveRecordError != nil {
		return m.SaveRecordError
	}
	m.Records[record.TournamentID] = record
	return nil
}

// GetRecord mock implementation
func (m *MockStore) GetRecord(_ context.Context, tournamentID string) (shared.TournamentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRecordError != nil {
		return shared.TournamentRecord{}, m.GetRecordError
	}
	record, ok := m.Records[tournamentID]
	if !ok {
		return shared.TournamentRecord{}, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, tournamentID)
	}
	return record, nil
}

// ListRecords mock implementation. Summaries are ordered by tournament id
func (m *MockStore) ListRecords(_ context.Context) ([]store.RecordSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListRecordsError != nil {
		return nil, m.ListRecordsError
	}
	summaries := make([]store.RecordSummary, 0, len(m.Records))
	for _, r := range m.Records {
		summaries = append(summaries, store.Summarize(r))
	}
	slices.SortFunc(summaries, func(a, b store.RecordSummary) int { return cmp.Compare(a.TournamentID, b.TournamentID) })
	return summaries, nil
}

// SaveImport mock implementation
func (m *MockStore) SaveImport(_ context.Context, log store.ImportLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveImportError != nil {
		return m.SaveImportError
	}
	m.Imports = append(m.Imports, log)
	return nil
}

// ListImports mock implementation. The newest import comes first
func (m *MockStore) ListImports(_ context.Context, tournamentID string) ([]store.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListImportsError != nil {
		return nil, m.ListImportsError
	}
	var logs []store.ImportLog
	for i := len(m.Imports) - 1; i >= 0; i-- {
		if m.Imports[i].TournamentID == tournamentID {
			logs = append(logs, m.Imports[i])
		}
	}
	return logs, nil
}

// GetDatabase mock implementation
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// GetClient mock implementation
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return mockClient{}
}

// TestProfilesYAML identifies workbooks with an "MS" sheet and reads a minimal knockout layout
const TestProfilesYAML = `
- organization: TEST
  sheetNamePatterns: ["^MS$"]
  profile:
    providerId: TEST-1
    columnsMap: { position: A, players: C, rounds: F }
    rowDefinitions:
      - { type: header, id: drawHeader, elements: ["#", "Name"], rows: 1, minimumElements: 2 }
      - { type: footer, id: drawFooter, elements: ["Referee"], rows: 1, minimumElements: 1 }
    sheetDefinitions:
      - { type: KNOCKOUT, rowIds: [drawHeader, drawFooter] }
    playerRows: { playerNames: true }
    tournamentInfo:
      - { attribute: tournamentName, searchText: "Tournament", columnOffset: 1 }
      - { attribute: city, searchText: "City", columnOffset: 1 }
`

// TestRegistry returns a registry holding the TEST organization
func TestRegistry() (*profile.Registry, error) {
	r, err := profile.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := r.LoadYAML([]byte(TestProfilesYAML)); err != nil {
		return nil, err
	}
	return r, nil
}

// SampleWorkbook returns a workbook of the TEST organization: one four player knockout draw with every result
func SampleWorkbook() shared.Workbook {
	return shared.Workbook{
		SheetNames: []string{"MS"},
		Sheets: map[string]shared.Sheet{"MS": {
			"A1": "#", "C1": "Name", "F1": "Round 1", "G1": "Final",
			"A2": "1", "C2": "Smith, John", "F2": "Smith, John",
			"A3": "2", "C3": "Jones, Tom", "F3": "6-3 6-4", "G3": "Smith, John",
			"A4": "3", "C4": "Brown, Bob", "F4": "Brown, Bob", "G4": "6-4 6-4",
			"A5": "4", "C5": "Green, Gary", "F5": "7-5 6-2",
			"A9": "Referee",
			"A12": "Tournament", "B12": "Tavaszi Kupa",
			"A13": "City", "B13": "Budapest",
		}},
	}
}

// SampleWorkbookBytes returns SampleWorkbook encoded as xlsx
func SampleWorkbookBytes() ([]byte, error) {
	return workbook.Encode(SampleWorkbook())
}

// NewTestAPI returns an API over a MockStore, an in memory cache and the TEST registry
func NewTestAPI() (*API, *MockStore, error) {
	registry, err := TestRegistry()
	if err != nil {
		return nil, nil, err
	}
	s := NewMockStore()
	return &API{
		Registry: registry,
		Store:    s,
		Cache:    cache.NewMemory(0),
		Metrics:  metrics.New(),
	}, s, nil
}

package sheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/sheets/v4"
)

// MockAPI is an in-memory spreadsheet used to test the writer.
type MockAPI struct {
	UpdateFunc   func(spreadsheetID, rng string, values [][]any) error
	tabs         map[string]map[string]int64
	Values       map[string][][]any // keyed by range
	Cleared      []string
	Requests     []*sheets.Request
	Created      []string
	CreatedTitle string
	nextSheetID  int64
	mu           sync.Mutex
}

// NewMockAPI creates a mock holding the given existing spreadsheets and their tabs.
func NewMockAPI(existing map[string][]string) *MockAPI {
	m := &MockAPI{
		tabs:   make(map[string]map[string]int64),
		Values: make(map[string][][]any),
	}
	for id, tabs := range existing {
		m.tabs[id] = make(map[string]int64)
		m.addTabs(id, tabs)
	}
	return m
}

func (m *MockAPI) addTabs(id string, tabs []string) {
	for _, t := range tabs {
		m.nextSheetID++
		m.tabs[id][t] = m.nextSheetID
	}
}

// Tabs implements spreadsheetAPI.
func (m *MockAPI) Tabs(_ context.Context, spreadsheetID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tabs, ok := m.tabs[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	ids := make(map[string]int64, len(tabs))
	for k, v := range tabs {
		ids[k] = v
	}
	return ids, nil
}

// Create implements spreadsheetAPI.
func (m *MockAPI) Create(_ context.Context, title, _ string, tabs []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("sheet-%d", len(m.tabs)+1)
	m.tabs[id] = make(map[string]int64)
	m.addTabs(id, tabs)
	m.Created = append(m.Created, id)
	m.CreatedTitle = title
	return id, nil
}

// AddTabs implements spreadsheetAPI.
func (m *MockAPI) AddTabs(_ context.Context, spreadsheetID string, tabs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tabs[spreadsheetID]; !ok {
		return fmt.Errorf("spreadsheet %s not found", spreadsheetID)
	}
	m.addTabs(spreadsheetID, tabs)
	return nil
}

// Clear implements spreadsheetAPI.
func (m *MockAPI) Clear(_ context.Context, _ string, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Cleared = append(m.Cleared, rng)
	return nil
}

// Update implements spreadsheetAPI.
func (m *MockAPI) Update(_ context.Context, spreadsheetID, rng string, values [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(spreadsheetID, rng, values); err != nil {
			return err
		}
	}
	m.Values[rng] = values
	return nil
}

// BatchUpdate implements spreadsheetAPI.
func (m *MockAPI) BatchUpdate(_ context.Context, _ string, requests []*sheets.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, requests...)
	return nil
}

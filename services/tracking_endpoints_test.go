package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type mockTrackingStore struct {
	CreateTrackingEntryFunc func(ctx context.Context, entry *models.TrackingEntry) error
	GetTrackingEntriesFunc  func(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error)
	DeleteTrackingEntryFunc func(ctx context.Context, entryID, userID string) error
}

func (m *mockTrackingStore) CreateTrackingEntry(ctx context.Context, entry *models.TrackingEntry) error {
	return m.CreateTrackingEntryFunc(ctx, entry)
}
func (m *mockTrackingStore) GetTrackingEntries(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error) {
	return m.GetTrackingEntriesFunc(ctx, userID, category, since, limit)
}
func (m *mockTrackingStore) DeleteTrackingEntry(ctx context.Context, entryID, userID string) error {
	return m.DeleteTrackingEntryFunc(ctx, entryID, userID)
}

func intPtr(v int) *int { return &v }

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTrackingRequest
		wantErr bool
	}{
		{
			name: "Valid mood",
			req:  CreateTrackingRequest{Category: models.CategoryMood, Value: 7},
		},
		{
			name:    "Mood out of range",
			req:     CreateTrackingRequest{Category: models.CategoryMood, Value: 11},
			wantErr: true,
		},
		{
			name:    "Mood not an integer",
			req:     CreateTrackingRequest{Category: models.CategoryMood, Value: 6.5},
			wantErr: true,
		},
		{
			name: "Valid sleep",
			req:  CreateTrackingRequest{Category: models.CategorySleep, Value: 7.5, Quality: intPtr(8)},
		},
		{
			name:    "Sleep without quality",
			req:     CreateTrackingRequest{Category: models.CategorySleep, Value: 7.5},
			wantErr: true,
		},
		{
			name:    "Sleep over 24 hours",
			req:     CreateTrackingRequest{Category: models.CategorySleep, Value: 25, Quality: intPtr(5)},
			wantErr: true,
		},
		{
			name: "Valid meditation",
			req:  CreateTrackingRequest{Category: models.CategoryMeditation, Value: 20},
		},
		{
			name:    "Meditation zero minutes",
			req:     CreateTrackingRequest{Category: models.CategoryMeditation, Value: 0},
			wantErr: true,
		},
		{
			name:    "Unknown category",
			req:     CreateTrackingRequest{Category: "steps", Value: 5000},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntry(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func requestWithUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "user", user))
}

func TestCreateEntryHandler(t *testing.T) {
	var created *models.TrackingEntry
	store := &mockTrackingStore{
		CreateTrackingEntryFunc: func(ctx context.Context, entry *models.TrackingEntry) error {
			created = entry
			return nil
		},
	}
	endpoints := NewTrackingEndpoints(store, nil)

	body := `{"category":"mood","value":8,"notes":"good day"}`
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.CreateEntryHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if created == nil {
		t.Fatal("expected entry to be stored")
	}
	if created.UserID != "user-1" {
		t.Errorf("entry owner = %q; want user-1", created.UserID)
	}
	if created.Category != models.CategoryMood || created.Value != 8 {
		t.Errorf("entry = %+v; want mood with value 8", created)
	}
	if created.RecordedAt.IsZero() {
		t.Error("recorded_at should default to now")
	}
}

func TestCreateEntryHandler_RefreshesOverview(t *testing.T) {
	statsCalls := 0
	stats := NewStatsService(newOverviewStore(&statsCalls))
	store := &mockTrackingStore{
		CreateTrackingEntryFunc: func(ctx context.Context, entry *models.TrackingEntry) error {
			return nil
		},
	}
	endpoints := NewTrackingEndpoints(store, stats)

	// Prime the overview cache
	if _, err := stats.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	primedCalls := statsCalls

	body := `{"category":"mood","value":8}`
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.CreateEntryHandler(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusCreated)
	}

	if _, err := stats.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	if statsCalls == primedCalls {
		t.Error("overview still served from cache after a new entry was written")
	}
}

func TestCreateEntryHandler_InvalidValue(t *testing.T) {
	endpoints := NewTrackingEndpoints(&mockTrackingStore{}, nil)

	body := `{"category":"mood","value":42}`
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.CreateEntryHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateEntryHandler_ExplicitRecordedAt(t *testing.T) {
	var created *models.TrackingEntry
	store := &mockTrackingStore{
		CreateTrackingEntryFunc: func(ctx context.Context, entry *models.TrackingEntry) error {
			created = entry
			return nil
		},
	}
	endpoints := NewTrackingEndpoints(store, nil)

	body := `{"category":"sleep","value":7.5,"quality":8,"recorded_at":"2026-08-20T22:00:00Z"}`
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.CreateEntryHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	want := time.Date(2026, 8, 20, 22, 0, 0, 0, time.UTC)
	if !created.RecordedAt.Equal(want) {
		t.Errorf("recorded_at = %v; want %v", created.RecordedAt, want)
	}
}

func TestGetEntriesHandler_InvalidCategory(t *testing.T) {
	endpoints := NewTrackingEndpoints(&mockTrackingStore{}, nil)

	req := httptest.NewRequest("GET", "/tracking?category=steps", nil)
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.GetEntriesHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetEntriesHandler_ScopedToUser(t *testing.T) {
	var gotUserID string
	store := &mockTrackingStore{
		GetTrackingEntriesFunc: func(ctx context.Context, userID, category string, since time.Time, limit int) ([]models.TrackingEntry, error) {
			gotUserID = userID
			return []models.TrackingEntry{{ID: "e1", UserID: userID, Category: models.CategoryMood, Value: 6}}, nil
		},
	}
	endpoints := NewTrackingEndpoints(store, nil)

	req := httptest.NewRequest("GET", "/tracking?category=mood&days=7", nil)
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	endpoints.GetEntriesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != "user-1" {
		t.Errorf("query user = %q; want user-1", gotUserID)
	}

	var resp TrackingEntriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d; want 1", resp.Count)
	}
}

func TestDeleteEntryHandler_NotFound(t *testing.T) {
	store := &mockTrackingStore{
		DeleteTrackingEntryFunc: func(ctx context.Context, entryID, userID string) error {
			return gorm.ErrRecordNotFound
		},
	}
	endpoints := NewTrackingEndpoints(store, nil)

	r := chi.NewRouter()
	r.Delete("/tracking/{id}", endpoints.DeleteEntryHandler)

	req := httptest.NewRequest("DELETE", "/tracking/missing", nil)
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteEntryHandler_Success(t *testing.T) {
	store := &mockTrackingStore{
		DeleteTrackingEntryFunc: func(ctx context.Context, entryID, userID string) error {
			if entryID != "e1" || userID != "user-1" {
				t.Errorf("delete scoped to entry=%q user=%q; want e1/user-1", entryID, userID)
			}
			return nil
		},
	}
	endpoints := NewTrackingEndpoints(store, nil)

	r := chi.NewRouter()
	r.Delete("/tracking/{id}", endpoints.DeleteEntryHandler)

	req := httptest.NewRequest("DELETE", "/tracking/e1", nil)
	req = requestWithUser(req, &models.User{ID: "user-1"})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusNoContent)
	}
}

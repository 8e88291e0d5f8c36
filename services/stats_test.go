package services

import (
	"context"
	"testing"
	"time"

	"github.com/Amaan112005/mindmate/models"
	"github.com/Amaan112005/mindmate/repository"
)

type mockStatsStore struct {
	GetCategoryAggregateFunc func(ctx context.Context, userID, category string) (*repository.CategoryAggregate, error)
	GetDailyAveragesFunc     func(ctx context.Context, userID, category string, since time.Time) ([]repository.DailyPoint, error)
	GetAverageQualityFunc    func(ctx context.Context, userID string) (float64, error)
	GetJournalStatsFunc      func(ctx context.Context, userID string) (*models.JournalStats, error)
}

func (m *mockStatsStore) GetCategoryAggregate(ctx context.Context, userID, category string) (*repository.CategoryAggregate, error) {
	return m.GetCategoryAggregateFunc(ctx, userID, category)
}
func (m *mockStatsStore) GetDailyAverages(ctx context.Context, userID, category string, since time.Time) ([]repository.DailyPoint, error) {
	return m.GetDailyAveragesFunc(ctx, userID, category, since)
}
func (m *mockStatsStore) GetAverageQuality(ctx context.Context, userID string) (float64, error) {
	return m.GetAverageQualityFunc(ctx, userID)
}
func (m *mockStatsStore) GetJournalStats(ctx context.Context, userID string) (*models.JournalStats, error) {
	return m.GetJournalStatsFunc(ctx, userID)
}

func newOverviewStore(calls *int) *mockStatsStore {
	return &mockStatsStore{
		GetCategoryAggregateFunc: func(ctx context.Context, userID, category string) (*repository.CategoryAggregate, error) {
			*calls++
			switch category {
			case models.CategoryMood:
				return &repository.CategoryAggregate{Average: 6.0, Count: 10, RecentAverage: 7.5}, nil
			case models.CategorySleep:
				return &repository.CategoryAggregate{Average: 7.0, Count: 8, RecentAverage: 6.5}, nil
			default:
				return &repository.CategoryAggregate{Count: 4, Total: 60}, nil
			}
		},
		GetAverageQualityFunc: func(ctx context.Context, userID string) (float64, error) {
			return 7.2, nil
		},
		GetJournalStatsFunc: func(ctx context.Context, userID string) (*models.JournalStats, error) {
			return &models.JournalStats{TotalEntries: 5, AvgMood: 0.4}, nil
		},
	}
}

func TestGetOverview(t *testing.T) {
	calls := 0
	svc := NewStatsService(newOverviewStore(&calls))

	overview, err := svc.GetOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}

	if overview.Mood.Average != 6.0 || overview.Mood.Count != 10 {
		t.Errorf("mood aggregate = %+v; want average 6.0 count 10", overview.Mood)
	}
	if overview.Mood.Change != 1.5 {
		t.Errorf("mood change = %v; want 1.5", overview.Mood.Change)
	}
	if overview.Sleep.Change != -0.5 {
		t.Errorf("sleep change = %v; want -0.5", overview.Sleep.Change)
	}
	if overview.Sleep.Quality != 7.2 {
		t.Errorf("sleep quality = %v; want 7.2", overview.Sleep.Quality)
	}
	if overview.Meditation.Sessions != 4 || overview.Meditation.TotalMinutes != 60 {
		t.Errorf("meditation aggregate = %+v; want 4 sessions, 60 minutes", overview.Meditation)
	}
	if overview.Journal == nil || overview.Journal.TotalEntries != 5 {
		t.Errorf("journal stats = %+v; want 5 entries", overview.Journal)
	}
}

func TestGetOverview_Cached(t *testing.T) {
	calls := 0
	svc := NewStatsService(newOverviewStore(&calls))

	if _, err := svc.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	firstCalls := calls

	if _, err := svc.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	if calls != firstCalls {
		t.Errorf("second call hit the store (%d -> %d calls); expected cache", firstCalls, calls)
	}
}

func TestGetOverview_InvalidateForcesRebuild(t *testing.T) {
	calls := 0
	svc := NewStatsService(newOverviewStore(&calls))

	if _, err := svc.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	firstCalls := calls

	svc.Invalidate("user-1")
	if _, err := svc.GetOverview(context.Background(), "user-1"); err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	if calls == firstCalls {
		t.Error("expected rebuild after invalidation")
	}
}

func TestGetOverview_NoEntries(t *testing.T) {
	store := &mockStatsStore{
		GetCategoryAggregateFunc: func(ctx context.Context, userID, category string) (*repository.CategoryAggregate, error) {
			return &repository.CategoryAggregate{}, nil
		},
		GetAverageQualityFunc: func(ctx context.Context, userID string) (float64, error) {
			return 0, nil
		},
		GetJournalStatsFunc: func(ctx context.Context, userID string) (*models.JournalStats, error) {
			return &models.JournalStats{}, nil
		},
	}
	svc := NewStatsService(store)

	overview, err := svc.GetOverview(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOverview returned error: %v", err)
	}
	if overview.Mood.Change != 0 || overview.Sleep.Change != 0 {
		t.Error("change should be zero when nothing has been tracked")
	}
}

func TestGetSeries_FillsGaps(t *testing.T) {
	avg := 5.0
	store := &mockStatsStore{
		GetDailyAveragesFunc: func(ctx context.Context, userID, category string, since time.Time) ([]repository.DailyPoint, error) {
			return []repository.DailyPoint{
				{Date: time.Now().Truncate(24 * time.Hour).Format("2006-01-02"), Average: &avg, Count: 1},
			}, nil
		},
	}
	svc := NewStatsService(store)

	series, err := svc.GetSeries(context.Background(), "user-1", models.CategoryMood, 7)
	if err != nil {
		t.Fatalf("GetSeries returned error: %v", err)
	}
	if len(series) != 8 {
		t.Fatalf("series length = %d; want 8 (7 days back through today)", len(series))
	}

	tracked := 0
	for _, p := range series {
		if p.Average != nil {
			tracked++
		}
	}
	if tracked != 1 {
		t.Errorf("tracked days = %d; want 1", tracked)
	}
}

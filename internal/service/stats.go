package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"medregistry/internal/cache"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
)

// DashboardStats is the usage snapshot shown on the dashboard. Change
// figures compare against the state as of the end of yesterday.
type DashboardStats struct {
	TotalFiles         int    `json:"totalFiles"`
	TotalFilesChange   string `json:"totalFilesChange"`
	StorageUsed        int64  `json:"storageUsed"`
	StorageUsedChange  string `json:"storageUsedChange"`
	UploadsToday       int    `json:"uploadsToday"`
	UploadsTodayChange string `json:"uploadsTodayChange"`
	ActiveUsers        int    `json:"activeUsers"`
	ActiveUsersChange  string `json:"activeUsersChange"`
}

// TrendPoint is one calendar day of the trend series.
type TrendPoint struct {
	Name    string `json:"name"`
	Uploads int    `json:"uploads"`
	Size    int64  `json:"size"`
}

// StatsService computes usage telemetry under the same visibility
// rules as document listing.
type StatsService interface {
	// Dashboard returns the scoped usage snapshot with day-over-day
	// change figures.
	Dashboard(ctx context.Context, requesterID string) (*DashboardStats, error)

	// Trends returns one point per calendar day for a 7- or 30-day
	// window ending today inclusive, oldest first.
	Trends(ctx context.Context, requesterID string, period int) ([]TrendPoint, error)
}

type statsService struct {
	docs  repository.DocumentRepository
	users repository.UserRepository
	cache *cache.Cache // optional; nil disables caching
	now   func() time.Time
}

// NewStatsService constructs a StatsService. c may be nil.
func NewStatsService(docs repository.DocumentRepository, users repository.UserRepository, c *cache.Cache) StatsService {
	return &statsService{docs: docs, users: users, cache: c, now: time.Now}
}

// percentChange formats the change from prev to curr as a rounded
// whole-percent string. A zero baseline reads "+100%" when anything
// appeared and "0%" when nothing did; every other value carries an
// explicit sign, "+" for zero-or-positive.
func percentChange(curr, prev int64) string {
	if prev == 0 {
		if curr > 0 {
			return "+100%"
		}
		return "0%"
	}
	pct := int(math.Round(float64(curr-prev) / float64(prev) * 100))
	return fmt.Sprintf("%+d%%", pct)
}

// dayStart truncates t to the start of its UTC calendar day.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *statsService) Dashboard(ctx context.Context, requesterID string) (*DashboardStats, error) {
	scope, err := policy.Resolve(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}

	key := "dashboard:" + scope.CacheKey()
	var cached DashboardStats
	if ok, _ := s.cache.GetJSON(ctx, key, &cached); ok {
		return &cached, nil
	}

	today := dayStart(s.now())
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	totalFiles, storageUsed, err := s.docs.CountAndSize(ctx, scope, nil)
	if err != nil {
		return nil, err
	}
	// Baseline: the same snapshot over documents dated on or before
	// yesterday, i.e. uploaded before the start of today.
	prevFiles, prevStorage, err := s.docs.CountAndSize(ctx, scope, &today)
	if err != nil {
		return nil, err
	}
	uploadsToday, err := s.docs.CountBetween(ctx, scope, today, tomorrow)
	if err != nil {
		return nil, err
	}
	uploadsYesterday, err := s.docs.CountBetween(ctx, scope, yesterday, today)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.users.CountActive(ctx, scope)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalFiles:         totalFiles,
		TotalFilesChange:   percentChange(int64(totalFiles), int64(prevFiles)),
		StorageUsed:        storageUsed,
		StorageUsedChange:  percentChange(storageUsed, prevStorage),
		UploadsToday:       uploadsToday,
		UploadsTodayChange: percentChange(int64(uploadsToday), int64(uploadsYesterday)),
		ActiveUsers:        activeUsers,
		// Users carry no history; the change is computed against the
		// same snapshot.
		ActiveUsersChange: percentChange(int64(activeUsers), int64(activeUsers)),
	}

	// Best effort; a failed cache write never fails the request.
	_ = s.cache.SetJSON(ctx, key, stats)

	return stats, nil
}

func (s *statsService) Trends(ctx context.Context, requesterID string, period int) ([]TrendPoint, error) {
	if period != 7 && period != 30 {
		return nil, ErrInvalidPeriod
	}

	scope, err := policy.Resolve(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}

	today := dayStart(s.now())
	from := today.AddDate(0, 0, -(period - 1))
	to := today.AddDate(0, 0, 1)

	rows, err := s.docs.DailyUploads(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]repository.DayStat, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format("2006-01-02")] = r
	}

	layout := "Mon"
	if period == 30 {
		layout = "Jan 2"
	}

	points := make([]TrendPoint, 0, period)
	for i := 0; i < period; i++ {
		day := from.AddDate(0, 0, i)
		stat := byDay[day.Format("2006-01-02")]
		points = append(points, TrendPoint{
			Name:    day.Format(layout),
			Uploads: stat.Count,
			Size:    stat.Bytes,
		})
	}
	return points, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medregistry/internal/model"
	"medregistry/internal/policy"
	"medregistry/internal/repository"
	repoMocks "medregistry/internal/repository/mocks"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name string
		curr int64
		prev int64
		want string
	}{
		{name: "nothing over nothing", curr: 0, prev: 0, want: "0%"},
		{name: "growth from zero baseline", curr: 5, prev: 0, want: "+100%"},
		{name: "decrease", curr: 80, prev: 100, want: "-20%"},
		{name: "increase", curr: 120, prev: 100, want: "+20%"},
		{name: "no change", curr: 100, prev: 100, want: "+0%"},
		{name: "rounded up", curr: 105, prev: 100, want: "+5%"},
		{name: "fractional rounds", curr: 2, prev: 3, want: "-33%"},
		{name: "everything gone", curr: 0, prev: 10, want: "-100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentChange(tt.curr, tt.prev))
		})
	}
}

// fixedNow pins statistics math to a known instant mid-day UTC.
var fixedNow = time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

func newStatsForTest(docs *repoMocks.MockDocumentRepository, users *repoMocks.MockUserRepository) *statsService {
	return &statsService{
		docs:  docs,
		users: users,
		now:   func() time.Time { return fixedNow },
	}
}

func TestStatsService_Dashboard(t *testing.T) {
	ctx := context.Background()

	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	adminScope := policy.Scope{Kind: policy.Admin, UserID: "admin-1"}

	mDocs := new(repoMocks.MockDocumentRepository)
	mUsers := new(repoMocks.MockUserRepository)

	mUsers.On("FindByID", ctx, "admin-1").
		Return(&model.User{ID: "admin-1", Role: model.RoleAdmin}, nil)

	mDocs.On("CountAndSize", ctx, adminScope, (*time.Time)(nil)).
		Return(120, int64(5000), nil)
	mDocs.On("CountAndSize", ctx, adminScope, &today).
		Return(100, int64(4000), nil)
	mDocs.On("CountBetween", ctx, adminScope, today, tomorrow).
		Return(20, nil)
	mDocs.On("CountBetween", ctx, adminScope, yesterday, today).
		Return(10, nil)
	mUsers.On("CountActive", ctx, adminScope).Return(7, nil)

	svc := newStatsForTest(mDocs, mUsers)
	stats, err := svc.Dashboard(ctx, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalFiles)
	assert.Equal(t, "+20%", stats.TotalFilesChange)
	assert.Equal(t, int64(5000), stats.StorageUsed)
	assert.Equal(t, "+25%", stats.StorageUsedChange)
	assert.Equal(t, 20, stats.UploadsToday)
	assert.Equal(t, "+100%", stats.UploadsTodayChange)
	assert.Equal(t, 7, stats.ActiveUsers)
	assert.Equal(t, "+0%", stats.ActiveUsersChange)
	mDocs.AssertExpectations(t)
	mUsers.AssertExpectations(t)
}

func TestStatsService_Dashboard_AnonymousScope(t *testing.T) {
	ctx := context.Background()
	anon := policy.Scope{Kind: policy.Anonymous}

	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	mDocs := new(repoMocks.MockDocumentRepository)
	mUsers := new(repoMocks.MockUserRepository)

	mDocs.On("CountAndSize", ctx, anon, (*time.Time)(nil)).Return(0, int64(0), nil)
	mDocs.On("CountAndSize", ctx, anon, &today).Return(0, int64(0), nil)
	mDocs.On("CountBetween", ctx, anon, today, today.AddDate(0, 0, 1)).Return(0, nil)
	mDocs.On("CountBetween", ctx, anon, today.AddDate(0, 0, -1), today).Return(0, nil)
	mUsers.On("CountActive", ctx, anon).Return(3, nil)

	svc := newStatsForTest(mDocs, mUsers)
	stats, err := svc.Dashboard(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
	assert.Equal(t, "0%", stats.TotalFilesChange)
	assert.Equal(t, "0%", stats.UploadsTodayChange)
	assert.Equal(t, 3, stats.ActiveUsers)
}

func TestStatsService_Trends(t *testing.T) {
	ctx := context.Background()
	anon := policy.Scope{Kind: policy.Anonymous}

	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	t.Run("seven day window zero-fills missing days", func(t *testing.T) {
		from := today.AddDate(0, 0, -6)
		to := today.AddDate(0, 0, 1)

		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		mDocs.On("DailyUploads", ctx, anon, from, to).Return([]repository.DayStat{
			{Day: today.AddDate(0, 0, -2), Count: 4, Bytes: 400},
			{Day: today, Count: 1, Bytes: 50},
		}, nil)

		svc := newStatsForTest(mDocs, mUsers)
		points, err := svc.Trends(ctx, "", 7)

		require.NoError(t, err)
		require.Len(t, points, 7)

		// Mar 9 2025 is a Sunday; oldest point comes first.
		assert.Equal(t, "Sun", points[0].Name)
		assert.Equal(t, 0, points[0].Uploads)
		assert.Equal(t, "Thu", points[4].Name)
		assert.Equal(t, 4, points[4].Uploads)
		assert.Equal(t, int64(400), points[4].Size)
		assert.Equal(t, "Sat", points[6].Name)
		assert.Equal(t, 1, points[6].Uploads)
		mDocs.AssertExpectations(t)
	})

	t.Run("thirty day window uses date labels", func(t *testing.T) {
		from := today.AddDate(0, 0, -29)
		to := today.AddDate(0, 0, 1)

		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		mDocs.On("DailyUploads", ctx, anon, from, to).Return([]repository.DayStat{}, nil)

		svc := newStatsForTest(mDocs, mUsers)
		points, err := svc.Trends(ctx, "", 30)

		require.NoError(t, err)
		require.Len(t, points, 30)
		assert.Equal(t, "Feb 14", points[0].Name)
		assert.Equal(t, "Mar 15", points[29].Name)
		for _, p := range points {
			assert.Zero(t, p.Uploads)
			assert.Zero(t, p.Size)
		}
	})

	t.Run("unsupported period is rejected", func(t *testing.T) {
		svc := newStatsForTest(new(repoMocks.MockDocumentRepository), new(repoMocks.MockUserRepository))
		for _, period := range []int{0, 1, 14, 31, -7} {
			_, err := svc.Trends(ctx, "", period)
			assert.ErrorIs(t, err, ErrInvalidPeriod)
		}
	})
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryService_GetSummary(t *testing.T) {
	env := newTestEnv(t)
	defer env.Cleanup(t)
	ctx := context.Background()

	admin := env.db.CreateTestUser(t, models.UserLevelAdmin)
	clerk := env.db.CreateTestUser(t, models.UserLevelLevel2)
	env.db.CreateTestUser(t, models.UserLevelLevel3)
	signup(t, env, "pending", models.UserLevelAdmin)

	deed := env.createDocument(t, admin, "Deed")
	env.createDocument(t, clerk, "Lease")
	env.createSubDocument(t, clerk, deed, "SUB-001")

	now := time.Now().UTC()
	require.NoError(t, env.repos.UserRepo.UpdateLastLogin(ctx, clerk.ID, now.Add(-5*time.Minute)))

	summary, err := env.summary.GetSummary(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalUsers)
	assert.Equal(t, int64(2), summary.Admins)
	assert.Equal(t, int64(1), summary.Level2)
	assert.Equal(t, int64(1), summary.Level3)
	assert.Equal(t, int64(0), summary.Level1)
	assert.Equal(t, int64(1), summary.PendingAdmins)
	assert.Equal(t, int64(2), summary.TotalMasterDocuments)
	assert.Equal(t, int64(1), summary.TotalSubDocuments)
	assert.Equal(t, int64(3), summary.TotalDocuments)
	assert.Equal(t, int64(1), summary.ActiveSessions)
	assert.Len(t, summary.RecentDocuments, 2)
}

func TestSummaryService_Caching(t *testing.T) {
	env := newTestEnv(t)
	defer env.Cleanup(t)
	ctx := context.Background()

	admin := env.db.CreateTestUser(t, models.UserLevelAdmin)
	env.createDocument(t, admin, "Deed")

	first, err := env.summary.GetSummary(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalMasterDocuments)

	exists, err := env.cache.Exists(ctx, services.SummaryCacheKey)
	require.NoError(t, err)
	assert.True(t, exists)

	env.createDocument(t, admin, "Lease")

	cached, err := env.summary.GetSummary(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.TotalMasterDocuments, "served from cache")

	env.summary.Invalidate(ctx)

	fresh, err := env.summary.GetSummary(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalMasterDocuments)
}

package postgresql

import (
	"context"
	"sync"
	"testing"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocument(creator *models.User, title string) *models.Document {
	return &models.Document{
		Title:     title,
		Location:  "Shelf 4",
		CreatedBy: creator.ID,
		FilePath:  "uploads/" + uuid.New().String() + ".pdf",
	}
}

func TestDocumentRepository_CreateWithNextNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel2)

	first := newDocument(user, "First")
	require.NoError(t, repo.CreateWithNextNumber(ctx, first))
	assert.Equal(t, "MD-000001", first.DocumentNo)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, models.DocStatusActive, first.Status)

	second := newDocument(user, "Second")
	require.NoError(t, repo.CreateWithNextNumber(ctx, second))
	assert.Equal(t, "MD-000002", second.DocumentNo)
}

func TestDocumentRepository_CreateWithNextNumber_Concurrent(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel1)

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := newDocument(user, "Concurrent")
			if err := repo.CreateWithNextNumber(ctx, doc); err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			numbers <- doc.DocumentNo
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["MD-000001"])
	assert.True(t, seen["MD-000020"])
}

func TestDocumentRepository_CreateWithNextNumber_SeededCounter(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	counters := NewCounterRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelAdmin)

	_, err := counters.EnsureAtLeast(ctx, models.CounterMasterDocument, 41)
	require.NoError(t, err)

	doc := newDocument(user, "After seed")
	require.NoError(t, repo.CreateWithNextNumber(ctx, doc))
	assert.Equal(t, "MD-000042", doc.DocumentNo)
}

func TestDocumentRepository_CreateWithNextNumber_CollisionWithLegacyRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelAdmin)

	// A row the counter does not know about
	db.CreateTestDocument(t, user, "MD-000001")

	doc := newDocument(user, "Collides")
	err := repo.CreateWithNextNumber(ctx, doc)
	require.ErrorIs(t, err, repositories.ErrDuplicateKey)
	assert.Empty(t, doc.DocumentNo)

	// The failed transaction rolled the counter back too
	current, err := NewCounterRepository(db.DB).Current(ctx, models.CounterMasterDocument)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)
}

func TestDocumentRepository_GetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel1)
	doc := db.CreateTestDocument(t, user, "MD-000007")
	db.CreateTestSubDocument(t, doc, "SUB-002")
	db.CreateTestSubDocument(t, doc, "SUB-001")

	found, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "MD-000007", found.DocumentNo)
	require.NotNil(t, found.Creator)
	assert.Equal(t, user.Username, found.Creator.Username)
	require.Len(t, found.SubDocuments, 2)
	assert.Equal(t, "SUB-001", found.SubDocuments[0].SubDocumentNo)
}

func TestDocumentRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDocumentRepository_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel1)
	doc := db.CreateTestDocument(t, user, "MD-000003")

	doc.Title = "Renamed"
	doc.Status = models.DocStatusArchived
	doc.DocumentNo = "MD-999999"
	doc.FilePath = "elsewhere.pdf"
	require.NoError(t, repo.Update(ctx, doc))

	found, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	assert.Equal(t, models.DocStatusArchived, found.Status)
	assert.Equal(t, "MD-000003", found.DocumentNo, "number must stay immutable")
	assert.NotEqual(t, "elsewhere.pdf", found.FilePath)
}

func TestDocumentRepository_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel3)

	for _, no := range []string{"MD-000001", "MD-000002", "MD-000003"} {
		db.CreateTestDocument(t, user, no)
	}
	archived := db.CreateTestDocument(t, user, "MD-000004")
	archived.Status = models.DocStatusArchived
	require.NoError(t, repo.Update(ctx, archived))

	docs, total, err := repo.List(ctx, repositories.DocumentFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 2, SortBy: "document_no"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, docs, 2)
	assert.Equal(t, "MD-000001", docs[0].DocumentNo)

	docs, total, err = repo.List(ctx, repositories.DocumentFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10},
		Status:     []models.DocStatus{models.DocStatusArchived},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "MD-000004", docs[0].DocumentNo)

	// Unknown sort columns fall back to the default order
	_, _, err = repo.List(ctx, repositories.DocumentFilters{
		ListParams: repositories.ListParams{Page: 1, PageSize: 10, SortBy: "title; DROP TABLE documents"},
	})
	assert.NoError(t, err)
}

func TestDocumentRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelLevel3)

	doc := db.CreateTestDocument(t, user, "MD-000010")
	doc.Title = "Harbour Survey 1962"
	require.NoError(t, repo.Update(ctx, doc))
	db.CreateTestDocument(t, user, "MD-000011")

	results, err := repo.Search(ctx, "harbour", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, doc.ID, results[0].ID)

	results, err = repo.Search(ctx, "md-00001", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDocumentRepository_ListDocumentNumbers_IncludesSoftDeleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelAdmin)

	db.CreateTestDocument(t, user, "MD-000001")
	gone := db.CreateTestDocument(t, user, "MD-000002")
	require.NoError(t, repo.Delete(ctx, gone.ID, models.SoftDelete))

	numbers, err := repo.ListDocumentNumbers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MD-000001", "MD-000002"}, numbers)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDocumentRepository_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer db.Cleanup(t)

	repo := NewDocumentRepository(db.DB)
	ctx := context.Background()
	user := db.CreateTestUser(t, models.UserLevelAdmin)

	t.Run("soft delete hides the row", func(t *testing.T) {
		doc := db.CreateTestDocument(t, user, "MD-000001")
		require.NoError(t, repo.Delete(ctx, doc.ID, models.SoftDelete))

		_, err := repo.GetByID(ctx, doc.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		found, err := repo.GetByIDUnscoped(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, found.DeletedAt.Valid)

		// Repeating a soft delete is a no-op
		assert.NoError(t, repo.Delete(ctx, doc.ID, models.SoftDelete))
	})

	t.Run("hard delete removes the row", func(t *testing.T) {
		doc := db.CreateTestDocument(t, user, "MD-000002")
		require.NoError(t, repo.Delete(ctx, doc.ID, models.HardDelete))

		_, err := repo.GetByIDUnscoped(ctx, doc.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("refuses while sub-documents remain", func(t *testing.T) {
		doc := db.CreateTestDocument(t, user, "MD-000003")
		db.CreateTestSubDocument(t, doc, "SUB-001")

		err := repo.Delete(ctx, doc.ID, models.SoftDelete)
		assert.ErrorIs(t, err, repositories.ErrHasDependents)

		_, err = repo.GetByID(ctx, doc.ID)
		assert.NoError(t, err)
	})

	t.Run("missing document", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New(), models.SoftDelete)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

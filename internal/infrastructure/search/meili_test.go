package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordForAndBack(t *testing.T) {
	document := &models.Document{
		ID:          uuid.New(),
		DocumentNo:  "MD-000012",
		Title:       "Land Title",
		Location:    "Vault 2",
		Description: "Deed of sale",
		Status:      models.DocStatusArchived,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	record := recordFor(document)
	assert.Equal(t, document.ID.String(), record.ID)
	assert.Equal(t, "archived", record.Status)

	// Round trip through the wire shape the server returns
	data, err := json.Marshal(record)
	require.NoError(t, err)
	var hit meili.Hit
	require.NoError(t, json.Unmarshal(data, &hit))

	result, ok := hitToResult(hit)
	require.True(t, ok)
	assert.Equal(t, document.ID, result.ID)
	assert.Equal(t, "MD-000012", result.DocumentNo)
	assert.Equal(t, "Land Title", result.Title)
	assert.Equal(t, "Vault 2", result.Location)
	assert.Equal(t, models.DocStatusArchived, result.Status)
}

func TestHitToResult_SkipsBadID(t *testing.T) {
	hit := meili.Hit{"id": json.RawMessage(`"not-a-uuid"`)}
	_, ok := hitToResult(hit)
	assert.False(t, ok)
}

func TestSearch_UnhealthyFailsFast(t *testing.T) {
	m := &Meili{done: make(chan struct{})}
	_, err := m.Search(context.Background(), "deed", 5)
	assert.Error(t, err)
	assert.False(t, m.Healthy())
}

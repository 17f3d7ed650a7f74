package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/google/uuid"
	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxDocuments   = "masterdocs_documents"
	healthInterval = 10 * time.Second
)

// DocumentRecord is what gets stored in the index for each master document
type DocumentRecord struct {
	ID          string `json:"id"`
	DocumentNo  string `json:"documentNo"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

// Meili implements services.SearchIndexer via Meilisearch
type Meili struct {
	client  meili.ServiceManager
	logger  *logger.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the index. An
// unreachable server is not an error; Healthy reports false until it recovers.
func NewMeili(url, apiKey string, log *logger.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		logger: log,
		done:   make(chan struct{}),
	}

	// Initial health check
	if _, err := client.Health(); err != nil {
		log.Warn("Meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxDocuments,
		PrimaryKey: "id",
	}); err != nil {
		m.logger.Debug("Create search index (may already exist)", "index", idxDocuments, "error", err)
	}

	index := m.client.Index(idxDocuments)
	filterable := []interface{}{"status"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.logger.Warn("Failed to update filterable attributes", "index", idxDocuments, "error", err)
	}
	searchable := []string{"documentNo", "title", "location", "description"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.logger.Warn("Failed to update searchable attributes", "index", idxDocuments, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("Meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexDocument adds or updates a document in the search index
func (m *Meili) IndexDocument(ctx context.Context, document *models.Document) error {
	_, err := m.client.Index(idxDocuments).AddDocuments([]DocumentRecord{recordFor(document)}, nil)
	return err
}

// IndexDocuments bulk-indexes documents
func (m *Meili) IndexDocuments(ctx context.Context, documents []models.Document) error {
	if len(documents) == 0 {
		return nil
	}
	records := make([]DocumentRecord, 0, len(documents))
	for i := range documents {
		records = append(records, recordFor(&documents[i]))
	}
	_, err := m.client.Index(idxDocuments).AddDocuments(records, nil)
	return err
}

// DeleteDocument removes a document from the search index
func (m *Meili) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	_, err := m.client.Index(idxDocuments).DeleteDocument(id.String(), nil)
	return err
}

// Search runs a full-text query over master documents
func (m *Meili) Search(ctx context.Context, query string, limit int) ([]services.SearchResult, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{{
			IndexUID: idxDocuments,
			Query:    query,
			Limit:    int64(limit),
		}},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	results := make([]services.SearchResult, 0)
	for _, sr := range resp.Results {
		for _, hit := range sr.Hits {
			result, ok := hitToResult(hit)
			if ok {
				results = append(results, result)
			}
		}
	}
	return results, nil
}

func recordFor(document *models.Document) DocumentRecord {
	return DocumentRecord{
		ID:          document.ID.String(),
		DocumentNo:  document.DocumentNo,
		Title:       document.Title,
		Location:    document.Location,
		Description: document.Description,
		Status:      string(document.Status),
		CreatedAt:   document.CreatedAt.Unix(),
	}
}

func hitToResult(hit meili.Hit) (services.SearchResult, bool) {
	id, err := uuid.Parse(decodeString(hit, "id"))
	if err != nil {
		return services.SearchResult{}, false
	}
	return services.SearchResult{
		ID:          id,
		DocumentNo:  decodeString(hit, "documentNo"),
		Title:       decodeString(hit, "title"),
		Location:    decodeString(hit, "location"),
		Description: decodeString(hit, "description"),
		Status:      models.DocStatus(decodeString(hit, "status")),
	}, true
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

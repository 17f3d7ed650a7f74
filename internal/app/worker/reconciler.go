package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
)

// Config holds configuration for the background reconciler
type Config struct {
	StaleAfter          time.Duration
	MaxAttempts         int
	BatchSize           int
	CleanupMissingFiles bool
}

// DocumentIndexer bulk-loads documents into the search index
type DocumentIndexer interface {
	IndexDocuments(ctx context.Context, documents []models.Document) error
}

// Reconciler repairs state that a request could not finish: interrupted
// deletions and records whose file has disappeared.
type Reconciler struct {
	jobRepo    repositories.DeletionJobRepository
	docRepo    repositories.DocumentRepository
	subDocRepo repositories.SubDocumentRepository

	deletions *services.DeletionService
	storage   services.StorageService
	indexer   DocumentIndexer
	logger    *logger.Logger
	config    Config
	now       func() time.Time
}

// NewReconciler creates a reconciler. indexer may be nil.
func NewReconciler(
	jobRepo repositories.DeletionJobRepository,
	docRepo repositories.DocumentRepository,
	subDocRepo repositories.SubDocumentRepository,
	deletions *services.DeletionService,
	storage services.StorageService,
	indexer DocumentIndexer,
	log *logger.Logger,
	config Config,
) *Reconciler {
	if config.BatchSize < 1 {
		config.BatchSize = 50
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 5
	}
	return &Reconciler{
		jobRepo:    jobRepo,
		docRepo:    docRepo,
		subDocRepo: subDocRepo,
		deletions:  deletions,
		storage:    storage,
		indexer:    indexer,
		logger:     log,
		config:     config,
		now:        time.Now,
	}
}

// RunResult counts what one pass did
type RunResult struct {
	JobsResumed         int
	JobsFailed          int
	DocumentsRemoved    int
	SubDocumentsRemoved int
}

// RunOnce performs a single reconciliation pass
func (r *Reconciler) RunOnce(ctx context.Context) (RunResult, error) {
	var result RunResult

	resumed, failed, err := r.ResumeDeletions(ctx)
	result.JobsResumed, result.JobsFailed = resumed, failed
	if err != nil {
		return result, err
	}

	if r.config.CleanupMissingFiles {
		docs, subs, err := r.CleanupMissingFiles(ctx)
		result.DocumentsRemoved, result.SubDocumentsRemoved = docs, subs
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// ResumeDeletions re-runs failed and stale deletion jobs. A job that fails
// again stays failed with its attempt count raised.
func (r *Reconciler) ResumeDeletions(ctx context.Context) (resumed, failed int, err error) {
	staleBefore := r.now().Add(-r.config.StaleAfter)
	jobs, err := r.jobRepo.ListResumable(ctx, staleBefore, r.config.MaxAttempts, r.config.BatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list deletion jobs: %w", err)
	}

	for i := range jobs {
		if ctx.Err() != nil {
			return resumed, failed, ctx.Err()
		}

		job := &jobs[i]
		if err := r.deletions.Resume(ctx, job); err != nil {
			failed++
			r.logger.Warn("Deletion job still failing",
				"job_id", job.ID,
				"document_no", job.DocumentNo,
				"attempts", job.Attempts,
				"error", err)
			continue
		}
		resumed++
		r.logger.Info("Deletion job resumed", "job_id", job.ID, "document_no", job.DocumentNo)
	}

	return resumed, failed, nil
}

// CleanupMissingFiles hard-deletes records whose stored file is gone.
// Sub-documents go first so their parents can be removed in the same pass;
// a parent that keeps children with intact files is left in place.
func (r *Reconciler) CleanupMissingFiles(ctx context.Context) (documents, subDocuments int, err error) {
	subs, err := r.subDocRepo.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list sub-documents: %w", err)
	}
	for _, sub := range subs {
		missing, err := r.isMissing(ctx, sub.FilePath)
		if err != nil {
			return documents, subDocuments, err
		}
		if !missing {
			continue
		}

		r.logger.Warn("Removing sub-document with missing file",
			"sub_document_id", sub.ID,
			"sub_document_no", sub.SubDocumentNo,
			"file_path", sub.FilePath)
		if err := r.subDocRepo.Delete(ctx, sub.ID, models.HardDelete); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return documents, subDocuments, fmt.Errorf("failed to delete sub-document: %w", err)
		}
		subDocuments++
	}

	docs, err := r.docRepo.ListAll(ctx)
	if err != nil {
		return documents, subDocuments, fmt.Errorf("failed to list documents: %w", err)
	}
	for _, doc := range docs {
		missing, err := r.isMissing(ctx, doc.FilePath)
		if err != nil {
			return documents, subDocuments, err
		}
		if !missing {
			continue
		}

		err = r.docRepo.Delete(ctx, doc.ID, models.HardDelete)
		switch {
		case errors.Is(err, repositories.ErrHasDependents):
			r.logger.Warn("Document file missing but sub-documents remain, skipping",
				"document_id", doc.ID,
				"document_no", doc.DocumentNo)
			continue
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return documents, subDocuments, fmt.Errorf("failed to delete document: %w", err)
		}

		r.logger.Warn("Removed document with missing file",
			"document_id", doc.ID,
			"document_no", doc.DocumentNo,
			"file_path", doc.FilePath)
		documents++
	}

	return documents, subDocuments, nil
}

// Reindex loads every document into the search index
func (r *Reconciler) Reindex(ctx context.Context) (int, error) {
	if r.indexer == nil {
		return 0, nil
	}
	documents, err := r.docRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}
	if err := r.indexer.IndexDocuments(ctx, documents); err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}
	return len(documents), nil
}

// Run reconciles every interval until ctx is cancelled
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error("Reconciliation pass failed", "error", err)
		} else if result != (RunResult{}) {
			r.logger.Info("Reconciliation pass finished",
				"jobs_resumed", result.JobsResumed,
				"jobs_failed", result.JobsFailed,
				"documents_removed", result.DocumentsRemoved,
				"sub_documents_removed", result.SubDocumentsRemoved)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// isMissing probes the backend; only a definite not-found counts as missing
func (r *Reconciler) isMissing(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	content, err := r.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	content.Close()
	return false, nil
}

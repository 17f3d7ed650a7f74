package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/google/uuid"
)

// Steps recorded on a DeletionJob as the cascade advances
const (
	StepStarted           = "started"
	StepPrimaryFile       = "primary_file"
	StepEnumerateChildren = "enumerate_children"
	StepChildFile         = "child_file"
	StepChildRecord       = "child_record"
	StepParentRecord      = "parent_record"
	StepCompleted         = "completed"
)

// maxChildPasses bounds how often the cascade re-enumerates children when a
// sub-document appears between enumeration and the parent delete.
const maxChildPasses = 3

var ErrInvalidDeletionMode = errors.New("invalid deletion mode")

// PartialDeletionError reports a cascade that failed after it had already
// removed something. The removed parts stay removed.
type PartialDeletionError struct {
	DocumentID        uuid.UUID
	Step              string
	ChildrenProcessed int
	ChildrenTotal     int
	Err               error
}

func (e *PartialDeletionError) Error() string {
	return fmt.Sprintf("partial deletion of document %s at step %s (%d/%d sub-documents removed): %v",
		e.DocumentID, e.Step, e.ChildrenProcessed, e.ChildrenTotal, e.Err)
}

func (e *PartialDeletionError) Unwrap() error {
	return e.Err
}

// DeletionService removes documents together with their files and sub-documents
type DeletionService struct {
	docRepo    repositories.DocumentRepository
	subDocRepo repositories.SubDocumentRepository
	jobRepo    repositories.DeletionJobRepository

	activity       *ActivityService
	storageService StorageService
	searchIndexer  SearchIndexer
	logger         *logger.Logger
}

// NewDeletionService creates a deletion coordinator; searchIndexer may be nil
func NewDeletionService(
	docRepo repositories.DocumentRepository,
	subDocRepo repositories.SubDocumentRepository,
	jobRepo repositories.DeletionJobRepository,
	activity *ActivityService,
	storageService StorageService,
	searchIndexer SearchIndexer,
	log *logger.Logger,
) *DeletionService {
	return &DeletionService{
		docRepo:        docRepo,
		subDocRepo:     subDocRepo,
		jobRepo:        jobRepo,
		activity:       activity,
		storageService: storageService,
		searchIndexer:  searchIndexer,
		logger:         log,
	}
}

// DeleteDocumentParams contains parameters for a cascading document deletion
type DeleteDocumentParams struct {
	DocumentID uuid.UUID
	Actor      Actor
	Mode       models.DeletionMode
	Request    RequestInfo
}

// DeleteSubDocumentParams contains parameters for removing one sub-document
type DeleteSubDocumentParams struct {
	SubDocumentID uuid.UUID
	Actor         Actor
	Mode          models.DeletionMode
	Request       RequestInfo
}

// canDelete is admin and level1 only
func canDelete(actor Actor) bool {
	return actor.Level.IsAtLeast(models.UserLevelLevel1)
}

// DeleteDocument removes the document's file, every sub-document (file and
// record) and finally the document record itself.
func (s *DeletionService) DeleteDocument(ctx context.Context, params DeleteDocumentParams) (*models.DeletionJob, error) {
	mode := params.Mode
	if mode == "" {
		mode = models.SoftDelete
	}
	if !mode.Valid() {
		return nil, ErrInvalidDeletionMode
	}

	// 1. Lookup
	document, err := s.docRepo.GetByID(ctx, params.DocumentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	// 2. Authorize
	if !canDelete(params.Actor) {
		return nil, ErrForbidden
	}

	// 3. Write-ahead marker
	now := time.Now().UTC()
	job := &models.DeletionJob{
		DocumentID:  document.ID,
		DocumentNo:  document.DocumentNo,
		Title:       document.Title,
		Mode:        mode,
		Status:      models.DeletionProcessing,
		Step:        StepStarted,
		Attempts:    1,
		RequestedBy: params.Actor.ID,
		StartedAt:   &now,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record deletion job: %w", err)
	}

	if err := s.runCascade(ctx, job, document); err != nil {
		return job, err
	}

	// 4. Audit with what was captured before anything was removed
	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionDelete,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Deleted master document: %s", document.Title),
		Request:     params.Request,
	})

	return job, nil
}

// Resume re-runs an interrupted cascade. Every step tolerates work that was
// already done, so running it again is safe.
func (s *DeletionService) Resume(ctx context.Context, job *models.DeletionJob) error {
	job.Attempts++
	job.Status = models.DeletionProcessing
	job.ErrorMessage = ""
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update deletion job: %w", err)
	}

	document, err := s.docRepo.GetByIDUnscoped(ctx, job.DocumentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Parent already gone: the cascade finished before the job was marked
			s.logger.Info("Deletion job target already removed", "job_id", job.ID, "document_id", job.DocumentID)
			return s.complete(ctx, job)
		}
		return s.fail(ctx, job, fmt.Errorf("failed to load document: %w", err))
	}

	if err := s.runCascade(ctx, job, document); err != nil {
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      job.RequestedBy,
		Action:      models.ActionDelete,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Deleted master document: %s", job.Title),
	})
	return nil
}

// DeleteSubDocument removes one sub-document. A file that cannot be removed
// is logged and does not block the record removal.
func (s *DeletionService) DeleteSubDocument(ctx context.Context, params DeleteSubDocumentParams) error {
	mode := params.Mode
	if mode == "" {
		mode = models.SoftDelete
	}
	if !mode.Valid() {
		return ErrInvalidDeletionMode
	}

	subDocument, err := s.subDocRepo.GetByID(ctx, params.SubDocumentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubDocumentNotFound
		}
		return fmt.Errorf("failed to load sub-document: %w", err)
	}
	if !canDelete(params.Actor) {
		return ErrForbidden
	}

	if err := s.removeFile(ctx, subDocument.FilePath); err != nil {
		s.logger.Warn("Failed to remove sub-document file",
			"sub_document_id", subDocument.ID,
			"path", subDocument.FilePath,
			"error", err)
	}

	if err := s.subDocRepo.Delete(ctx, subDocument.ID, mode); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubDocumentNotFound
		}
		return fmt.Errorf("failed to delete sub-document: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionDelete,
		EntityType:  models.EntitySubDocument,
		EntityID:    &subDocument.ID,
		Description: fmt.Sprintf("Deleted sub-document: %s", subDocument.Title),
		Request:     params.Request,
	})
	return nil
}

// runCascade performs the side effects in order and leaves job completed or failed
func (s *DeletionService) runCascade(ctx context.Context, job *models.DeletionJob, document *models.Document) error {
	progress := &cascadeProgress{documentID: document.ID}

	// Primary file
	s.setStep(ctx, job, StepPrimaryFile)
	if err := s.removeFile(ctx, document.FilePath); err != nil {
		return s.failCascade(ctx, job, progress, fmt.Errorf("failed to remove document file: %w", err))
	}
	progress.fileRemoved = true

	for pass := 1; ; pass++ {
		// Children, soft-deleted ones included: they still reference the parent
		s.setStep(ctx, job, StepEnumerateChildren)
		children, err := s.subDocRepo.ListByParent(ctx, document.ID, true)
		if err != nil {
			return s.failCascade(ctx, job, progress, fmt.Errorf("failed to list sub-documents: %w", err))
		}
		progress.childrenTotal = progress.childrenProcessed + len(children)

		for _, child := range children {
			s.setStep(ctx, job, StepChildFile)
			if err := s.removeFile(ctx, child.FilePath); err != nil {
				return s.failCascade(ctx, job, progress,
					fmt.Errorf("failed to remove file of sub-document %s: %w", child.SubDocumentNo, err))
			}

			s.setStep(ctx, job, StepChildRecord)
			if err := s.subDocRepo.Delete(ctx, child.ID, models.HardDelete); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return s.failCascade(ctx, job, progress,
					fmt.Errorf("failed to delete sub-document %s: %w", child.SubDocumentNo, err))
			}
			progress.childrenProcessed++
		}

		s.setStep(ctx, job, StepParentRecord)
		err = s.docRepo.Delete(ctx, document.ID, job.Mode)
		if err == nil || errors.Is(err, repositories.ErrNotFound) {
			break
		}
		if errors.Is(err, repositories.ErrHasDependents) && pass < maxChildPasses {
			s.logger.Warn("Sub-document added during deletion, re-enumerating",
				"document_id", document.ID,
				"pass", pass)
			continue
		}
		return s.failCascade(ctx, job, progress, fmt.Errorf("failed to delete document record: %w", err))
	}

	s.removeFromIndex(ctx, document.ID)

	if err := s.complete(ctx, job); err != nil {
		// Everything is removed; only the marker is stale and the worker will close it.
		s.logger.Warn("Failed to mark deletion job completed", "job_id", job.ID, "error", err)
	}

	s.logger.Info("Document deleted",
		"document_id", document.ID,
		"document_no", document.DocumentNo,
		"mode", job.Mode,
		"sub_documents", progress.childrenProcessed)
	return nil
}

type cascadeProgress struct {
	documentID        uuid.UUID
	fileRemoved       bool
	childrenProcessed int
	childrenTotal     int
}

// failCascade marks the job failed and shapes the error for the caller
func (s *DeletionService) failCascade(ctx context.Context, job *models.DeletionJob, progress *cascadeProgress, err error) error {
	_ = s.fail(ctx, job, err)

	if progress.fileRemoved || progress.childrenProcessed > 0 {
		return &PartialDeletionError{
			DocumentID:        progress.documentID,
			Step:              job.Step,
			ChildrenProcessed: progress.childrenProcessed,
			ChildrenTotal:     progress.childrenTotal,
			Err:               err,
		}
	}
	return err
}

func (s *DeletionService) fail(ctx context.Context, job *models.DeletionJob, cause error) error {
	job.Status = models.DeletionFailed
	job.ErrorMessage = cause.Error()

	s.logger.Error("Document deletion failed",
		"job_id", job.ID,
		"document_id", job.DocumentID,
		"step", job.Step,
		"attempts", job.Attempts,
		"error", cause)

	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Error("Failed to mark deletion job failed", "job_id", job.ID, "error", err)
	}
	return cause
}

func (s *DeletionService) complete(ctx context.Context, job *models.DeletionJob) error {
	now := time.Now().UTC()
	job.Status = models.DeletionCompleted
	job.Step = StepCompleted
	job.ErrorMessage = ""
	job.CompletedAt = &now
	return s.jobRepo.Update(ctx, job)
}

// setStep records progress; a failed write only costs resume precision
func (s *DeletionService) setStep(ctx context.Context, job *models.DeletionJob, step string) {
	job.Step = step
	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Warn("Failed to record deletion step", "job_id", job.ID, "step", step, "error", err)
	}
}

// removeFile treats an already missing file as removed
func (s *DeletionService) removeFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := s.storageService.Delete(ctx, path); err != nil && !errors.Is(err, ErrFileNotFound) {
		return err
	}
	return nil
}

func (s *DeletionService) removeFromIndex(ctx context.Context, id uuid.UUID) {
	if s.searchIndexer == nil || !s.searchIndexer.Healthy() {
		return
	}
	if err := s.searchIndexer.DeleteDocument(ctx, id); err != nil {
		s.logger.Warn("Failed to remove document from search index", "document_id", id, "error", err)
	}
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custom Types
type DocStatus string
type UserLevel string
type ActivityAction string
type EntityType string
type DeletionMode string
type DeletionJobStatus string

const (
	// Document Status
	DocStatusActive   DocStatus = "active"
	DocStatusArchived DocStatus = "archived"
	DocStatusDeleted  DocStatus = "deleted"

	// User Levels, highest first
	UserLevelAdmin  UserLevel = "admin"
	UserLevelLevel1 UserLevel = "level1"
	UserLevelLevel2 UserLevel = "level2"
	UserLevelLevel3 UserLevel = "level3"

	// Activity Actions
	ActionLogin    ActivityAction = "LOGIN"
	ActionLogout   ActivityAction = "LOGOUT"
	ActionCreate   ActivityAction = "CREATE"
	ActionUpdate   ActivityAction = "UPDATE"
	ActionDelete   ActivityAction = "DELETE"
	ActionView     ActivityAction = "VIEW"
	ActionDownload ActivityAction = "DOWNLOAD"

	// Activity entity types
	EntityDocument    EntityType = "document"
	EntitySubDocument EntityType = "subdocument"
	EntityUser        EntityType = "user"

	// Deletion modes
	SoftDelete DeletionMode = "soft"
	HardDelete DeletionMode = "hard"

	// Deletion job status
	DeletionProcessing DeletionJobStatus = "processing"
	DeletionFailed     DeletionJobStatus = "failed"
	DeletionCompleted  DeletionJobStatus = "completed"
)

// Counter names
const (
	CounterMasterDocument = "master_document"
)

// levelRank orders the access tiers; a higher rank grants more.
var levelRank = map[UserLevel]int{
	UserLevelAdmin:  4,
	UserLevelLevel1: 3,
	UserLevelLevel2: 2,
	UserLevelLevel3: 1,
}

// Valid reports whether l is one of the four known tiers.
func (l UserLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// IsAtLeast reports whether l ranks at or above min.
func (l UserLevel) IsAtLeast(min UserLevel) bool {
	return l.Valid() && levelRank[l] >= levelRank[min]
}

// IsExactly reports whether l is the given tier.
func (l UserLevel) IsExactly(level UserLevel) bool {
	return l == level
}

// IsOneOf reports whether l is any of the given tiers.
func (l UserLevel) IsOneOf(levels ...UserLevel) bool {
	for _, level := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func (s DocStatus) Valid() bool {
	switch s {
	case DocStatusActive, DocStatusArchived, DocStatusDeleted:
		return true
	}
	return false
}

func (m DeletionMode) Valid() bool {
	return m == SoftDelete || m == HardDelete
}

// JSONB type for PostgreSQL jsonb columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = JSONB{}
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

// Core Models
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Username     string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"type:varchar(320);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	Name         string         `json:"name" gorm:"type:varchar(255)"`
	UserLevel    UserLevel      `json:"user_level" gorm:"type:varchar(10);not null;default:'level3';index"`
	IsApproved   bool           `json:"is_approved" gorm:"not null"`
	IsActive     bool           `json:"is_active" gorm:"not null"`
	LastLogin    *time.Time     `json:"last_login"`
	LastLogout   *time.Time     `json:"last_logout"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.UserLevel == "" {
		u.UserLevel = UserLevelLevel3
	}
	return nil
}

// FileMetadata keys stored in Document.Metadata and SubDocument.Metadata
const (
	MetaOriginalName = "original_name"
	MetaMimeType     = "mime_type"
	MetaSize         = "size"
)

type Document struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	DocumentNo  string         `json:"document_no" gorm:"type:varchar(20);uniqueIndex;not null"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Location    string         `json:"location" gorm:"type:varchar(255);not null"`
	Longitude   *float64       `json:"longitude" gorm:"type:decimal(10,7)"`
	Latitude    *float64       `json:"latitude" gorm:"type:decimal(10,7)"`
	Description string         `json:"description" gorm:"type:varchar(350);not null;default:''"`
	Status      DocStatus      `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:uuid;not null;index"`
	FilePath    string         `json:"file_path" gorm:"type:varchar(500);not null"`
	Metadata    JSONB          `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Creator      *User         `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	SubDocuments []SubDocument `json:"sub_documents,omitempty" gorm:"foreignKey:ParentDocumentID;constraint:OnDelete:RESTRICT"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DocStatusActive
	}
	return nil
}

type SubDocument struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	SubDocumentNo    string         `json:"sub_document_no" gorm:"type:varchar(20);not null;uniqueIndex:idx_sub_documents_parent_no,where:deleted_at IS NULL"`
	ParentDocumentID uuid.UUID      `json:"parent_document_id" gorm:"type:uuid;not null;uniqueIndex:idx_sub_documents_parent_no,where:deleted_at IS NULL"`
	Title            string         `json:"title" gorm:"type:varchar(255);not null"`
	Location         string         `json:"location" gorm:"type:varchar(255);not null"`
	Longitude        *float64       `json:"longitude" gorm:"type:decimal(10,7)"`
	Latitude         *float64       `json:"latitude" gorm:"type:decimal(10,7)"`
	Description      string         `json:"description" gorm:"type:varchar(350);not null;default:''"`
	Status           DocStatus      `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	FilePath         string         `json:"file_path" gorm:"type:varchar(500);not null"`
	Metadata         JSONB          `json:"metadata" gorm:"type:jsonb"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *SubDocument) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = DocStatusActive
	}
	return nil
}

// ActivityLog is append-only; nothing updates or deletes rows.
type ActivityLog struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Action      ActivityAction `json:"action" gorm:"type:varchar(20);not null"`
	EntityType  *EntityType    `json:"entity_type" gorm:"type:varchar(20)"`
	EntityID    *uuid.UUID     `json:"entity_id" gorm:"type:uuid"`
	Description string         `json:"description" gorm:"type:text;not null"`
	IPAddress   string         `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent   string         `json:"user_agent" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// DocumentCounter serializes identifier allocation; one row per sequence.
type DocumentCounter struct {
	Name      string    `json:"name" gorm:"type:varchar(50);primary_key"`
	Value     int64     `json:"value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeletionJob is the write-ahead marker of a cascading document deletion.
type DeletionJob struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	DocumentID   uuid.UUID         `json:"document_id" gorm:"type:uuid;not null;index"`
	DocumentNo   string            `json:"document_no" gorm:"type:varchar(20)"`
	Title        string            `json:"title" gorm:"type:varchar(255)"`
	Mode         DeletionMode      `json:"mode" gorm:"type:varchar(10);not null"`
	Status       DeletionJobStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Step         string            `json:"step" gorm:"type:varchar(50)"`
	Attempts     int               `json:"attempts" gorm:"not null;default:0"`
	ErrorMessage string            `json:"error_message" gorm:"type:text"`
	RequestedBy  uuid.UUID         `json:"requested_by" gorm:"type:uuid;not null"`
	StartedAt    *time.Time        `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (j *DeletionJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// GetAllModels returns all models for auto-migration
func GetAllModels() []interface{} {
	return []interface{}{
		&User{},
		&Document{},
		&SubDocument{},
		&ActivityLog{},
		&DocumentCounter{},
		&DeletionJob{},
	}
}

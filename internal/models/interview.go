package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IndexStatus string

const (
	IndexPending    IndexStatus = "pending"
	IndexProcessing IndexStatus = "processing"
	IndexIndexed    IndexStatus = "indexed"
	IndexFailed     IndexStatus = "failed"
)

// Interview is the feedback record written once when an interview ends.
type Interview struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID      uuid.UUID   `gorm:"type:uuid;index" json:"session_id"`
	Transcript     string      `gorm:"type:text" json:"transcript"`
	Resume         string      `gorm:"type:text" json:"resume"`
	JobDescription string      `gorm:"type:text" json:"job_description"`
	Feedback       string      `gorm:"type:text" json:"feedback"`
	IndexStatus    IndexStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"index_status"`
	IndexError     *string     `gorm:"type:text" json:"index_error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Interview) TableName() string {
	return "interviews"
}

func (i *Interview) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.IndexStatus == "" {
		i.IndexStatus = IndexPending
	}
	return nil
}

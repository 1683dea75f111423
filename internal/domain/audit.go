package domain

import (
	"time"

	"github.com/google/uuid"
)

// CodeAudit is the auditor-owned parent of audit records.
type CodeAudit struct {
	ID        uuid.UUID
	Code      string
	AuditorID uuid.UUID
	CreatedAt time.Time
}

// AuditRecord is a single auditing period with its mark. Editable only while
// in draft mode, and only by the auditor owning its code audit.
type AuditRecord struct {
	ID            uuid.UUID
	Code          string
	InitialPeriod time.Time
	FinalPeriod   *time.Time
	Mark          Mark
	OptionalLink  *string
	DraftMode     bool
	CodeAuditID   uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProgressLog tracks completion of a contract over time. RecordID is the
// human-readable identifier, unique across all progress logs.
type ProgressLog struct {
	ID                 uuid.UUID
	RecordID           string
	Completeness       float64
	Comment            string
	RegistrationMoment time.Time
	ResponsiblePerson  string
	DraftMode          bool
	ContractID         uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

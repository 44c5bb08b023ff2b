package store

import (
	"context"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitMySQL opens the GORM connection used by RevisionStore. The rest of the
// store package talks to MySQL through database/sql directly (hand-written
// queries against tables this repo doesn't own the schema evolution of);
// RevisionStore's audit table is new and self-contained, so it's a
// reasonable place to let GORM own migration via AutoMigrate instead of
// hand-writing DDL.
func InitMySQL(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// RevisionEntry is one row of the applied-operations audit log: every
// AppliedOp a collab.Service commits, kept independently of the ops ring
// buffer (which is bounded and in-memory) and of snapshots (which coalesce
// history away). Ops is stored as its wire JSON rather than modeled
// relationally, since its shape is delta.Ops, not a GORM concern.
type RevisionEntry struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	DocumentID  string `gorm:"index:idx_doc_rev,priority:1"`
	Revision    uint64 `gorm:"index:idx_doc_rev,priority:2"`
	OperationID string
	AuthorID    uint64
	OpsJSON     string `gorm:"type:text"`
	AppliedAt   time.Time
}

// RevisionStore appends to and queries the audit log.
type RevisionStore struct{ db *gorm.DB }

func NewRevisionStore(db *gorm.DB) (*RevisionStore, error) {
	if err := db.AutoMigrate(&RevisionEntry{}); err != nil {
		return nil, err
	}
	return &RevisionStore{db: db}, nil
}

// Append satisfies collab.RevisionAppender.
func (s *RevisionStore) Append(ctx context.Context, docID string, revision uint64, operationID string, authorID uint64, opsJSON string, appliedAt time.Time) error {
	e := RevisionEntry{
		DocumentID:  docID,
		Revision:    revision,
		OperationID: operationID,
		AuthorID:    authorID,
		OpsJSON:     opsJSON,
		AppliedAt:   appliedAt,
	}
	return s.db.WithContext(ctx).Create(&e).Error
}

func (s *RevisionStore) ListSince(ctx context.Context, docID string, fromRevision uint64, limit int) ([]RevisionEntry, error) {
	var out []RevisionEntry
	q := s.db.WithContext(ctx).
		Where("document_id = ? AND revision > ?", docID, fromRevision).
		Order("revision asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

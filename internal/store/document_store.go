// Package store holds the MySQL-backed persistence that outlives a single
// process: document/user identity, point-in-time snapshots, and a
// revision-by-revision audit log.
package store

import (
	"context"
	"database/sql"
)

// DocumentStore resolves document titles to IDs and records new documents.
type DocumentStore struct{ db *sql.DB }

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) GetDocumentID(ctx context.Context, title string) (string, error) {
	var docID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents WHERE title = ?`,
		title,
	).Scan(&docID)
	return docID, err
}

func (s *DocumentStore) CreateDocument(ctx context.Context, ownerID uint64, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (owner_id, title) VALUES (?, ?)`,
		ownerID, title,
	)
	return err
}

// Package collab is the collaborative-editing service: it holds the
// authoritative per-document state (delta, revision, recent-ops ring,
// client de-dup window) and exposes Submit/OpsSince/SaveSnapshot on top of
// the document facade in internal/document.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/delta"
	"github.com/foliodoc/collabdoc/internal/document"
)

// Service is the collaborative engine's public surface.
type Service interface {
	Submit(ctx context.Context, docID string, authorID uint64,
		baseRevision uint64, clientID string, clientSeq uint64,
		ops delta.Ops) (AppliedOp, error)

	CurrentRevision(ctx context.Context, docID string) (uint64, error)

	LoadDocumentContent(ctx context.Context, docID string) (delta.Sequence, uint64, error)

	// OpsSince supports handshake/catch-up: the ops a reconnecting client
	// missed since fromRevision.
	OpsSince(ctx context.Context, docID string, fromRevision uint64, limit int) ([]AppliedOp, error)

	SaveSnapshot(ctx context.Context, docID string) error

	GetDocumentID(ctx context.Context, title string) (string, error)
	CreateDocument(ctx context.Context, ownerID uint64, title string) error

	GetUserID(ctx context.Context, username string) (uint64, error)
}

// SnapshotStore persists a point-in-time rendering of a document's delta.
type SnapshotStore interface {
	SaveDocumentSnapshot(ctx context.Context, docID string, rev uint64, contentJSON string) error
}

// DocumentStore resolves document titles to IDs and creates new documents.
type DocumentStore interface {
	GetDocumentID(ctx context.Context, title string) (string, error)
	CreateDocument(ctx context.Context, ownerID uint64, title string) error
}

// UserStore resolves usernames to IDs.
type UserStore interface {
	GetUserID(ctx context.Context, username string) (uint64, error)
}

// RevisionAppender records one applied operation to the durable audit log.
// Unlike SnapshotStore (coalesced state) and the in-memory ops ring
// (bounded, lost on restart), this is the permanent revision-by-revision
// history.
type RevisionAppender interface {
	Append(ctx context.Context, docID string, revision uint64, operationID string, authorID uint64, opsJSON string, appliedAt time.Time) error
}

// AppliedOp records one committed operation list against a document.
type AppliedOp struct {
	OperationId string
	Revision    uint64
	AuthorId    uint64
	Ops         delta.Ops
	AppliedAt   time.Time
}

var (
	ErrRevisionConflict      = errors.New("REVISION_CONFLICT")
	ErrDuplicateOrOutOfOrder = errors.New("DUPLICATE_OR_OUT_OF_ORDER")
	ErrDocumentNotFound      = errors.New("document not found")
)

// docState is one document's live, mutable state: its delta (wrapped in a
// Document facade so Submit can route through the applier), revision
// counter, recent-ops ring for catch-up, and per-client de-dup window.
type docState struct {
	mu              sync.RWMutex
	revision        uint64
	opsRing         []AppliedOp
	lastSeqByClient map[string]uint64
	doc             *document.Document
}

// InMemoryService holds every open document's state in memory and fans out
// applied operations to Kafka via a KafkaDispatcher.
type InMemoryService struct {
	mu      sync.RWMutex
	docs    map[string]*docState
	ringCap int

	store         SnapshotStore
	documentStore DocumentStore
	userStore     UserStore
	revisions     RevisionAppender

	dispatcher *KafkaDispatcher
}

// NewInMemoryService returns a Service backed by in-process state.
// dispatcher and revisions may both be nil, in which case applied ops are
// only kept in the in-memory ring buffer.
func NewInMemoryService(store SnapshotStore, documentStore DocumentStore, userStore UserStore, revisions RevisionAppender, dispatcher *KafkaDispatcher) Service {
	return &InMemoryService{
		docs:          make(map[string]*docState),
		ringCap:       1024,
		store:         store,
		documentStore: documentStore,
		userStore:     userStore,
		revisions:     revisions,
		dispatcher:    dispatcher,
	}
}

func (s *InMemoryService) LoadDocumentContent(ctx context.Context, docID string) (delta.Sequence, uint64, error) {
	s.mu.RLock()
	ds := s.docs[docID]
	s.mu.RUnlock()
	if ds == nil {
		return nil, 0, ErrDocumentNotFound
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.doc.Delta(), ds.revision, nil
}

func (s *InMemoryService) getOrCreateDoc(docID string) *docState {
	s.mu.RLock()
	ds := s.docs[docID]
	s.mu.RUnlock()
	if ds != nil {
		return ds
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds = s.docs[docID]; ds == nil {
		capacity := s.ringCap
		if capacity <= 0 {
			capacity = 1024
		}
		ds = &docState{
			lastSeqByClient: make(map[string]uint64),
			opsRing:         make([]AppliedOp, 0, capacity),
			doc:             document.New(attrs.Attributes{}, nil),
		}
		s.docs[docID] = ds
	}
	return ds
}

// Submit applies a client's raw operation list against the document named
// by docID, after the revision and de-dup checks. Operations come in
// already built (a remote client's own transaction builder produced them
// locally); Submit folds them straight through Document.Apply rather than
// running a new transaction.
func (s *InMemoryService) Submit(ctx context.Context, docID string, authorID uint64, baseRevision uint64, clientID string, clientSeq uint64, ops delta.Ops) (AppliedOp, error) {
	ds := s.getOrCreateDoc(docID)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if last := ds.lastSeqByClient[clientID]; clientSeq <= last {
		return AppliedOp{}, ErrDuplicateOrOutOfOrder
	}
	if baseRevision != ds.revision {
		return AppliedOp{}, ErrRevisionConflict
	}

	ds.doc.Apply(ops)

	ds.revision++
	appliedOp := AppliedOp{
		OperationId: fmt.Sprintf("o-%d", time.Now().UnixNano()),
		Revision:    ds.revision,
		AuthorId:    authorID,
		Ops:         ops,
		AppliedAt:   time.Now(),
	}

	if cap(ds.opsRing) > 0 && len(ds.opsRing) == cap(ds.opsRing) {
		copy(ds.opsRing[0:], ds.opsRing[1:])
		ds.opsRing = ds.opsRing[:len(ds.opsRing)-1]
	}
	ds.opsRing = append(ds.opsRing, appliedOp)

	ds.lastSeqByClient[clientID] = clientSeq

	if s.revisions != nil {
		if opsJSON, err := json.Marshal(appliedOp.Ops); err == nil {
			_ = s.revisions.Append(ctx, docID, appliedOp.Revision, appliedOp.OperationId, authorID, string(opsJSON), appliedOp.AppliedAt)
		}
	}

	if s.dispatcher != nil {
		evt := DocOpEvent{
			EventType:    "OP_APPLIED",
			DocID:        docID,
			OperationID:  appliedOp.OperationId,
			Revision:     appliedOp.Revision,
			AuthorID:     appliedOp.AuthorId,
			ClientID:     clientID,
			ClientSeq:    clientSeq,
			BaseRevision: baseRevision,
			Ops:          appliedOp.Ops,
			AppliedAt:    appliedOp.AppliedAt,
		}
		enqueueCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_ = s.dispatcher.Enqueue(enqueueCtx, evt)
	}

	return appliedOp, nil
}

func (s *InMemoryService) CurrentRevision(ctx context.Context, docID string) (uint64, error) {
	s.mu.RLock()
	ds := s.docs[docID]
	s.mu.RUnlock()
	if ds == nil {
		return 0, nil
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.revision, nil
}

func (s *InMemoryService) OpsSince(ctx context.Context, docID string, fromRevision uint64, limit int) ([]AppliedOp, error) {
	s.mu.RLock()
	ds := s.docs[docID]
	s.mu.RUnlock()
	if ds == nil {
		return nil, nil
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var out []AppliedOp
	for _, op := range ds.opsRing {
		if op.Revision > fromRevision {
			out = append(out, op)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *InMemoryService) SaveSnapshot(ctx context.Context, docID string) error {
	if s.store == nil {
		return errors.New("snapshot store not initialized")
	}
	s.mu.RLock()
	ds := s.docs[docID]
	s.mu.RUnlock()
	if ds == nil || ds.doc == nil {
		return errors.New("document not found or buffer not initialized")
	}
	ds.mu.RLock()
	seq := ds.doc.Delta()
	rev := ds.revision
	ds.mu.RUnlock()

	b, err := json.Marshal(seq)
	if err != nil {
		return err
	}
	return s.store.SaveDocumentSnapshot(ctx, docID, rev, string(b))
}

func (s *InMemoryService) GetDocumentID(ctx context.Context, title string) (string, error) {
	if s.documentStore == nil {
		return "", errors.New("document store not initialized")
	}
	return s.documentStore.GetDocumentID(ctx, title)
}

func (s *InMemoryService) CreateDocument(ctx context.Context, ownerID uint64, title string) error {
	if s.documentStore == nil {
		return errors.New("document store not initialized")
	}
	return s.documentStore.CreateDocument(ctx, ownerID, title)
}

func (s *InMemoryService) GetUserID(ctx context.Context, username string) (uint64, error) {
	if s.userStore == nil {
		return 0, errors.New("user store not initialized")
	}
	return s.userStore.GetUserID(ctx, username)
}

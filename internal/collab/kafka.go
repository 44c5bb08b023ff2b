package collab

import (
	"time"

	"github.com/foliodoc/collabdoc/internal/delta"
)

// DocOpEvent is the wire shape published to Kafka for every applied
// operation list, so downstream consumers (audit log, search indexer,
// activity feed) can follow a document's history without querying the
// collab service directly.
type DocOpEvent struct {
	EventType    string    `json:"eventType"`
	DocID        string    `json:"docId"`
	OperationID  string    `json:"operationId"`
	Revision     uint64    `json:"revision"`
	AuthorID     uint64    `json:"authorId"`
	ClientID     string    `json:"clientId"`
	ClientSeq    uint64    `json:"clientSeq"`
	BaseRevision uint64    `json:"baseRevision"`
	Ops          delta.Ops `json:"ops"`
	AppliedAt    time.Time `json:"appliedAt"`
}

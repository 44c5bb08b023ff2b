package ws

import (
	"time"

	"github.com/foliodoc/collabdoc/internal/delta"
)

// ClientMessage is the single discriminated-union shape every inbound
// websocket frame is decoded into; Type selects which fields are relevant.
type ClientMessage struct {
	Type         string      `json:"type"`
	DocID        string      `json:"docId"`
	DocTitle     string      `json:"docTitle"`
	Range        interface{} `json:"range,omitempty"`
	BaseRevision uint64      `json:"baseRevision"`
	ClientId     string      `json:"clientId"`
	ClientSeq    uint64      `json:"clientSeq"`
	Ops          delta.Ops   `json:"ops"`
	Content      string      `json:"content,omitempty"`
}

type PresenceMember struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username,omitempty"`
}

type ServerMessage struct {
	Type     string           `json:"type"`
	UserID   uint64           `json:"userId,omitempty"`
	DocID    string           `json:"docId,omitempty"`
	Revision uint64           `json:"revision,omitempty"`
	Members  []PresenceMember `json:"members,omitempty"`
	Cursor   interface{}      `json:"cursor,omitempty"`
	Range    interface{}      `json:"range,omitempty"`
	Content  interface{}      `json:"content,omitempty"`
}

type OpSubmitMessage struct {
	Type            string `json:"type"`
	DocID           string `json:"docId"`
	BaseRevision    uint64 `json:"baseRevision"`
	CurrentRevision uint64 `json:"currentRevision"`
	// ClientId identifies a client instance; one user may hold several
	// (multiple tabs/devices), each with its own ClientSeq counter.
	ClientId  string    `json:"clientId"`
	ClientSeq uint64    `json:"clientSeq"`
	Ops       delta.Ops `json:"ops"`
}

// OpBroadcastMessage is pushed to every other connection in the document's
// room after an op commits, so they can fold its Ops into their own local
// state — distinct from OpAppliedMessage, which is the ack sent back to the
// submitter alone. Hub.BroadcastAppliedOp fills only Type, DocID, AuthorID
// and Ops; Revision, ClientId, ClientSeq and AppliedAt stay zero.
type OpBroadcastMessage struct {
	Type      string    `json:"type"`
	DocID     string    `json:"docId"`
	Revision  uint64    `json:"revision"`
	AuthorID  uint64    `json:"authorId"`
	ClientId  string    `json:"clientId,omitempty"`
	ClientSeq uint64    `json:"clientSeq,omitempty"`
	Ops       delta.Ops `json:"ops"`
	AppliedAt time.Time `json:"appliedAt,omitempty"`
}

type OpAppliedMessage struct {
	Type            string `json:"type"`
	DocID           string `json:"docId"`
	BaseRevision    uint64 `json:"baseRevision"`
	CurrentRevision uint64 `json:"currentRevision"`
	ClientId        string `json:"clientId"`
	ClientSeq       uint64 `json:"clientSeq"`
}

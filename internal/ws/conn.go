package ws

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"

	"github.com/foliodoc/collabdoc/internal/collab"

	"github.com/gorilla/websocket"
)

// Conn is one live websocket connection: a single user/document pairing
// with its own outbound send queue, so a slow client can't block the hub's
// broadcast loop.
type Conn struct {
	ws        *websocket.Conn
	hub       *Hub
	docID     string
	userID    uint64
	username  string
	clientID  string
	clientSeq uint64
	send      chan OutboundMessage
	svc       collab.Service
	sem       *collab.SemaphoreControl
}

// OutboundMessage is anything queued on Conn.send.
type OutboundMessage interface {
	MessageType() string
}

func (m ServerMessage) MessageType() string      { return m.Type }
func (m OpSubmitMessage) MessageType() string     { return m.Type }
func (m OpAppliedMessage) MessageType() string    { return m.Type }
func (m OpBroadcastMessage) MessageType() string  { return m.Type }

func NewConn(ws *websocket.Conn, hub *Hub, docID string, userID uint64, username string, svc collab.Service, sem *collab.SemaphoreControl) *Conn {
	return &Conn{ws: ws, hub: hub, docID: docID, userID: userID, username: username, send: make(chan OutboundMessage, 32), svc: svc, sem: sem}
}

func SetDocID(c *Conn, docID string) {
	c.docID = docID
}

// SendMessageEnqueue drops msg on the floor if the connection's send queue
// is full, rather than blocking the caller (the hub's broadcast loop, or
// this connection's own read loop).
func (c *Conn) SendMessageEnqueue(msg OutboundMessage) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Conn) handleOpSubmit(ctx context.Context, msg OpSubmitMessage, authorID uint64) {
	opCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	if err := c.sem.Acquire(opCtx); err != nil {
		c.SendMessageEnqueue(ServerMessage{Type: "error", Content: err.Error()})
		return
	}
	defer c.sem.Release()

	_, err := c.svc.Submit(opCtx, msg.DocID, authorID,
		msg.BaseRevision, msg.ClientId, msg.ClientSeq, msg.Ops)
	if err != nil {
		c.SendMessageEnqueue(ServerMessage{Type: "error", Content: err.Error()})
		return
	}
	currentRevision, _ := c.svc.CurrentRevision(ctx, msg.DocID)
	c.SendMessageEnqueue(OpAppliedMessage{
		Type: "op_applied", DocID: msg.DocID, BaseRevision: msg.BaseRevision,
		CurrentRevision: currentRevision, ClientId: msg.ClientId, ClientSeq: msg.ClientSeq,
	})
	c.hub.BroadcastAppliedOp(msg.DocID, c, c.userID, msg.Ops)
}

func (c *Conn) readLoop(ctx context.Context) {
	defer close(c.send)
	for {
		var clientMessage ClientMessage
		if err := c.ws.ReadJSON(&clientMessage); err != nil {
			log.Printf("read json error (user=%d, doc=%s): %v", c.userID, c.docID, err)
			return
		}
		switch clientMessage.Type {
		case "heartbeat":
			if err := c.hub.presence.AddMember(ctx, c.docID, c.userID, c.username, 600*time.Second); err != nil {
				log.Printf("add member error: %v", err)
			}
			members, err := c.hub.presence.GetAliveMembersWithNames(ctx, c.docID)
			if err != nil {
				log.Printf("get members error: %v", err)
			}
			for _, member := range members {
				c.send <- ServerMessage{Type: "presence", Content: fmt.Sprintf("User %d(%s) is online", member.UserID, member.Username)}
			}
			c.send <- ServerMessage{Type: "feedback", Content: "heartbeat received"}

		case "createDocument":
			docTitle := clientMessage.DocTitle
			if err := c.svc.CreateDocument(ctx, c.userID, docTitle); err != nil {
				log.Printf("create document error: %v", err)
				c.send <- ServerMessage{Type: "error", Content: "CREATE_DOC_FAILED"}
				return
			}
			docID, err := c.svc.GetDocumentID(ctx, docTitle)
			if err != nil {
				log.Printf("get document id error: %v", err)
				c.send <- ServerMessage{Type: "error", Content: "GET_DOCID_FAILED"}
				return
			}
			_ = c.hub.presence.AddMember(ctx, docID, c.userID, c.username, 600*time.Second)
			c.send <- ServerMessage{Type: "createDocument", DocID: docID, Content: "document " + docID + " created by user " + strconv.FormatUint(c.userID, 10)}

		case "joinDocument":
			// Clients may switch rooms by specifying DocTitle again here.
			if clientMessage.DocTitle != "" {
				docID, err := c.svc.GetDocumentID(ctx, clientMessage.DocTitle)
				if err != nil {
					log.Printf("get document id error: %v", err)
					c.send <- ServerMessage{Type: "error", Content: "GET_DOCID_FAILED"}
					continue
				}
				if c.docID != "" && c.docID != docID {
					c.hub.Leave(c.docID, c)
				}
				c.docID = docID
				SetDocID(c, c.docID)
			}

			documents, err := c.hub.presence.GetDocuments(ctx)
			if err != nil {
				log.Printf("get documents error: %v", err)
			}
			if !slices.Contains(documents, c.docID) {
				c.send <- ServerMessage{Type: "joinDocument", DocID: c.docID, Content: "document " + c.docID + " not found"}
				continue
			}
			c.hub.Join(c.docID, c)
			_ = c.hub.presence.AddMember(ctx, c.docID, c.userID, c.username, 600*time.Second)
			c.send <- ServerMessage{Type: "joinDocument", DocID: c.docID, Content: "document " + c.docID + " joined by user " + strconv.FormatUint(c.userID, 10)}

		case "show_alive_members":
			members, err := c.hub.presence.GetAliveMembersWithNames(ctx, c.docID)
			if err != nil {
				log.Printf("get alive members error: %v", err)
			}
			memberNames := make([]PresenceMember, len(members))
			for i, m := range members {
				memberNames[i] = PresenceMember{UserID: m.UserID, Username: m.Username}
			}
			c.send <- ServerMessage{Type: "show_alive_members", Members: memberNames}

		case "op_submit":
			msg := OpSubmitMessage{
				Type:         clientMessage.Type,
				DocID:        clientMessage.DocID,
				BaseRevision: clientMessage.BaseRevision,
				ClientId:     clientMessage.ClientId,
				ClientSeq:    clientMessage.ClientSeq,
				Ops:          clientMessage.Ops,
			}
			c.handleOpSubmit(ctx, msg, c.userID)

		case "saveDocument":
			if err := c.svc.SaveSnapshot(ctx, clientMessage.DocID); err != nil {
				log.Printf("save document error: %v", err)
				c.send <- ServerMessage{Type: "saveDocument", Content: "document " + clientMessage.DocID + " save failed"}
				continue
			}
			c.send <- ServerMessage{Type: "saveDocument", Content: "document " + clientMessage.DocID + " saved"}

		case "loadDocumentContent":
			content, revision, err := c.svc.LoadDocumentContent(ctx, clientMessage.DocID)
			if err != nil {
				log.Printf("load document content error: %v", err)
				c.send <- ServerMessage{Type: "error", Content: "LOAD_CONTENT_FAILED"}
				continue
			}
			c.send <- ServerMessage{Type: "loadDocumentContent", Content: content, Revision: revision}

		default:
			c.send <- ServerMessage{Type: "ignored", Content: "unknown message type"}
		}
	}
}

func (c *Conn) writeLoop() {
	for msg := range c.send {
		_ = c.ws.WriteJSON(msg)
	}
}

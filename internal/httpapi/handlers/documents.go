// Package handlers implements the HTTP surface: document lifecycle and
// login/register, both backed by the real collab.Service and store package
// rather than an in-memory placeholder map.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/foliodoc/collabdoc/internal/collab"

	"github.com/gin-gonic/gin"
)

type Documents struct {
	svc collab.Service
}

func NewDocuments(svc collab.Service) *Documents {
	return &Documents{svc: svc}
}

type createDocumentReq struct {
	Title string `json:"title" binding:"required"`
}

func (h *Documents) Create(c *gin.Context) {
	ownerID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.svc.CreateDocument(ctx, ownerID, req.Title); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	docID, err := h.svc.GetDocumentID(ctx, req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"docId": docID, "ownerId": ownerID, "title": req.Title})
}

func (h *Documents) Get(c *gin.Context) {
	docID := c.Param("documentID")
	if docID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document id missing"})
		return
	}

	content, revision, err := h.svc.LoadDocumentContent(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, collab.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"docId": docID, "revision": revision, "content": content})
}

func (h *Documents) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("userId")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

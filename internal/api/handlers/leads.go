// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siftlabs/leadsift/internal/api/middleware"
	"github.com/siftlabs/leadsift/internal/database"
)

func (h *Handler) ListLeadsHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	leads, err := h.DB.ListLeadsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": toLeadResponses(leads)})
}

func (h *Handler) ListPostLeadsHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid post id"})
		return
	}

	leads, err := h.DB.ListLeadsForPost(c.Request.Context(), database.ListLeadsForPostParams{
		PostID: postID,
		UserID: userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": toLeadResponses(leads)})
}

type updateTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// UpdateLeadTagsHandler assigns user tags to a lead. Tagging happens after
// enrichment; the pipeline itself never touches tags.
func (h *Handler) UpdateLeadTagsHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid lead id"})
		return
	}

	var req updateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "tags are required"})
		return
	}

	lead, err := h.DB.UpdateLeadTags(c.Request.Context(), database.UpdateLeadTagsParams{
		ID:     leadID,
		UserID: userID,
		Tags:   req.Tags,
	})
	if errors.Is(err, database.ErrLeadNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "lead not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toLeadResponse(lead))
}

type markExportedRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// MarkLeadsExportedHandler lets the export collaborator flag consumed leads.
func (h *Handler) MarkLeadsExportedHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	var req markExportedRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "lead ids are required"})
		return
	}

	if err := h.DB.MarkLeadsExported(c.Request.Context(), database.MarkLeadsExportedParams{
		UserID: userID,
		IDs:    req.IDs,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

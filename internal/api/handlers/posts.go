// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siftlabs/leadsift/internal/api/middleware"
	"github.com/siftlabs/leadsift/internal/database"
	"github.com/siftlabs/leadsift/internal/enrich"
	"github.com/siftlabs/leadsift/internal/provider"
)

type createPostRequest struct {
	URL string `json:"url" binding:"required"`
}

// CreatePostHandler accepts a public post URL, creates the post in pending
// state and triggers enrichment asynchronously. The caller polls the post's
// status afterwards.
func (h *Handler) CreatePostHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "url is required"})
		return
	}

	platform, err := detectPlatform(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	prov, err := h.Registry.Get(platform)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	postID, err := prov.ExtractPostID(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	post, err := h.DB.CreatePost(c.Request.Context(), database.CreatePostParams{
		ID:        uuid.New(),
		URL:       req.URL,
		Platform:  platform,
		PostID:    postID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(enrich.LeadTTL),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.triggerProcessing(post.ID)

	c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *Handler) ListPostsHandler(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "user not resolved"})
		return
	}

	posts, err := h.DB.ListPostsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": toPostResponses(posts)})
}

func (h *Handler) GetPostHandler(c *gin.Context) {
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

	post, err := h.DB.GetPostForUser(c.Request.Context(), database.GetPostForUserParams{
		ID:     postID,
		UserID: userID,
	})
	if errors.Is(err, database.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toPostResponse(post))
}

// ProcessPostHandler retriggers enrichment for a post. Posts already being
// processed or already completed are refused.
func (h *Handler) ProcessPostHandler(c *gin.Context) {
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

	post, err := h.DB.GetPostForUser(c.Request.Context(), database.GetPostForUserParams{
		ID:     postID,
		UserID: userID,
	})
	if errors.Is(err, database.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	switch post.Status {
	case database.PostStatusProcessing:
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "post is already being processed"})
		return
	case database.PostStatusCompleted:
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "post has already been processed"})
		return
	}

	h.triggerProcessing(post.ID)

	c.JSON(http.StatusAccepted, gin.H{"status": "ok", "message": "post processing started", "postId": post.ID})
}

func (h *Handler) triggerProcessing(postID uuid.UUID) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.Logger.Errorw("panic in enrichment trigger", "post_id", postID, "panic", r)
			}
		}()
		// The enricher records failures on the post record itself.
		_ = h.Enricher.ProcessPost(context.Background(), postID)
	}()
}

func detectPlatform(url string) (string, error) {
	switch {
	case strings.Contains(url, "linkedin.com"):
		return "linkedin", nil
	case strings.Contains(url, "instagram.com"):
		return "instagram", nil
	case strings.Contains(url, "twitter.com"), strings.Contains(url, "x.com"):
		return "twitter", nil
	default:
		return "", fmt.Errorf("%w: unrecognized post URL", provider.ErrUnsupportedPlatform)
	}
}

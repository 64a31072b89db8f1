package handlers

import (
	"github.com/certcast/core/internal/services"
	"github.com/gin-gonic/gin"
)

// PostHandler handles post generation and publishing
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Generate creates draft posts for a certificate
// POST /api/posts/generate
func (h *PostHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "certificate_id and platform are required")
		return
	}

	posts, err := h.postService.Generate(req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

// Publish publishes a draft post to its platform
// POST /api/posts/:id/publish
func (h *PostHandler) Publish(c *gin.Context) {
	id := c.Param("id")
	result, err := h.postService.Publish(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ListPosts returns all generated posts, newest first
// GET /api/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"posts": posts,
		"total": len(posts),
	})
}

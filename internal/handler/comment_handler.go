package handler

import (
	"net/http"

	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type CommentRequest struct {
	Content string `json:"content"`
}

// ListByPost handles GET /api/posts/:id/comments
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create handles POST /api/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.CurrentIdentity(c), postID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Delete handles DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

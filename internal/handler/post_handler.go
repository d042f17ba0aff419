package handler

import (
	"net/http"
	"strconv"

	"github.com/Baaaki/inkwell/internal/apperr"
	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/posts?status=&all=
func (h *PostHandler) List(c *gin.Context) {
	filter := service.PostListFilter{Status: c.Query("status")}
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperr.Validation("invalid value for all"))
			return
		}
		filter.All = all
	}

	posts, err := h.postService.List(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.postService.Get(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), middleware.CurrentIdentity(c), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.ChangeStatus(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

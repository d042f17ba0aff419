package handler

import (
	"net/http"

	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	userService  *service.UserService
	statsService *service.StatsService
}

func NewAdminHandler(userService *service.UserService, statsService *service.StatsService) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		statsService: statsService,
	}
}

type RoleRequest struct {
	Role string `json:"role"`
}

// ListUsers returns every account
// GET /api/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ChangeRole promotes or demotes a user
// PATCH /api/users/:id/role
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := middleware.CurrentIdentity(c)
	logger.Log.Info("Admin changing user role",
		zap.Uint("admin_id", identity.ID),
		zap.Uint("target_user_id", id),
		zap.String("role", req.Role),
	)

	user, err := h.userService.ChangeRole(c.Request.Context(), identity, id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user with all their content
// DELETE /api/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	identity := middleware.CurrentIdentity(c)
	logger.Log.Info("Admin deleting user",
		zap.Uint("admin_id", identity.ID),
		zap.Uint("target_user_id", id),
	)

	if err := h.userService.Delete(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Stats GET /api/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Get(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AuditLog GET /api/admin/audit
func (h *AdminHandler) AuditLog(c *gin.Context) {
	entries, err := h.userService.AuditLog(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

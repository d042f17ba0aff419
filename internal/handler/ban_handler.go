package handler

import (
	"net/http"

	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/service"
	"github.com/gin-gonic/gin"
)

type BanHandler struct {
	banService *service.BanService
}

func NewBanHandler(banService *service.BanService) *BanHandler {
	return &BanHandler{banService: banService}
}

type BanRequest struct {
	IP string `json:"ip"`
}

// Ban POST /api/admin/bans
func (h *BanHandler) Ban(c *gin.Context) {
	var req BanRequest
	if !bindJSON(c, &req) {
		return
	}

	ip, err := h.banService.Ban(c.Request.Context(), middleware.CurrentIdentity(c), req.IP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ip": ip})
}

// Unban DELETE /api/admin/bans/:ip
func (h *BanHandler) Unban(c *gin.Context) {
	ip, err := h.banService.Unban(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("ip"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "IP unbanned", "ip": ip})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"phonegate/internal/i18n"
	"phonegate/internal/middleware"
	"phonegate/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
	Lang  string
}

func NewAdminHandler(admin *services.AdminService, lang string) *AdminHandler {
	return &AdminHandler{Admin: admin, Lang: lang}
}

// OverridePhone sets a user's phone number and marks it verified.
func (h *AdminHandler) OverridePhone(c *gin.Context) {
	p := printer(c, h.Lang)
	var req struct {
		UserID      int    `json:"user_id" form:"user_id" binding:"required"`
		PhoneNumber string `json:"phone_number" form:"phone_number" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, p, err)
		return
	}

	err := h.Admin.OverridePhone(c.Request.Context(), middleware.UserID(c), req.UserID, req.PhoneNumber)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgOverrideDone)})
	case errors.Is(err, services.ErrNoPhone):
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgPhoneNotFound)})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": p.Sprintf(i18n.MsgUserNotFound)})
	default:
		zap.L().Error("Admin phone override failed", zap.Int("userID", req.UserID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgGenericError)})
	}
}

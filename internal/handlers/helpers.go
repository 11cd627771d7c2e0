package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"phonegate/internal/i18n"
	"phonegate/internal/middleware"
	"phonegate/internal/models"
)

// printer honours Accept-Language and falls back to the deployment language.
func printer(c *gin.Context, lang string) *message.Printer {
	return i18n.Printer(c.GetHeader("Accept-Language"), lang)
}

// requireUser writes 401 and returns false for anonymous callers.
func requireUser(c *gin.Context, p *message.Printer) (int, bool) {
	userID := middleware.UserID(c)
	if userID == models.AnonymousUserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": p.Sprintf(i18n.MsgUserNotFound)})
		return 0, false
	}
	return userID, true
}

// invalidRequest answers a bind failure; the binder's text stays in the logs.
func invalidRequest(c *gin.Context, p *message.Printer, err error) {
	zap.L().Debug("Rejected request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgInvalidRequest)})
}

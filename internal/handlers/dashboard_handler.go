package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phonegate/internal/middleware"
)

// Dashboard stands in for the protected content of the host application.
func Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": middleware.UserID(c), "page": "dashboard"})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"phonegate/internal/i18n"
	"phonegate/internal/middleware"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
	"phonegate/internal/services"
)

// UserHandler serves the profile pages that stay reachable while a phone is
// unverified, plus logout.
type UserHandler struct {
	Users   repositories.UserDirectory
	Store   repositories.VerificationStore
	Account *services.ProfileService
	Lang    string
}

func NewUserHandler(users repositories.UserDirectory, store repositories.VerificationStore, profile *services.ProfileService, lang string) *UserHandler {
	return &UserHandler{Users: users, Store: store, Account: profile, Lang: lang}
}

func (h *UserHandler) Profile(c *gin.Context) {
	p := printer(c, h.Lang)
	userID, ok := requireUser(c, p)
	if !ok {
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": p.Sprintf(i18n.MsgUserNotFound)})
		return
	}
	if err != nil {
		zap.L().Error("Failed to load profile", zap.Int("userID", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgGenericError)})
		return
	}

	resp := gin.H{"id": u.ID, "phone_verified": false}
	if phone, ok := u.Phone(); ok {
		resp["phone"] = models.MaskPhone(phone)
		rec, err := h.Store.GetLatest(c.Request.Context(), phone)
		if err != nil {
			zap.L().Warn("Failed to load verification status", zap.Int("userID", userID), zap.Error(err))
		}
		resp["phone_verified"] = rec.IsVerified()
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePhone changes the number on file. A new number has no verification
// row yet, so the gate issues a code on the next protected request.
func (h *UserHandler) UpdatePhone(c *gin.Context) {
	p := printer(c, h.Lang)
	userID, ok := requireUser(c, p)
	if !ok {
		return
	}
	var req struct {
		PhoneNumber string `json:"phone_number" form:"phone_number"`
	}
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, p, err)
		return
	}

	err := h.Account.ChangePhone(c.Request.Context(), userID, req.PhoneNumber)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgPhoneUpdated)})
	case errors.Is(err, services.ErrNoPhone):
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgPhoneRequired)})
	case errors.Is(err, services.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": p.Sprintf(i18n.MsgPhoneTaken)})
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": p.Sprintf(i18n.MsgUserNotFound)})
	default:
		zap.L().Error("Failed to update phone number", zap.Int("userID", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgGenericError)})
	}
}

func (h *UserHandler) LogoutConfirm(c *gin.Context) {
	p := printer(c, h.Lang)
	c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgLogoutConfirm)})
}

// Logout drops the cookies this service knows about; tokens themselves are
// stateless and expire on their own.
func (h *UserHandler) Logout(c *gin.Context) {
	p := printer(c, h.Lang)
	c.SetCookie(middleware.AccessCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.DestinationCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgLoggedOut)})
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"phonegate/internal/i18n"
	"phonegate/internal/middleware"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
	"phonegate/internal/services"
)

const (
	OpVerify = "verify_otp"
	OpResend = "send_otp"
)

type VerifyHandler struct {
	Users       repositories.UserDirectory
	Verifier    *services.OTPVerifier
	Issuer      *services.CodeIssuer
	LandingPath string
	Lang        string
}

func NewVerifyHandler(users repositories.UserDirectory, v *services.OTPVerifier, iss *services.CodeIssuer, landingPath, lang string) *VerifyHandler {
	return &VerifyHandler{Users: users, Verifier: v, Issuer: iss, LandingPath: landingPath, Lang: lang}
}

type verifyRequest struct {
	OTPCode string `form:"otp_code" json:"otp_code"`
	Op      string `form:"op" json:"op"`
}

// currentPhone loads the caller's phone; on failure the response is already written.
func (h *VerifyHandler) currentPhone(c *gin.Context, p *message.Printer) (string, bool) {
	userID, ok := requireUser(c, p)
	if !ok {
		return "", false
	}
	u, err := h.Users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": p.Sprintf(i18n.MsgUserNotFound)})
		return "", false
	}
	if err != nil {
		zap.L().Error("Failed to load user", zap.Int("userID", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgGenericError)})
		return "", false
	}
	phone, ok := u.Phone()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgPhoneNotFound)})
		return "", false
	}
	return phone, true
}

// ShowForm describes the verification page. The code itself is never part of it.
func (h *VerifyHandler) ShowForm(c *gin.Context) {
	p := printer(c, h.Lang)
	phone, ok := h.currentPhone(c, p)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"info":    p.Sprintf(i18n.MsgCodeSentInfo),
		"phone":   p.Sprintf(i18n.MsgYourPhone, models.MaskPhone(phone)),
		"actions": []string{OpVerify, OpResend},
	})
}

// Submit handles both buttons of the form: verify_otp (default) and send_otp.
func (h *VerifyHandler) Submit(c *gin.Context) {
	p := printer(c, h.Lang)

	var req verifyRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, p, err)
		return
	}
	phone, ok := h.currentPhone(c, p)
	if !ok {
		return
	}

	switch strings.TrimSpace(req.Op) {
	case "", OpVerify:
		h.verify(c, p, phone, req.OTPCode)
	case OpResend:
		h.resend(c, p, phone)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgUnknownAction)})
	}
}

func (h *VerifyHandler) verify(c *gin.Context, p *message.Printer, phone, code string) {
	if strings.TrimSpace(code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgCodeRequired)})
		return
	}

	outcome, err := h.Verifier.Verify(c.Request.Context(), phone, code)
	if err != nil {
		zap.L().Error("Phone verification failed", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgGenericError)})
		return
	}

	switch outcome {
	case services.VerifySuccess:
		dest := middleware.TakeDestination(c, h.LandingPath)
		if strings.Contains(c.GetHeader("Accept"), "application/json") {
			c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgVerified), "redirect": dest})
			return
		}
		c.Redirect(http.StatusSeeOther, dest)
	case services.VerifyNoRecord:
		c.JSON(http.StatusNotFound, gin.H{"error": p.Sprintf(i18n.MsgCodeNotFound)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": p.Sprintf(i18n.MsgWrongCode)})
	}
}

func (h *VerifyHandler) resend(c *gin.Context, p *message.Printer, phone string) {
	out, err := h.Issuer.Issue(c.Request.Context(), phone)
	if err != nil {
		zap.L().Error("Failed to resend verification code", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": p.Sprintf(i18n.MsgResendFailed)})
		return
	}
	if !out.Delivered {
		c.JSON(http.StatusBadGateway, gin.H{"error": p.Sprintf(i18n.MsgDeliveryDeferred)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": p.Sprintf(i18n.MsgCodeResent)})
}

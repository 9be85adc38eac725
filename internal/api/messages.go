package api

import (
	"net/http"

	"crm-gateway/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

type WhatsAppHandler struct {
	Client *whatsapp.Client
}

func NewWhatsAppHandler(client *whatsapp.Client) *WhatsAppHandler {
	return &WhatsAppHandler{Client: client}
}

// statusFor maps a failed send onto an HTTP status. The result body carries
// the machine-readable category and retry hint either way.
func statusFor(result whatsapp.SendResult) int {
	switch result.ErrorCategory {
	case whatsapp.ErrConfiguration, whatsapp.ErrValidation, whatsapp.ErrInvalidPhone,
		whatsapp.ErrTemplate, whatsapp.ErrPolicyViolation:
		return http.StatusBadRequest
	case whatsapp.ErrAuthentication:
		return http.StatusUnauthorized
	case whatsapp.ErrRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func respondSend(c *gin.Context, result whatsapp.SendResult) {
	if result.Success {
		respondOK(c, http.StatusOK, result)
		return
	}
	c.JSON(statusFor(result), gin.H{"success": false, "data": result, "error": result.ErrorMessage})
}

type SendTextRequest struct {
	To          string `json:"to" binding:"required"`
	Body        string `json:"body" binding:"required"`
	MaxAttempts int    `json:"max_attempts"`
}

func (h *WhatsAppHandler) SendText(c *gin.Context) {
	var req SendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	var result whatsapp.SendResult
	if req.MaxAttempts > 1 {
		result = h.Client.SendTextWithRetry(c.Request.Context(), req.To, req.Body, req.MaxAttempts)
	} else {
		result = h.Client.SendText(c.Request.Context(), req.To, req.Body)
	}
	respondSend(c, result)
}

type SendTemplateRequest struct {
	To           string            `json:"to" binding:"required"`
	TemplateName string            `json:"template_name" binding:"required"`
	Language     string            `json:"language"`
	Params       map[string]string `json:"params"`
}

func (h *WhatsAppHandler) SendTemplate(c *gin.Context) {
	var req SendTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	result := h.Client.SendTemplate(c.Request.Context(), req.To, req.TemplateName, req.Language, req.Params)
	respondSend(c, result)
}

type SendDocumentRequest struct {
	To       string `json:"to" binding:"required"`
	Link     string `json:"link" binding:"required"`
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
}

func (h *WhatsAppHandler) SendDocument(c *gin.Context) {
	var req SendDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	result := h.Client.SendDocument(c.Request.Context(), req.To, req.Link, req.Filename, req.Caption)
	respondSend(c, result)
}

type SendBulkRequest struct {
	Messages []whatsapp.BulkMessage `json:"messages" binding:"required"`
}

func (h *WhatsAppHandler) SendBulk(c *gin.Context) {
	var req SendBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	report := h.Client.SendBulk(c.Request.Context(), req.Messages)
	respondOK(c, http.StatusOK, report)
}

func (h *WhatsAppHandler) SessionStatus(c *gin.Context) {
	if err := h.Client.ValidateSession(c.Request.Context()); err != nil {
		respondErr(c, http.StatusUnauthorized, err.Error())
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "valid"})
}

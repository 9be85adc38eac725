package api

import (
	"encoding/json"
	"log"
	"net/http"

	"crm-gateway/internal/config"
	"crm-gateway/internal/database"
	"crm-gateway/internal/models"
	"crm-gateway/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	Client *whatsapp.Client
	Config *config.Config
}

func NewTemplateHandler(client *whatsapp.Client, cfg *config.Config) *TemplateHandler {
	return &TemplateHandler{Client: client, Config: cfg}
}

// GetTemplates returns the locally cached templates.
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	var templates []models.Template
	if err := database.GormDB.Find(&templates).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, templates)
}

// SyncTemplates fetches templates from Meta and upserts them locally so the
// reminder flow can pick from approved templates without hitting the API.
func (h *TemplateHandler) SyncTemplates(c *gin.Context) {
	if h.Config.WhatsAppBusinessAccountID == "" {
		respondErr(c, http.StatusBadRequest, "WABA_ID not configured")
		return
	}

	rawTemplates, err := h.Client.GetTemplates(c.Request.Context())
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "Failed to fetch templates from Meta: "+err.Error())
		return
	}

	data, ok := rawTemplates["data"].([]interface{})
	if !ok {
		respondOK(c, http.StatusOK, gin.H{"status": "No templates found", "count": 0})
		return
	}

	syncedCount := 0
	for _, item := range data {
		tmpl, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		id, _ := tmpl["id"].(string)
		name, _ := tmpl["name"].(string)
		if id == "" || name == "" {
			continue
		}
		language, _ := tmpl["language"].(string)
		category, _ := tmpl["category"].(string)
		status, _ := tmpl["status"].(string)

		componentsJSON := "[]"
		if components, ok := tmpl["components"]; ok {
			if compBytes, err := json.Marshal(components); err == nil {
				componentsJSON = string(compBytes)
			}
		}

		template := models.Template{
			ID:         id,
			Name:       name,
			Language:   language,
			Category:   category,
			Status:     status,
			Components: componentsJSON,
		}
		if err := database.GormDB.Save(&template).Error; err != nil {
			log.Printf("Error saving template %s: %v", name, err)
			continue
		}
		syncedCount++
	}

	respondOK(c, http.StatusOK, gin.H{"status": "Templates synced", "count": syncedCount})
}

// GetMessageLogs lists the send audit trail, newest first.
func GetMessageLogs(c *gin.Context) {
	var logs []models.MessageLog
	query := database.GormDB.Order("created_at DESC").Limit(200)
	if phoneNumber := c.Query("phone"); phoneNumber != "" {
		query = query.Where("phone_number = ?", phoneNumber)
	}
	if err := query.Find(&logs).Error; err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, logs)
}

package main

import (
	"log"

	"crm-gateway/internal/api"
	"crm-gateway/internal/audit"
	"crm-gateway/internal/config"
	"crm-gateway/internal/database"
	"crm-gateway/internal/reconcile"
	"crm-gateway/internal/store"
	"crm-gateway/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	database.InitDB(cfg)
	database.SyncConfig(cfg)

	auditWriter := audit.NewWriter(database.GormDB, cfg.AuditQueueSize)
	defer auditWriter.Close()

	contactStore := store.NewContactStore(database.GormDB)
	whatsappClient := whatsapp.NewClient(cfg, auditWriter)
	engine := reconcile.NewEngine(contactStore)

	contactHandler := api.NewContactHandler(contactStore)
	importHandler := api.NewImportHandler(engine)
	whatsappHandler := api.NewWhatsAppHandler(whatsappClient)
	templateHandler := api.NewTemplateHandler(whatsappClient, cfg)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	apiGroup := r.Group("/api")
	{
		// CRM Routes
		apiGroup.GET("/contacts", contactHandler.GetContacts)
		apiGroup.POST("/contacts", contactHandler.CreateContact)
		apiGroup.PUT("/contacts/:id", contactHandler.UpdateContact)
		apiGroup.GET("/contacts/export", contactHandler.ExportContacts)

		// Import / Reconciliation Routes
		apiGroup.POST("/imports/map", importHandler.MapRows)
		apiGroup.POST("/imports/resolve", importHandler.Resolve)
		apiGroup.POST("/imports/commit", importHandler.Commit)

		// Template Routes
		apiGroup.GET("/templates", templateHandler.GetTemplates)
		apiGroup.POST("/templates/sync", templateHandler.SyncTemplates)

		// Message Log Routes
		apiGroup.GET("/messages", api.GetMessageLogs)

		// WhatsApp Routes
		whatsappGroup := apiGroup.Group("/whatsapp")
		{
			whatsappGroup.POST("/send", whatsappHandler.SendText)
			whatsappGroup.POST("/send-template", whatsappHandler.SendTemplate)
			whatsappGroup.POST("/send-document", whatsappHandler.SendDocument)
			whatsappGroup.POST("/send-bulk", whatsappHandler.SendBulk)
			whatsappGroup.GET("/session", whatsappHandler.SessionStatus)
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

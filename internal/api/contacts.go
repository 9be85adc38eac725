package api

import (
	"fmt"
	"net/http"
	"strconv"

	"crm-gateway/internal/phone"
	"crm-gateway/internal/store"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	Store *store.ContactStore
}

func NewContactHandler(s *store.ContactStore) *ContactHandler {
	return &ContactHandler{Store: s}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	contacts, err := h.Store.List()
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, contacts)
}

type CreateContactRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Location    string `json:"location"`
	ExternalRef string `json:"external_ref"`
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	if v := phone.Validate(req.Phone); !v.IsValid {
		respondErr(c, http.StatusBadRequest, v.Error)
		return
	}

	contact, err := h.Store.Create(req.Name, req.Phone, map[string]string{
		"location":     req.Location,
		"external_ref": req.ExternalRef,
	})
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "Failed to create contact: "+err.Error())
		return
	}
	respondOK(c, http.StatusCreated, contact)
}

type UpdateContactRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	ExternalRef *string `json:"external_ref"`
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondErr(c, http.StatusBadRequest, "Invalid contact id")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		if v := phone.Validate(*req.Phone); !v.IsValid {
			respondErr(c, http.StatusBadRequest, v.Error)
			return
		}
		fields["phone"] = *req.Phone
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.ExternalRef != nil {
		fields["external_ref"] = *req.ExternalRef
	}
	if len(fields) == 0 {
		respondErr(c, http.StatusBadRequest, "No fields to update")
		return
	}

	contact, err := h.Store.Update(uint(id), fields)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "Failed to update contact: "+err.Error())
		return
	}
	respondOK(c, http.StatusOK, contact)
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	contacts, err := h.Store.List()
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	csv := "ID,Name,Phone,Location,External Ref,Created At\n"
	for _, contact := range contacts {
		csv += fmt.Sprintf("%d,%s,%s,%s,%s,%s\n",
			contact.ID, contact.Name, phone.DisplayFormat(contact.Phone),
			contact.Location, contact.ExternalRef, contact.CreatedAt.Format("2006-01-02"))
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.String(http.StatusOK, csv)
}

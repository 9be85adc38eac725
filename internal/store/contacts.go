// Package store is the GORM-backed contact collaborator consumed by the
// reconciliation engine and the API layer.
package store

import (
	"fmt"
	"regexp"

	"crm-gateway/internal/models"
	"crm-gateway/internal/phone"

	"gorm.io/gorm"
)

var digitsOnly = regexp.MustCompile(`\D`)

// ContactStore reads and writes contacts. Updates are last-write-wins: there
// is no optimistic locking, which is acceptable for operator-triggered
// imports.
type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) List() ([]models.Contact, error) {
	var contacts []models.Contact
	if err := s.db.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *ContactStore) Get(id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create rejects contacts without a name or with fewer than ten phone digits.
// The phone is stored normalized.
func (s *ContactStore) Create(name, phoneRaw string, extra map[string]string) (*models.Contact, error) {
	if name == "" {
		return nil, fmt.Errorf("contact name is required")
	}
	digits := digitsOnly.ReplaceAllString(phoneRaw, "")
	if len(digits) < 10 {
		return nil, fmt.Errorf("contact phone must have at least 10 digits")
	}

	contact := models.Contact{
		Name:        name,
		Phone:       phone.Normalize(phoneRaw),
		Location:    extra["location"],
		ExternalRef: extra["external_ref"],
	}
	if err := s.db.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *ContactStore) Update(id uint, fields map[string]interface{}) (*models.Contact, error) {
	if raw, ok := fields["phone"].(string); ok {
		fields["phone"] = phone.Normalize(raw)
	}

	result := s.db.Model(&models.Contact{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("contact %d not found", id)
	}
	return s.Get(id)
}

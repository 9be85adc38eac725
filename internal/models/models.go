package models

import (
	"time"
)

// Contact represents a customer in the CRM.
// Phone, when present, is stored normalized (country-code-inclusive digits).
type Contact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string    `gorm:"type:varchar(20);index" json:"phone"`
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	ExternalRef string    `gorm:"type:varchar(255)" json:"external_ref"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// MessageLog is the audit record written for every send attempt.
type MessageLog struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	PhoneNumber       string     `gorm:"type:varchar(20);index" json:"phone_number"`
	MessageContent    string     `gorm:"type:text" json:"message_content"`
	MessageType       string     `gorm:"type:varchar(50)" json:"message_type"`
	Status            string     `gorm:"type:varchar(20)" json:"status"`
	WhatsAppMessageID string     `gorm:"type:varchar(255)" json:"whatsapp_message_id"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	SentAt            *time.Time `json:"sent_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}

// Template represents a WhatsApp message template cached from Meta
type Template struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"type:varchar(255)" json:"name"`
	Language   string `gorm:"type:varchar(50)" json:"language"`
	Category   string `gorm:"type:varchar(100)" json:"category"`
	Status     string `gorm:"type:varchar(50)" json:"status"`
	Components string `gorm:"type:text" json:"components"` // JSON components
}

func (Template) TableName() string {
	return "templates"
}

// Invoice is the accounting stub the payment-reminder flow reads from.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContactID uint      `gorm:"index" json:"contact_id"`
	Reference string    `gorm:"type:varchar(100)" json:"reference"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
	Status    string    `gorm:"type:varchar(20);default:'open'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// SystemSetting persists configuration values in the database
type SystemSetting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

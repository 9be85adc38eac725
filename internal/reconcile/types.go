package reconcile

import (
	"crm-gateway/internal/models"
)

// Confidence is the strength of a reconciliation match.
type Confidence string

const (
	ConfidenceExact Confidence = "exact"
	ConfidenceFuzzy Confidence = "fuzzy"
	ConfidenceNone  Confidence = "none"
)

// Conflict marks a detected disagreement between imported and stored data.
type Conflict string

const (
	ConflictNone          Conflict = ""
	ConflictNameMismatch  Conflict = "name_mismatch"
	ConflictPhoneMismatch Conflict = "phone_mismatch"
	ConflictNoMatch       Conflict = "no_match"
)

// Source records which side supplied the final name/phone.
type Source string

const (
	SourceContactDB Source = "contact_db"
	SourceImported  Source = "imported"
	SourceManual    Source = "manual"
)

// ImportedRow is one parsed spreadsheet row. RowNum is 1-based and only used
// for diagnostics.
type ImportedRow struct {
	Name   string            `json:"name"`
	Phone  string            `json:"phone"`
	Extra  map[string]string `json:"extra,omitempty"`
	RowNum int               `json:"row_num"`
}

// MappingResult is the reconciliation outcome for one imported row.
// FinalName and FinalPhone are always populated (possibly empty strings), so
// downstream consumers never need nil checks.
type MappingResult struct {
	RowNum        int             `json:"row_num"`
	ImportedName  string          `json:"imported_name"`
	ImportedPhone string          `json:"imported_phone"`
	Contact       *models.Contact `json:"contact,omitempty"`
	Confidence    Confidence      `json:"confidence"`
	Conflict      Conflict        `json:"conflict,omitempty"`
	Source        Source          `json:"source"`
	FinalName     string          `json:"final_name"`
	FinalPhone    string          `json:"final_phone"`
	NeedsCreation bool            `json:"needs_creation"`
}

// BatchStats aggregates the phone propagation pass for batch-level reporting.
type BatchStats struct {
	AutoLinked         int `json:"auto_linked"`
	Validated          int `json:"validated"`
	Propagated         int `json:"propagated"`
	ValidationFailures int `json:"validation_failures"`
}

// PersistStats aggregates the batch persistence pass.
type PersistStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// MappingReport is the result of reconciling one import batch.
type MappingReport struct {
	BatchID string           `json:"batch_id"`
	Results []*MappingResult `json:"results"`
	Stats   BatchStats       `json:"stats"`
}

// ResolveStrategy selects how an operator overrides a conflicting row.
type ResolveStrategy string

const (
	ResolveKeepContact ResolveStrategy = "keep_contact"
	ResolveUseImported ResolveStrategy = "use_imported"
	ResolveManualEdit  ResolveStrategy = "manual_edit"
)

// ContactStore is the external contact collaborator. The engine consumes it;
// it does not define the storage engine.
type ContactStore interface {
	List() ([]models.Contact, error)
	Create(name, phone string, extra map[string]string) (*models.Contact, error)
	Update(id uint, fields map[string]interface{}) (*models.Contact, error)
}

// Package reconcile matches imported spreadsheet rows against the contact
// database and decides, per row, whether to link, create or update a contact.
package reconcile

import (
	"fmt"
	"log"
	"regexp"

	"crm-gateway/internal/match"
	"crm-gateway/internal/models"
	"crm-gateway/internal/phone"

	"github.com/google/uuid"
)

var digitsOnly = regexp.MustCompile(`\D`)

type Engine struct {
	store ContactStore
}

func NewEngine(store ContactStore) *Engine {
	return &Engine{store: store}
}

// MapRows reconciles a batch of imported rows against the current contact
// list. A failure in one row never aborts the batch: that row is downgraded
// to a no-match result carrying the raw imported data.
func (e *Engine) MapRows(rows []ImportedRow) (*MappingReport, error) {
	contacts, err := e.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	report := &MappingReport{
		BatchID: uuid.NewString(),
		Results: make([]*MappingResult, 0, len(rows)),
	}

	for _, row := range rows {
		result := e.mapRowSafe(row, contacts)
		report.Results = append(report.Results, result)
	}

	return report, nil
}

func (e *Engine) mapRowSafe(row ImportedRow, contacts []models.Contact) (result *MappingResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Row %d mapping failed: %v", row.RowNum, r)
			result = noMatchResult(row)
		}
	}()
	return e.mapRow(row, contacts)
}

func (e *Engine) mapRow(row ImportedRow, contacts []models.Contact) *MappingResult {
	importedPhone := phone.Normalize(row.Phone)

	// Phone-first pass: an exact normalized-phone match wins outright.
	for i := range contacts {
		c := &contacts[i]
		if c.Phone == "" || !phone.Equal(c.Phone, row.Phone) {
			continue
		}

		result := matchedResult(row, c)
		if match.Similarity(row.Name, c.Name) >= match.ExactNameThreshold {
			result.Confidence = ConfidenceExact
		} else {
			result.Confidence = ConfidenceFuzzy
			result.Conflict = ConflictNameMismatch
		}
		return result
	}

	// Name fallback: best similarity at or above the fuzzy threshold.
	// Ties keep the first-encountered candidate so mapping stays
	// deterministic for a given contact list order.
	var best *models.Contact
	bestScore := 0.0
	for i := range contacts {
		c := &contacts[i]
		score := match.Similarity(row.Name, c.Name)
		if score >= match.FuzzyThreshold && score > bestScore {
			best = c
			bestScore = score
		}
	}
	if best != nil {
		result := matchedResult(row, best)
		result.Confidence = ConfidenceFuzzy
		if best.Phone != "" && importedPhone != "" && !phone.Equal(best.Phone, importedPhone) {
			result.Conflict = ConflictPhoneMismatch
		}
		return result
	}

	return noMatchResult(row)
}

// matchedResult applies the resolution policy: whenever any candidate match
// exists, the stored contact's name and phone win. Conflicts are recorded on
// the result but not surfaced for manual resolution here; ResolveConflict is
// the explicit escape hatch.
func matchedResult(row ImportedRow, c *models.Contact) *MappingResult {
	return &MappingResult{
		RowNum:        row.RowNum,
		ImportedName:  row.Name,
		ImportedPhone: row.Phone,
		Contact:       c,
		Source:        SourceContactDB,
		FinalName:     c.Name,
		FinalPhone:    c.Phone,
	}
}

func noMatchResult(row ImportedRow) *MappingResult {
	return &MappingResult{
		RowNum:        row.RowNum,
		ImportedName:  row.Name,
		ImportedPhone: row.Phone,
		Confidence:    ConfidenceNone,
		Conflict:      ConflictNoMatch,
		Source:        SourceImported,
		FinalName:     row.Name,
		FinalPhone:    row.Phone,
		NeedsCreation: true,
	}
}

// PropagatePhones runs the post-processing pass over a whole batch: for every
// matched row still carrying the stored contact's resolution, a valid stored
// contact phone wins over an empty, invalid or differing final phone. Rows
// resolved by the operator keep the phone they chose. Aggregate counts land
// in report.Stats.
func (e *Engine) PropagatePhones(report *MappingReport) {
	stats := BatchStats{}

	for _, r := range report.Results {
		if r.Contact == nil || r.Source != SourceContactDB {
			if !phone.Validate(r.FinalPhone).IsValid {
				stats.ValidationFailures++
			}
			continue
		}

		stats.AutoLinked++
		contactValid := phone.Validate(r.Contact.Phone).IsValid
		if !contactValid {
			if !phone.Validate(r.FinalPhone).IsValid {
				stats.ValidationFailures++
			}
			continue
		}

		finalValid := phone.Validate(r.FinalPhone).IsValid
		switch {
		case !finalValid:
			r.FinalPhone = r.Contact.Phone
			stats.Propagated++
		case !phone.Equal(r.FinalPhone, r.Contact.Phone):
			r.FinalPhone = r.Contact.Phone
			stats.Propagated++
		default:
			stats.Validated++
		}
	}

	report.Stats = stats
}

// ResolveConflict overrides one row's resolution after operator review. It is
// never invoked automatically.
func (e *Engine) ResolveConflict(report *MappingReport, index int, strategy ResolveStrategy, name, phoneRaw string) error {
	if index < 0 || index >= len(report.Results) {
		return fmt.Errorf("row index %d out of range (batch has %d rows)", index, len(report.Results))
	}
	r := report.Results[index]

	switch strategy {
	case ResolveKeepContact:
		if r.Contact == nil {
			return fmt.Errorf("row %d has no matched contact to keep", r.RowNum)
		}
		r.FinalName = r.Contact.Name
		r.FinalPhone = r.Contact.Phone
		r.Source = SourceContactDB
		r.NeedsCreation = false
	case ResolveUseImported:
		r.FinalName = r.ImportedName
		r.FinalPhone = r.ImportedPhone
		r.Source = SourceImported
	case ResolveManualEdit:
		r.FinalName = name
		r.FinalPhone = phoneRaw
		r.Source = SourceManual
	default:
		return fmt.Errorf("unknown resolve strategy %q", strategy)
	}
	return nil
}

// Persist runs the batch persistence pass: create contacts for unmatched rows
// that carry enough data, update matched contacts whose resolution changed a
// field. Both passes are continue-on-error per row.
func (e *Engine) Persist(report *MappingReport) PersistStats {
	stats := PersistStats{}

	for _, r := range report.Results {
		switch {
		case r.NeedsCreation && r.Source == SourceImported:
			if !creatable(r) {
				stats.Skipped++
				continue
			}
			created, err := e.store.Create(r.FinalName, phone.Normalize(r.FinalPhone), nil)
			if err != nil {
				log.Printf("Row %d: failed to create contact %q: %v", r.RowNum, r.FinalName, err)
				stats.Failed++
				continue
			}
			r.Contact = created
			stats.Created++

		case r.Contact != nil && (r.Source == SourceImported || r.Source == SourceManual):
			fields := changedFields(r)
			if len(fields) == 0 {
				stats.Skipped++
				continue
			}
			updated, err := e.store.Update(r.Contact.ID, fields)
			if err != nil {
				log.Printf("Row %d: failed to update contact %d: %v", r.RowNum, r.Contact.ID, err)
				stats.Failed++
				continue
			}
			r.Contact = updated
			stats.Updated++

		default:
			stats.Skipped++
		}
	}

	return stats
}

// creatable enforces minimum data for a new contact: a name and a phone with
// at least ten digits.
func creatable(r *MappingResult) bool {
	if r.FinalName == "" {
		return false
	}
	digits := digitsOnly.ReplaceAllString(r.FinalPhone, "")
	return len(digits) >= 10
}

func changedFields(r *MappingResult) map[string]interface{} {
	fields := map[string]interface{}{}
	if r.FinalName != "" && r.FinalName != r.Contact.Name {
		fields["name"] = r.FinalName
	}
	normalized := phone.Normalize(r.FinalPhone)
	if normalized != "" && normalized != r.Contact.Phone {
		fields["phone"] = normalized
	}
	return fields
}

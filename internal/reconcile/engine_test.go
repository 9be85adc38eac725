package reconcile

import (
	"fmt"
	"testing"

	"crm-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	contacts  []models.Contact
	listErr   error
	createErr error
	updateErr error
	created   []models.Contact
	updates   map[uint]map[string]interface{}
	nextID    uint
}

func newFakeStore(contacts ...models.Contact) *fakeStore {
	return &fakeStore{
		contacts: contacts,
		updates:  map[uint]map[string]interface{}{},
		nextID:   100,
	}
}

func (f *fakeStore) List() ([]models.Contact, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contacts, nil
}

func (f *fakeStore) Create(name, phone string, extra map[string]string) (*models.Contact, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := models.Contact{ID: f.nextID, Name: name, Phone: phone}
	f.created = append(f.created, c)
	return &c, nil
}

func (f *fakeStore) Update(id uint, fields map[string]interface{}) (*models.Contact, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates[id] = fields
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			if name, ok := fields["name"].(string); ok {
				f.contacts[i].Name = name
			}
			if phone, ok := fields["phone"].(string); ok {
				f.contacts[i].Phone = phone
			}
			return &f.contacts[i], nil
		}
	}
	return nil, fmt.Errorf("contact %d not found", id)
}

func johnDoe() models.Contact {
	return models.Contact{ID: 1, Name: "John Doe", Phone: "919876543210"}
}

func TestMapRowsExactPhoneMatch(t *testing.T) {
	engine := NewEngine(newFakeStore(johnDoe()))

	report, err := engine.MapRows([]ImportedRow{
		{Name: "Jon Doe", Phone: "9876543210", RowNum: 1},
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.NotEmpty(t, report.BatchID)

	r := report.Results[0]
	assert.Equal(t, ConfidenceExact, r.Confidence)
	assert.Equal(t, ConflictNone, r.Conflict)
	assert.Equal(t, SourceContactDB, r.Source)
	assert.Equal(t, "John Doe", r.FinalName)
	assert.Equal(t, "919876543210", r.FinalPhone)
	assert.False(t, r.NeedsCreation)
	require.NotNil(t, r.Contact)
	assert.Equal(t, uint(1), r.Contact.ID)
}

func TestMapRowsPhoneMatchNameMismatch(t *testing.T) {
	engine := NewEngine(newFakeStore(johnDoe()))

	report, err := engine.MapRows([]ImportedRow{
		{Name: "Completely Different Person", Phone: "+91 98765-43210", RowNum: 1},
	})
	require.NoError(t, err)

	r := report.Results[0]
	assert.Equal(t, ConfidenceFuzzy, r.Confidence)
	assert.Equal(t, ConflictNameMismatch, r.Conflict)
	// Stored data still wins despite the conflict.
	assert.Equal(t, "John Doe", r.FinalName)
	assert.Equal(t, SourceContactDB, r.Source)
}

func TestMapRowsNameFallbackPhoneMismatch(t *testing.T) {
	engine := NewEngine(newFakeStore(johnDoe()))

	report, err := engine.MapRows([]ImportedRow{
		{Name: "John Doe", Phone: "9123456789", RowNum: 1},
	})
	require.NoError(t, err)

	r := report.Results[0]
	assert.Equal(t, ConfidenceFuzzy, r.Confidence)
	assert.Equal(t, ConflictPhoneMismatch, r.Conflict)
	assert.Equal(t, "919876543210", r.FinalPhone)
	assert.Equal(t, SourceContactDB, r.Source)
}

func TestMapRowsNoMatch(t *testing.T) {
	engine := NewEngine(newFakeStore(johnDoe()))

	report, err := engine.MapRows([]ImportedRow{
		{Name: "Totally Unknown", Phone: "9999999999", RowNum: 1},
	})
	require.NoError(t, err)

	r := report.Results[0]
	assert.Equal(t, ConfidenceNone, r.Confidence)
	assert.Equal(t, ConflictNoMatch, r.Conflict)
	assert.Equal(t, SourceImported, r.Source)
	assert.Equal(t, "Totally Unknown", r.FinalName)
	assert.Equal(t, "9999999999", r.FinalPhone)
	assert.True(t, r.NeedsCreation)
	assert.Nil(t, r.Contact)
}

func TestMapRowsNameTieIsDeterministic(t *testing.T) {
	store := newFakeStore(
		models.Contact{ID: 1, Name: "Ramesh Kumar", Phone: ""},
		models.Contact{ID: 2, Name: "Ramesh Kumar", Phone: ""},
	)
	engine := NewEngine(store)

	for i := 0; i < 5; i++ {
		report, err := engine.MapRows([]ImportedRow{
			{Name: "Ramess Kumar", Phone: "", RowNum: 1},
		})
		require.NoError(t, err)
		require.NotNil(t, report.Results[0].Contact)
		assert.Equal(t, uint(1), report.Results[0].Contact.ID, "tie must keep the first-encountered candidate")
	}
}

func TestMapRowsDeterminism(t *testing.T) {
	store := newFakeStore(
		johnDoe(),
		models.Contact{ID: 2, Name: "Jane Smith", Phone: "919123456789"},
	)
	engine := NewEngine(store)
	rows := []ImportedRow{
		{Name: "Jon Doe", Phone: "9876543210", RowNum: 1},
		{Name: "Jane Smyth", Phone: "", RowNum: 2},
		{Name: "Nobody", Phone: "9000000001", RowNum: 3},
	}

	first, err := engine.MapRows(rows)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := engine.MapRows(rows)
		require.NoError(t, err)
		for j := range first.Results {
			assert.Equal(t, first.Results[j].Confidence, again.Results[j].Confidence)
			assert.Equal(t, first.Results[j].Conflict, again.Results[j].Conflict)
			assert.Equal(t, first.Results[j].FinalName, again.Results[j].FinalName)
			assert.Equal(t, first.Results[j].FinalPhone, again.Results[j].FinalPhone)
		}
	}
}

// FinalName/FinalPhone must be populated for every outcome.
func TestMapRowsTotality(t *testing.T) {
	engine := NewEngine(newFakeStore(johnDoe()))

	report, err := engine.MapRows([]ImportedRow{
		{Name: "", Phone: "", RowNum: 1},
		{Name: "Jon Doe", Phone: "9876543210", RowNum: 2},
		{Name: "x", Phone: "not a phone", RowNum: 3},
	})
	require.NoError(t, err)

	for _, r := range report.Results {
		assert.NotNil(t, r.FinalName)
		assert.NotNil(t, r.FinalPhone)
		assert.NotEmpty(t, r.Confidence)
		assert.NotEmpty(t, r.Source)
	}
}

func TestPropagatePhones(t *testing.T) {
	john := johnDoe()
	engine := NewEngine(newFakeStore(john))

	report := &MappingReport{Results: []*MappingResult{
		// Matched, final phone already correct.
		{Contact: &john, Source: SourceContactDB, FinalPhone: "919876543210"},
		// Matched, final phone empty: contact phone propagates.
		{Contact: &john, Source: SourceContactDB, FinalPhone: ""},
		// Matched, final phone differs: contact phone wins.
		{Contact: &john, Source: SourceContactDB, FinalPhone: "919123456789"},
		// Unmatched with invalid phone counts as a validation failure.
		{FinalPhone: "123"},
	}}

	engine.PropagatePhones(report)

	assert.Equal(t, "919876543210", report.Results[1].FinalPhone)
	assert.Equal(t, "919876543210", report.Results[2].FinalPhone)
	assert.Equal(t, 3, report.Stats.AutoLinked)
	assert.Equal(t, 1, report.Stats.Validated)
	assert.Equal(t, 2, report.Stats.Propagated)
	assert.Equal(t, 1, report.Stats.ValidationFailures)
}

func TestResolveConflict(t *testing.T) {
	john := johnDoe()
	engine := NewEngine(newFakeStore(john))

	report := &MappingReport{Results: []*MappingResult{
		{
			ImportedName:  "Jonathan Doe",
			ImportedPhone: "9876543210",
			Contact:       &john,
			Source:        SourceContactDB,
			FinalName:     "John Doe",
			FinalPhone:    "919876543210",
		},
	}}

	require.NoError(t, engine.ResolveConflict(report, 0, ResolveUseImported, "", ""))
	assert.Equal(t, "Jonathan Doe", report.Results[0].FinalName)
	assert.Equal(t, SourceImported, report.Results[0].Source)

	require.NoError(t, engine.ResolveConflict(report, 0, ResolveKeepContact, "", ""))
	assert.Equal(t, "John Doe", report.Results[0].FinalName)
	assert.Equal(t, SourceContactDB, report.Results[0].Source)

	require.NoError(t, engine.ResolveConflict(report, 0, ResolveManualEdit, "J. Doe", "9111111111"))
	assert.Equal(t, "J. Doe", report.Results[0].FinalName)
	assert.Equal(t, "9111111111", report.Results[0].FinalPhone)
	assert.Equal(t, SourceManual, report.Results[0].Source)

	assert.Error(t, engine.ResolveConflict(report, 5, ResolveUseImported, "", ""))
	assert.Error(t, engine.ResolveConflict(report, 0, ResolveStrategy("bogus"), "", ""))
}

func TestResolvedPhoneSurvivesPropagation(t *testing.T) {
	store := newFakeStore(johnDoe())
	engine := NewEngine(store)

	report, err := engine.MapRows([]ImportedRow{
		{Name: "Jon Doe", Phone: "9123456789", RowNum: 1},
	})
	require.NoError(t, err)
	require.Equal(t, ConflictPhoneMismatch, report.Results[0].Conflict)

	require.NoError(t, engine.ResolveConflict(report, 0, ResolveUseImported, "", ""))

	// The commit path runs propagation again before persisting; the
	// operator's resolution must not be reverted by it.
	engine.PropagatePhones(report)
	stats := engine.Persist(report)

	assert.Equal(t, "9123456789", report.Results[0].FinalPhone)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, "919123456789", store.updates[1]["phone"])
}

func TestManualEditSurvivesPropagation(t *testing.T) {
	store := newFakeStore(johnDoe())
	engine := NewEngine(store)

	report, err := engine.MapRows([]ImportedRow{
		{Name: "Jon Doe", Phone: "9123456789", RowNum: 1},
	})
	require.NoError(t, err)

	require.NoError(t, engine.ResolveConflict(report, 0, ResolveManualEdit, "Jonathan Doe", "9111122223"))

	engine.PropagatePhones(report)
	engine.Persist(report)

	assert.Equal(t, "9111122223", report.Results[0].FinalPhone)
	assert.Equal(t, "Jonathan Doe", store.updates[1]["name"])
	assert.Equal(t, "919111122223", store.updates[1]["phone"])
}

func TestPersistCreatesAndSkips(t *testing.T) {
	store := newFakeStore(johnDoe())
	engine := NewEngine(store)

	report := &MappingReport{Results: []*MappingResult{
		// Creatable.
		{Confidence: ConfidenceNone, Conflict: ConflictNoMatch, Source: SourceImported,
			FinalName: "New Person", FinalPhone: "9888877776", NeedsCreation: true},
		// Missing name: skipped, not an error.
		{Confidence: ConfidenceNone, Conflict: ConflictNoMatch, Source: SourceImported,
			FinalName: "", FinalPhone: "9888877777", NeedsCreation: true},
		// Phone too short: skipped.
		{Confidence: ConfidenceNone, Conflict: ConflictNoMatch, Source: SourceImported,
			FinalName: "Short Phone", FinalPhone: "12345", NeedsCreation: true},
	}}

	stats := engine.Persist(report)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Failed)
	require.Len(t, store.created, 1)
	assert.Equal(t, "New Person", store.created[0].Name)
	assert.Equal(t, "919888877776", store.created[0].Phone)
	// The created contact is attached back onto the row.
	assert.NotNil(t, report.Results[0].Contact)
}

func TestPersistUpdatesResolvedRows(t *testing.T) {
	john := johnDoe()
	store := newFakeStore(john)
	engine := NewEngine(store)

	report := &MappingReport{Results: []*MappingResult{
		// Resolved to imported data: triggers an update.
		{Contact: &john, Source: SourceImported, FinalName: "Jonathan Doe", FinalPhone: "919876543210"},
		// Matched but untouched (source contact_db): no update.
		{Contact: &john, Source: SourceContactDB, FinalName: "John Doe", FinalPhone: "919876543210"},
		// Resolved but nothing actually changed: skipped.
		{Contact: &john, Source: SourceManual, FinalName: "John Doe", FinalPhone: "9876543210"},
	}}

	stats := engine.Persist(report)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 2, stats.Skipped)
	require.Contains(t, store.updates, uint(1))
	assert.Equal(t, "Jonathan Doe", store.updates[1]["name"])
}

func TestPersistContinueOnError(t *testing.T) {
	store := newFakeStore(johnDoe())
	store.createErr = fmt.Errorf("db down")
	engine := NewEngine(store)

	report := &MappingReport{Results: []*MappingResult{
		{Source: SourceImported, FinalName: "A Person", FinalPhone: "9888877776", NeedsCreation: true},
		{Source: SourceImported, FinalName: "B Person", FinalPhone: "9888877777", NeedsCreation: true},
	}}

	stats := engine.Persist(report)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Created)
}

func TestMapRowsListError(t *testing.T) {
	store := newFakeStore()
	store.listErr = fmt.Errorf("connection refused")
	engine := NewEngine(store)

	_, err := engine.MapRows([]ImportedRow{{Name: "x", Phone: "9876543210"}})
	assert.Error(t, err)
}

package crm_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

// mockStore holds CRM rows in memory. The embedded interface panics if an
// unimplemented method is hit.
type mockStore struct {
	store.Store
	leads     map[uuid.UUID]*models.Lead
	labels    []*models.Label
	fieldDefs []*models.FieldDefinition
	companies map[uuid.UUID]*models.Company
	pipelines map[uuid.UUID]*models.Pipeline
	stages    []*models.PipelineStage
}

func newMockStore() *mockStore {
	return &mockStore{
		leads:     make(map[uuid.UUID]*models.Lead),
		companies: make(map[uuid.UUID]*models.Company),
		pipelines: make(map[uuid.UUID]*models.Pipeline),
	}
}

func (m *mockStore) CreateLead(_ context.Context, l *models.Lead) error {
	m.leads[l.ID] = l
	return nil
}

func (m *mockStore) GetLead(_ context.Context, id, teamID uuid.UUID) (*models.Lead, error) {
	l, ok := m.leads[id]
	if !ok || l.TeamID != teamID {
		return nil, store.ErrNotFound
	}
	return l, nil
}

func (m *mockStore) UpdateLead(_ context.Context, l *models.Lead) (*models.Lead, error) {
	m.leads[l.ID] = l
	return l, nil
}

func (m *mockStore) ListLabels(_ context.Context, teamID uuid.UUID) ([]*models.Label, error) {
	var out []*models.Label
	for _, l := range m.labels {
		if l.TeamID == teamID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockStore) ListFieldDefinitions(_ context.Context, teamID uuid.UUID, entity models.FieldEntity) ([]*models.FieldDefinition, error) {
	var out []*models.FieldDefinition
	for _, d := range m.fieldDefs {
		if d.TeamID == teamID && d.Entity == entity {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockStore) GetCompany(_ context.Context, id, teamID uuid.UUID) (*models.Company, error) {
	c, ok := m.companies[id]
	if !ok || c.TeamID != teamID {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) GetStage(_ context.Context, id, teamID uuid.UUID) (*models.PipelineStage, error) {
	for _, st := range m.stages {
		if st.ID == id && st.TeamID == teamID {
			return st, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) CreatePipeline(_ context.Context, p *models.Pipeline) error {
	m.pipelines[p.ID] = p
	return nil
}

func (m *mockStore) GetPipeline(_ context.Context, id, teamID uuid.UUID) (*models.Pipeline, error) {
	p, ok := m.pipelines[id]
	if !ok || p.TeamID != teamID {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *mockStore) CreateStage(_ context.Context, st *models.PipelineStage) error {
	m.stages = append(m.stages, st)
	return nil
}

func (m *mockStore) CreateActivity(_ context.Context, _ *models.Activity) error { return nil }

func TestCreateLead(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID, userID := uuid.New(), uuid.New()

	lead, err := svc.CreateLead(context.Background(), teamID, userID, crm.LeadInput{
		Name:  "Grace Hopper",
		Email: "grace@example.com",
		Phone: "15551234567",
	})
	require.NoError(t, err)
	assert.Equal(t, teamID, lead.TeamID)
	assert.Equal(t, userID, lead.CreatedBy)
	assert.NotEqual(t, uuid.Nil, lead.ID)
}

func TestCreateLead_NameRequired(t *testing.T) {
	svc := crm.NewService(newMockStore())

	_, err := svc.CreateLead(context.Background(), uuid.New(), uuid.New(), crm.LeadInput{Name: "  "})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestCreateLead_UnknownLabel(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()
	s.labels = append(s.labels, &models.Label{ID: uuid.New(), TeamID: teamID, Name: "vip"})

	_, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:     "Grace",
		LabelIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestCreateLead_LabelFromAnotherTeamRejected(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()
	foreign := &models.Label{ID: uuid.New(), TeamID: uuid.New(), Name: "vip"}
	s.labels = append(s.labels, foreign)

	_, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:     "Grace",
		LabelIDs: []uuid.UUID{foreign.ID},
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestCreateLead_CompanyMustBelongToTeam(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()
	foreign := &models.Company{ID: uuid.New(), TeamID: uuid.New(), Name: "Initech"}
	s.companies[foreign.ID] = foreign

	_, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:      "Grace",
		CompanyID: &foreign.ID,
	})
	assert.ErrorIs(t, err, crm.ErrValidation)

	mine := &models.Company{ID: uuid.New(), TeamID: teamID, Name: "Acme"}
	s.companies[mine.ID] = mine
	lead, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:      "Grace",
		CompanyID: &mine.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, &mine.ID, lead.CompanyID)
}

func TestCreateLead_UnknownStageRejected(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()
	stale := uuid.New()

	_, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:    "Grace",
		StageID: &stale,
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestUpdateLead_StageFromAnotherTeamRejected(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()

	lead, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{Name: "Grace"})
	require.NoError(t, err)

	foreign := &models.PipelineStage{ID: uuid.New(), TeamID: uuid.New(), Name: "Won"}
	s.stages = append(s.stages, foreign)

	_, err = svc.UpdateLead(context.Background(), lead.ID, teamID, crm.LeadInput{
		Name:    "Grace",
		StageID: &foreign.ID,
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestCreateLead_CustomFieldsValidated(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()
	numberDef := &models.FieldDefinition{
		ID: uuid.New(), TeamID: teamID, Entity: models.FieldEntityLead,
		Name: "deal size", Type: models.FieldNumber,
	}
	s.fieldDefs = append(s.fieldDefs, numberDef)

	_, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:         "Grace",
		CustomFields: map[string]any{numberDef.ID.String(): "not-a-number"},
	})
	assert.ErrorIs(t, err, crm.ErrValidation)

	lead, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{
		Name:         "Grace",
		CustomFields: map[string]any{numberDef.ID.String(): float64(10000)},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(10000), lead.CustomFields[numberDef.ID.String()])
}

func TestUpdateLead_ScopedToTeam(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()

	lead, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{Name: "Grace"})
	require.NoError(t, err)

	_, err = svc.UpdateLead(context.Background(), lead.ID, uuid.New(), crm.LeadInput{Name: "Renamed"})
	assert.ErrorIs(t, err, store.ErrNotFound, "another team's ID must not reach the lead")
}

func TestCreateStage_VerifiesPipelineTenant(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()

	p, err := svc.CreatePipeline(context.Background(), teamID, "Sales", "")
	require.NoError(t, err)

	_, err = svc.CreateStage(context.Background(), uuid.New(), p.ID, "Qualified", "#00ff00", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	stage, err := svc.CreateStage(context.Background(), teamID, p.ID, "Qualified", "#00ff00", 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stage.PipelineID)
}

func TestCreateActivity_TypeValidated(t *testing.T) {
	svc := crm.NewService(newMockStore())

	_, err := svc.CreateActivity(context.Background(), uuid.New(), uuid.New(), crm.ActivityInput{
		Type:  "carrier-pigeon",
		Title: "Send update",
	})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestCreateActivity_LeadMustBelongToTeam(t *testing.T) {
	s := newMockStore()
	svc := crm.NewService(s)
	teamID := uuid.New()

	lead, err := svc.CreateLead(context.Background(), teamID, uuid.New(), crm.LeadInput{Name: "Grace"})
	require.NoError(t, err)

	_, err = svc.CreateActivity(context.Background(), uuid.New(), uuid.New(), crm.ActivityInput{
		Type:   models.ActivityCall,
		Title:  "Intro call",
		LeadID: &lead.ID,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.CreateActivity(context.Background(), teamID, uuid.New(), crm.ActivityInput{
		Type:   models.ActivityCall,
		Title:  "Intro call",
		LeadID: &lead.ID,
	})
	require.NoError(t, err)
}

func TestCreateFieldDefinition_SelectNeedsOptions(t *testing.T) {
	svc := crm.NewService(newMockStore())

	_, err := svc.CreateFieldDefinition(context.Background(), uuid.New(),
		models.FieldEntityLead, "priority", models.FieldSelect, nil, false)
	assert.ErrorIs(t, err, crm.ErrValidation)

	_, err = svc.CreateFieldDefinition(context.Background(), uuid.New(),
		models.FieldEntityLead, "notes", models.FieldText, []string{"a"}, false)
	assert.ErrorIs(t, err, crm.ErrValidation, "options apply only to select fields")
}

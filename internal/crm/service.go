package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/pkg/models"
)

// Service owns the tenant-scoped CRM records. Every operation takes the
// caller's validated team ID and passes it through to the store, so no query
// can cross a tenant boundary.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// --- Leads ---

// LeadInput holds the mutable lead fields supplied by the caller.
type LeadInput struct {
	Name         string
	Email        string
	Phone        string
	Source       string
	Notes        string
	CompanyID    *uuid.UUID
	StageID      *uuid.UUID
	LabelIDs     []uuid.UUID
	CustomFields map[string]any
}

func (s *Service) CreateLead(ctx context.Context, teamID, userID uuid.UUID, in LeadInput) (*models.Lead, error) {
	if err := s.validateLeadInput(ctx, teamID, &in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:           uuid.New(),
		TeamID:       teamID,
		CompanyID:    in.CompanyID,
		StageID:      in.StageID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Source:       in.Source,
		Notes:        in.Notes,
		LabelIDs:     in.LabelIDs,
		CustomFields: in.CustomFields,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id, teamID uuid.UUID) (*models.Lead, error) {
	return s.store.GetLead(ctx, id, teamID)
}

func (s *Service) ListLeads(ctx context.Context, filter store.LeadFilter) ([]*models.Lead, int, error) {
	return s.store.ListLeads(ctx, filter)
}

func (s *Service) UpdateLead(ctx context.Context, id, teamID uuid.UUID, in LeadInput) (*models.Lead, error) {
	existing, err := s.store.GetLead(ctx, id, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.validateLeadInput(ctx, teamID, &in); err != nil {
		return nil, err
	}

	existing.CompanyID = in.CompanyID
	existing.StageID = in.StageID
	existing.Name = in.Name
	existing.Email = in.Email
	existing.Phone = in.Phone
	existing.Source = in.Source
	existing.Notes = in.Notes
	existing.LabelIDs = in.LabelIDs
	existing.CustomFields = in.CustomFields
	return s.store.UpdateLead(ctx, existing)
}

func (s *Service) DeleteLead(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteLead(ctx, id, teamID)
}

func (s *Service) validateLeadInput(ctx context.Context, teamID uuid.UUID, in *LeadInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}

	// Referenced records must exist in this tenant, a foreign or stale ID is
	// a validation failure rather than a constraint blowup.
	if in.CompanyID != nil {
		if _, err := s.store.GetCompany(ctx, *in.CompanyID, teamID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown company %s", ErrValidation, *in.CompanyID)
			}
			return fmt.Errorf("check company: %w", err)
		}
	}
	if in.StageID != nil {
		if _, err := s.store.GetStage(ctx, *in.StageID, teamID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: unknown stage %s", ErrValidation, *in.StageID)
			}
			return fmt.Errorf("check stage: %w", err)
		}
	}

	if len(in.LabelIDs) > 0 {
		labels, err := s.store.ListLabels(ctx, teamID)
		if err != nil {
			return fmt.Errorf("list labels: %w", err)
		}
		known := make(map[uuid.UUID]bool, len(labels))
		for _, l := range labels {
			known[l.ID] = true
		}
		for _, id := range in.LabelIDs {
			if !known[id] {
				return fmt.Errorf("%w: unknown label %s", ErrValidation, id)
			}
		}
	}

	if in.CustomFields != nil {
		defs, err := s.store.ListFieldDefinitions(ctx, teamID, models.FieldEntityLead)
		if err != nil {
			return fmt.Errorf("list field definitions: %w", err)
		}
		normalized, err := ValidateCustomFields(defs, in.CustomFields)
		if err != nil {
			return err
		}
		in.CustomFields = normalized
	}
	return nil
}

// --- Companies ---

type CompanyInput struct {
	Name         string
	Website      string
	Phone        string
	Industry     string
	CustomFields map[string]any
}

func (s *Service) CreateCompany(ctx context.Context, teamID, userID uuid.UUID, in CompanyInput) (*models.Company, error) {
	if err := s.validateCompanyInput(ctx, teamID, &in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &models.Company{
		ID:           uuid.New(),
		TeamID:       teamID,
		Name:         in.Name,
		Website:      in.Website,
		Phone:        in.Phone,
		Industry:     in.Industry,
		CustomFields: in.CustomFields,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) GetCompany(ctx context.Context, id, teamID uuid.UUID) (*models.Company, error) {
	return s.store.GetCompany(ctx, id, teamID)
}

func (s *Service) ListCompanies(ctx context.Context, filter store.CompanyFilter) ([]*models.Company, int, error) {
	return s.store.ListCompanies(ctx, filter)
}

func (s *Service) UpdateCompany(ctx context.Context, id, teamID uuid.UUID, in CompanyInput) (*models.Company, error) {
	existing, err := s.store.GetCompany(ctx, id, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.validateCompanyInput(ctx, teamID, &in); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Website = in.Website
	existing.Phone = in.Phone
	existing.Industry = in.Industry
	existing.CustomFields = in.CustomFields
	return s.store.UpdateCompany(ctx, existing)
}

func (s *Service) DeleteCompany(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteCompany(ctx, id, teamID)
}

func (s *Service) validateCompanyInput(ctx context.Context, teamID uuid.UUID, in *CompanyInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.CustomFields != nil {
		defs, err := s.store.ListFieldDefinitions(ctx, teamID, models.FieldEntityCompany)
		if err != nil {
			return fmt.Errorf("list field definitions: %w", err)
		}
		normalized, err := ValidateCustomFields(defs, in.CustomFields)
		if err != nil {
			return err
		}
		in.CustomFields = normalized
	}
	return nil
}

// --- Pipelines and stages ---

func (s *Service) CreatePipeline(ctx context.Context, teamID uuid.UUID, name, description string) (*models.Pipeline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	now := time.Now().UTC()
	p := &models.Pipeline{
		ID:          uuid.New(),
		TeamID:      teamID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreatePipeline(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPipelines(ctx context.Context, teamID uuid.UUID) ([]*models.Pipeline, error) {
	return s.store.ListPipelines(ctx, teamID)
}

func (s *Service) DeletePipeline(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeletePipeline(ctx, id, teamID)
}

func (s *Service) CreateStage(ctx context.Context, teamID, pipelineID uuid.UUID, name, color string, position int) (*models.PipelineStage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := s.store.GetPipeline(ctx, pipelineID, teamID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	st := &models.PipelineStage{
		ID:         uuid.New(),
		TeamID:     teamID,
		PipelineID: pipelineID,
		Name:       name,
		Position:   position,
		Color:      color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateStage(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) ListStages(ctx context.Context, pipelineID, teamID uuid.UUID) ([]*models.PipelineStage, error) {
	return s.store.ListStages(ctx, pipelineID, teamID)
}

func (s *Service) UpdateStage(ctx context.Context, st *models.PipelineStage) (*models.PipelineStage, error) {
	return s.store.UpdateStage(ctx, st)
}

func (s *Service) DeleteStage(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteStage(ctx, id, teamID)
}

// --- Activities ---

type ActivityInput struct {
	Type       models.ActivityType
	Title      string
	Notes      string
	LeadID     *uuid.UUID
	DueAt      *time.Time
	AssignedTo *uuid.UUID
}

func (s *Service) CreateActivity(ctx context.Context, teamID, userID uuid.UUID, in ActivityInput) (*models.Activity, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be call, email, meeting, or task", ErrValidation)
	}
	if in.LeadID != nil {
		if _, err := s.store.GetLead(ctx, *in.LeadID, teamID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	a := &models.Activity{
		ID:         uuid.New(),
		TeamID:     teamID,
		LeadID:     in.LeadID,
		Type:       in.Type,
		Title:      in.Title,
		Notes:      in.Notes,
		DueAt:      in.DueAt,
		AssignedTo: in.AssignedTo,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateActivity(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListActivities(ctx context.Context, filter store.ActivityFilter) ([]*models.Activity, int, error) {
	return s.store.ListActivities(ctx, filter)
}

func (s *Service) CompleteActivity(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.CompleteActivity(ctx, id, teamID)
}

func (s *Service) DeleteActivity(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteActivity(ctx, id, teamID)
}

// --- Labels ---

func (s *Service) CreateLabel(ctx context.Context, teamID uuid.UUID, name, color string) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if color == "" {
		color = "#808080"
	}

	now := time.Now().UTC()
	l := &models.Label{
		ID:        uuid.New(),
		TeamID:    teamID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLabel(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ListLabels(ctx context.Context, teamID uuid.UUID) ([]*models.Label, error) {
	return s.store.ListLabels(ctx, teamID)
}

func (s *Service) DeleteLabel(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteLabel(ctx, id, teamID)
}

// --- Custom field definitions ---

func (s *Service) CreateFieldDefinition(ctx context.Context, teamID uuid.UUID, entity models.FieldEntity, name string, fieldType models.FieldType, options []string, required bool) (*models.FieldDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !entity.Valid() {
		return nil, fmt.Errorf("%w: entity must be lead or company", ErrValidation)
	}
	if !fieldType.Valid() {
		return nil, fmt.Errorf("%w: unknown field type %q", ErrValidation, fieldType)
	}
	if fieldType == models.FieldSelect && len(options) == 0 {
		return nil, fmt.Errorf("%w: select fields need at least one option", ErrValidation)
	}
	if fieldType != models.FieldSelect && len(options) > 0 {
		return nil, fmt.Errorf("%w: options apply only to select fields", ErrValidation)
	}

	now := time.Now().UTC()
	def := &models.FieldDefinition{
		ID:        uuid.New(),
		TeamID:    teamID,
		Entity:    entity,
		Name:      name,
		Type:      fieldType,
		Options:   options,
		Required:  required,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateFieldDefinition(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

func (s *Service) ListFieldDefinitions(ctx context.Context, teamID uuid.UUID, entity models.FieldEntity) ([]*models.FieldDefinition, error) {
	return s.store.ListFieldDefinitions(ctx, teamID, entity)
}

func (s *Service) DeleteFieldDefinition(ctx context.Context, id, teamID uuid.UUID) error {
	return s.store.DeleteFieldDefinition(ctx, id, teamID)
}

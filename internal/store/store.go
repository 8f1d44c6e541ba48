package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nexocrm/nexo/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrLastOwner = errors.New("team must retain at least one owner")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Teams
	CreateTeamWithOwner(ctx context.Context, team *models.Team, ownerID uuid.UUID) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error)
	ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	ListAllTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, patch TeamPatch) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error

	// Memberships
	GetTeamMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	GetMember(ctx context.Context, memberID uuid.UUID) (*models.TeamMember, error)
	ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	CountOwners(ctx context.Context, teamID uuid.UUID) (int, error)
	UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role models.Role) error
	RemoveMember(ctx context.Context, memberID uuid.UUID) error

	// Invitations
	CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error
	GetInvitationsByPrefix(ctx context.Context, prefix string) ([]*models.TeamInvitation, error)
	ListInvitations(ctx context.Context, teamID uuid.UUID) ([]*models.TeamInvitation, error)
	DeleteInvitation(ctx context.Context, id, teamID uuid.UUID) error
	AcceptInvitation(ctx context.Context, inv *models.TeamInvitation, userID uuid.UUID) error

	// Leads
	CreateLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id, teamID uuid.UUID) (*models.Lead, error)
	GetLeadByPhone(ctx context.Context, teamID uuid.UUID, phone string) (*models.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]*models.Lead, int, error)
	UpdateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	DeleteLead(ctx context.Context, id, teamID uuid.UUID) error

	// Companies
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id, teamID uuid.UUID) (*models.Company, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error)
	UpdateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	DeleteCompany(ctx context.Context, id, teamID uuid.UUID) error

	// Pipelines
	CreatePipeline(ctx context.Context, p *models.Pipeline) error
	GetPipeline(ctx context.Context, id, teamID uuid.UUID) (*models.Pipeline, error)
	ListPipelines(ctx context.Context, teamID uuid.UUID) ([]*models.Pipeline, error)
	DeletePipeline(ctx context.Context, id, teamID uuid.UUID) error
	CreateStage(ctx context.Context, s *models.PipelineStage) error
	GetStage(ctx context.Context, id, teamID uuid.UUID) (*models.PipelineStage, error)
	ListStages(ctx context.Context, pipelineID, teamID uuid.UUID) ([]*models.PipelineStage, error)
	UpdateStage(ctx context.Context, s *models.PipelineStage) (*models.PipelineStage, error)
	DeleteStage(ctx context.Context, id, teamID uuid.UUID) error

	// Activities
	CreateActivity(ctx context.Context, a *models.Activity) error
	GetActivity(ctx context.Context, id, teamID uuid.UUID) (*models.Activity, error)
	ListActivities(ctx context.Context, filter ActivityFilter) ([]*models.Activity, int, error)
	CompleteActivity(ctx context.Context, id, teamID uuid.UUID) error
	DeleteActivity(ctx context.Context, id, teamID uuid.UUID) error

	// Labels
	CreateLabel(ctx context.Context, l *models.Label) error
	ListLabels(ctx context.Context, teamID uuid.UUID) ([]*models.Label, error)
	DeleteLabel(ctx context.Context, id, teamID uuid.UUID) error

	// Custom field definitions
	CreateFieldDefinition(ctx context.Context, def *models.FieldDefinition) error
	ListFieldDefinitions(ctx context.Context, teamID uuid.UUID, entity models.FieldEntity) ([]*models.FieldDefinition, error)
	DeleteFieldDefinition(ctx context.Context, id, teamID uuid.UUID) error

	// WhatsApp
	UpsertWhatsAppSettings(ctx context.Context, s *models.WhatsAppSettings) (*models.WhatsAppSettings, error)
	GetWhatsAppSettings(ctx context.Context, teamID uuid.UUID) (*models.WhatsAppSettings, error)
	GetWhatsAppSettingsByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.WhatsAppSettings, error)
	GetWhatsAppSettingsByVerifyToken(ctx context.Context, verifyToken string) (*models.WhatsAppSettings, error)
	CreateWhatsAppMessage(ctx context.Context, m *models.WhatsAppMessage) error
	UpdateWhatsAppMessageStatus(ctx context.Context, waMessageID, status string) error
	ListWhatsAppMessages(ctx context.Context, filter MessageFilter) ([]*models.WhatsAppMessage, int, error)
}

// TeamPatch holds optional team updates. The slug is immutable and cannot be
// patched.
type TeamPatch struct {
	Name        *string
	Description *string
	LogoURL     *string
}

type LeadFilter struct {
	TeamID    uuid.UUID
	CompanyID uuid.UUID
	StageID   uuid.UUID
	LabelID   uuid.UUID
	Search    string
	Page      int
	Limit     int
}

type CompanyFilter struct {
	TeamID uuid.UUID
	Search string
	Page   int
	Limit  int
}

type ActivityFilter struct {
	TeamID    uuid.UUID
	LeadID    uuid.UUID
	Completed *bool
	DueBefore time.Time
	Page      int
	Limit     int
}

type MessageFilter struct {
	TeamID uuid.UUID
	LeadID uuid.UUID
	Page   int
	Limit  int
}

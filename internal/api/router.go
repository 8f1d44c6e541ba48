package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexocrm/nexo/internal/api/handler"
	mw "github.com/nexocrm/nexo/internal/api/middleware"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	Team      *mw.Team
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	AuthHandler        *handler.Auth
	TeamHandler        *handler.Team
	InvitationHandler  *handler.Invitation
	MemberHandler      *handler.Member
	LeadHandler        *handler.Lead
	CompanyHandler     *handler.Company
	PipelineHandler    *handler.Pipeline
	ActivityHandler    *handler.Activity
	LabelHandler       *handler.Label
	CustomFieldHandler *handler.CustomField
	WhatsAppHandler    *handler.WhatsApp
	WebhookHandler     *handler.Webhook
	AdminHandler       *handler.Admin
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", deps.HealthHandler)
	r.Post("/api/v1/auth/register", deps.AuthHandler.Register)
	r.Post("/api/v1/auth/login", deps.AuthHandler.Login)
	r.Post("/api/v1/auth/forgot-password", deps.AuthHandler.ForgotPassword)
	r.Get("/api/v1/webhooks/whatsapp", deps.WebhookHandler.Verify)
	r.Post("/api/v1/webhooks/whatsapp", deps.WebhookHandler.Receive)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/auth/logout", deps.AuthHandler.Logout)
		r.Get("/api/v1/auth/me", deps.AuthHandler.Me)
		r.Put("/api/v1/auth/password", deps.AuthHandler.ChangePassword)

		r.Get("/api/v1/teams", deps.TeamHandler.List)
		r.Post("/api/v1/teams", deps.TeamHandler.Create)
		r.Get("/api/v1/teams/current", deps.TeamHandler.GetCurrent)
		r.Put("/api/v1/teams/current", deps.TeamHandler.SetCurrent)
		r.Put("/api/v1/teams/{teamID}", deps.TeamHandler.Update)

		r.Post("/api/v1/invitations/accept", deps.InvitationHandler.Accept)

		// Tenant-scoped routes: an active team is resolved and membership
		// verified before any of these run.
		r.Group(func(r chi.Router) {
			r.Use(deps.Team.Resolve)

			r.Get("/api/v1/team/members", deps.MemberHandler.List)
			r.Put("/api/v1/team/members/{memberID}/role", deps.MemberHandler.UpdateRole)
			r.Delete("/api/v1/team/members/{memberID}", deps.MemberHandler.Remove)

			r.Get("/api/v1/team/invitations", deps.InvitationHandler.List)
			r.Post("/api/v1/team/invitations", deps.InvitationHandler.Create)
			r.Delete("/api/v1/team/invitations/{invitationID}", deps.InvitationHandler.Delete)

			r.Post("/api/v1/leads", deps.LeadHandler.Create)
			r.Get("/api/v1/leads", deps.LeadHandler.List)
			r.Get("/api/v1/leads/{leadID}", deps.LeadHandler.Get)
			r.Put("/api/v1/leads/{leadID}", deps.LeadHandler.Update)
			r.Delete("/api/v1/leads/{leadID}", deps.LeadHandler.Delete)

			r.Post("/api/v1/companies", deps.CompanyHandler.Create)
			r.Get("/api/v1/companies", deps.CompanyHandler.List)
			r.Get("/api/v1/companies/{companyID}", deps.CompanyHandler.Get)
			r.Put("/api/v1/companies/{companyID}", deps.CompanyHandler.Update)
			r.Delete("/api/v1/companies/{companyID}", deps.CompanyHandler.Delete)

			r.Post("/api/v1/pipelines", deps.PipelineHandler.Create)
			r.Get("/api/v1/pipelines", deps.PipelineHandler.List)
			r.Delete("/api/v1/pipelines/{pipelineID}", deps.PipelineHandler.Delete)
			r.Post("/api/v1/pipelines/{pipelineID}/stages", deps.PipelineHandler.CreateStage)
			r.Get("/api/v1/pipelines/{pipelineID}/stages", deps.PipelineHandler.ListStages)
			r.Put("/api/v1/stages/{stageID}", deps.PipelineHandler.UpdateStage)
			r.Delete("/api/v1/stages/{stageID}", deps.PipelineHandler.DeleteStage)

			r.Post("/api/v1/activities", deps.ActivityHandler.Create)
			r.Get("/api/v1/activities", deps.ActivityHandler.List)
			r.Post("/api/v1/activities/{activityID}/complete", deps.ActivityHandler.Complete)
			r.Delete("/api/v1/activities/{activityID}", deps.ActivityHandler.Delete)

			r.Post("/api/v1/labels", deps.LabelHandler.Create)
			r.Get("/api/v1/labels", deps.LabelHandler.List)
			r.Delete("/api/v1/labels/{labelID}", deps.LabelHandler.Delete)

			r.Get("/api/v1/custom-fields", deps.CustomFieldHandler.List)

			r.Get("/api/v1/whatsapp/messages", deps.WhatsAppHandler.ListMessages)
			r.Post("/api/v1/whatsapp/messages", deps.WhatsAppHandler.Send)

			// Manager-only configuration
			r.Group(func(r chi.Router) {
				r.Use(deps.Team.RequireManager)

				r.Post("/api/v1/custom-fields", deps.CustomFieldHandler.Create)
				r.Delete("/api/v1/custom-fields/{fieldID}", deps.CustomFieldHandler.Delete)

				r.Get("/api/v1/whatsapp/settings", deps.WhatsAppHandler.GetSettings)
				r.Put("/api/v1/whatsapp/settings", deps.WhatsAppHandler.SaveSettings)
			})
		})

		// Super admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireSuperAdmin)

			r.Get("/api/v1/admin/teams", deps.AdminHandler.ListTeams)
			r.Delete("/api/v1/admin/teams/{teamID}", deps.AdminHandler.DeleteTeam)
		})
	})

	return r
}

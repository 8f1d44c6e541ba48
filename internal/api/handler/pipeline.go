package handler

import (
	"net/http"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/pkg/models"
)

// Pipeline serves pipelines and their ordered stages.
type Pipeline struct {
	svc *crm.Service
}

func NewPipeline(svc *crm.Service) *Pipeline {
	return &Pipeline{svc: svc}
}

// Create handles POST /api/v1/pipelines.
func (h *Pipeline) Create(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.CreatePipeline(r.Context(), teamID, req.Name, req.Description)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, p)
}

// List handles GET /api/v1/pipelines.
func (h *Pipeline) List(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)

	pipelines, err := h.svc.ListPipelines(r.Context(), teamID)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, pipelines)
}

// Delete handles DELETE /api/v1/pipelines/{pipelineID}.
func (h *Pipeline) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	pipelineID, ok := pathUUID(w, r, "pipelineID")
	if !ok {
		return
	}

	if err := h.svc.DeletePipeline(r.Context(), pipelineID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}

// CreateStage handles POST /api/v1/pipelines/{pipelineID}/stages.
func (h *Pipeline) CreateStage(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	pipelineID, ok := pathUUID(w, r, "pipelineID")
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		Position int    `json:"position"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	stage, err := h.svc.CreateStage(r.Context(), teamID, pipelineID, req.Name, req.Color, req.Position)
	if err != nil {
		crmError(w, err)
		return
	}
	response.Created(w, stage)
}

// ListStages handles GET /api/v1/pipelines/{pipelineID}/stages.
func (h *Pipeline) ListStages(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	pipelineID, ok := pathUUID(w, r, "pipelineID")
	if !ok {
		return
	}

	stages, err := h.svc.ListStages(r.Context(), pipelineID, teamID)
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, stages)
}

// UpdateStage handles PUT /api/v1/stages/{stageID}.
func (h *Pipeline) UpdateStage(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	stageID, ok := pathUUID(w, r, "stageID")
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		Position int    `json:"position"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	stage, err := h.svc.UpdateStage(r.Context(), &models.PipelineStage{
		ID:       stageID,
		TeamID:   teamID,
		Name:     req.Name,
		Color:    req.Color,
		Position: req.Position,
	})
	if err != nil {
		crmError(w, err)
		return
	}
	response.JSON(w, stage)
}

// DeleteStage handles DELETE /api/v1/stages/{stageID}.
func (h *Pipeline) DeleteStage(w http.ResponseWriter, r *http.Request) {
	teamID, _ := mw.GetTeamID(r)
	stageID, ok := pathUUID(w, r, "stageID")
	if !ok {
		return
	}

	if err := h.svc.DeleteStage(r.Context(), stageID, teamID); err != nil {
		crmError(w, err)
		return
	}
	response.NoContent(w)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/crm"
	"github.com/nexocrm/nexo/internal/store"
	"github.com/nexocrm/nexo/internal/team"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", param+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDField(w http.ResponseWriter, value, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", field+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(r *http.Request, param string) uuid.UUID {
	id, err := uuid.Parse(r.URL.Query().Get(param))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func queryInt(r *http.Request, param string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil {
		return 0
	}
	return n
}

// paginationMeta normalizes page and limit the same way the store does, so
// the reported limit and has_next match the rows actually returned.
func paginationMeta(page, limit, total int) response.PaginationMeta {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: page*limit < total,
	}
}

// teamError maps team service errors onto the wire taxonomy. Unrecognized
// errors fall through to a 500.
func teamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, team.ErrNotAMember):
		response.Error(w, http.StatusForbidden, "NOT_A_MEMBER",
			"You are not a member of this team", nil)
	case errors.Is(err, team.ErrForbidden):
		response.Error(w, http.StatusForbidden, "FORBIDDEN",
			"You do not have permission to do that", nil)
	case errors.Is(err, team.ErrSlugTaken):
		response.Error(w, http.StatusConflict, "SLUG_TAKEN",
			"That slug is already in use", nil)
	case errors.Is(err, team.ErrValidation):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, team.ErrInvitationExpired):
		response.Error(w, http.StatusGone, "INVITATION_EXPIRED",
			"This invitation has expired", nil)
	case errors.Is(err, team.ErrInvitationNotFound):
		response.Error(w, http.StatusNotFound, "INVITATION_NOT_FOUND",
			"Invitation not found or already used", nil)
	case errors.Is(err, team.ErrEmailMismatch):
		response.Error(w, http.StatusForbidden, "EMAIL_MISMATCH",
			"This invitation was sent to a different email address", nil)
	case errors.Is(err, team.ErrAlreadyMember):
		response.Error(w, http.StatusConflict, "ALREADY_MEMBER",
			"You are already a member of this team", nil)
	case errors.Is(err, team.ErrLastOwner):
		response.Error(w, http.StatusConflict, "LAST_OWNER",
			"A team must keep at least one owner", nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// crmError maps CRM service errors onto the wire taxonomy.
func crmError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, crm.ErrValidation):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		storeError(w, err)
	}
}

// storeError maps bare store errors for tenant-scoped CRM handlers.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, "DUPLICATE", "Resource already exists", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nexocrm/nexo/pkg/models"
)

// --- Leads ---

const leadColumns = `id, team_id, company_id, stage_id, name, email, phone, source, notes, label_ids, custom_fields, created_by, created_at, updated_at`

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.TeamID, &l.CompanyID, &l.StageID, &l.Name, &l.Email,
		&l.Phone, &l.Source, &l.Notes, &l.LabelIDs, &l.CustomFields,
		&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *models.Lead) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, team_id, company_id, stage_id, name, email, phone, source, notes, label_ids, custom_fields, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		lead.ID, lead.TeamID, lead.CompanyID, lead.StageID, lead.Name, lead.Email,
		lead.Phone, lead.Source, lead.Notes, lead.LabelIDs, lead.CustomFields,
		lead.CreatedBy, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id, teamID uuid.UUID) (*models.Lead, error) {
	l, err := scanLead(s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1 AND team_id = $2`, id, teamID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, err
}

func (s *PostgresStore) GetLeadByPhone(ctx context.Context, teamID uuid.UUID, phone string) (*models.Lead, error) {
	l, err := scanLead(s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE team_id = $1 AND phone = $2 ORDER BY created_at LIMIT 1`,
		teamID, phone))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get lead by phone: %w", err)
	}
	return l, err
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]*models.Lead, int, error) {
	conditions := []string{"team_id = $1"}
	args := []any{filter.TeamID}
	argIdx := 2

	if filter.CompanyID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", argIdx))
		args = append(args, filter.CompanyID)
		argIdx++
	}
	if filter.StageID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("stage_id = $%d", argIdx))
		args = append(args, filter.StageID)
		argIdx++
	}
	if filter.LabelID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(label_ids)", argIdx))
		args = append(args, filter.LabelID)
		argIdx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	limit, offset := normalizePage(filter.Limit, filter.Page)
	dataQuery := fmt.Sprintf(
		`SELECT `+leadColumns+` FROM leads WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, total, rows.Err()
}

// UpdateLead rewrites all mutable columns; the team_id predicate keeps the
// write inside the caller's tenant.
func (s *PostgresStore) UpdateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	l, err := scanLead(s.pool.QueryRow(ctx,
		`UPDATE leads SET
		   company_id = $3, stage_id = $4, name = $5, email = $6, phone = $7,
		   source = $8, notes = $9, label_ids = $10, custom_fields = $11, updated_at = NOW()
		 WHERE id = $1 AND team_id = $2
		 RETURNING `+leadColumns,
		lead.ID, lead.TeamID, lead.CompanyID, lead.StageID, lead.Name, lead.Email,
		lead.Phone, lead.Source, lead.Notes, lead.LabelIDs, lead.CustomFields))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return l, err
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Companies ---

const companyColumns = `id, team_id, name, website, phone, industry, custom_fields, created_by, created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.TeamID, &c.Name, &c.Website, &c.Phone, &c.Industry,
		&c.CustomFields, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, company *models.Company) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, team_id, name, website, phone, industry, custom_fields, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		company.ID, company.TeamID, company.Name, company.Website, company.Phone,
		company.Industry, company.CustomFields, company.CreatedBy,
		company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id, teamID uuid.UUID) (*models.Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1 AND team_id = $2`, id, teamID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, err
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error) {
	conditions := []string{"team_id = $1"}
	args := []any{filter.TeamID}
	argIdx := 2

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	limit, offset := normalizePage(filter.Limit, filter.Page)
	dataQuery := fmt.Sprintf(
		`SELECT `+companyColumns+` FROM companies WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx,
		`UPDATE companies SET
		   name = $3, website = $4, phone = $5, industry = $6, custom_fields = $7, updated_at = NOW()
		 WHERE id = $1 AND team_id = $2
		 RETURNING `+companyColumns,
		company.ID, company.TeamID, company.Name, company.Website, company.Phone,
		company.Industry, company.CustomFields))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update company: %w", err)
	}
	return c, err
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Pipelines ---

func (s *PostgresStore) CreatePipeline(ctx context.Context, p *models.Pipeline) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipelines (id, team_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.TeamID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPipeline(ctx context.Context, id, teamID uuid.UUID) (*models.Pipeline, error) {
	var p models.Pipeline
	err := s.pool.QueryRow(ctx,
		`SELECT id, team_id, name, description, created_at, updated_at
		 FROM pipelines WHERE id = $1 AND team_id = $2`, id, teamID,
	).Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPipelines(ctx context.Context, teamID uuid.UUID) ([]*models.Pipeline, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, team_id, name, description, created_at, updated_at
		 FROM pipelines WHERE team_id = $1 ORDER BY created_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*models.Pipeline
	for rows.Next() {
		var p models.Pipeline
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pipeline: %w", err)
		}
		pipelines = append(pipelines, &p)
	}
	return pipelines, rows.Err()
}

func (s *PostgresStore) DeletePipeline(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pipelines WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete pipeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateStage(ctx context.Context, st *models.PipelineStage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipeline_stages (id, team_id, pipeline_id, name, position, color, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.ID, st.TeamID, st.PipelineID, st.Name, st.Position, st.Color, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create stage: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStage(ctx context.Context, id, teamID uuid.UUID) (*models.PipelineStage, error) {
	var st models.PipelineStage
	err := s.pool.QueryRow(ctx,
		`SELECT id, team_id, pipeline_id, name, position, color, created_at, updated_at
		 FROM pipeline_stages WHERE id = $1 AND team_id = $2`, id, teamID,
	).Scan(&st.ID, &st.TeamID, &st.PipelineID, &st.Name, &st.Position,
		&st.Color, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) ListStages(ctx context.Context, pipelineID, teamID uuid.UUID) ([]*models.PipelineStage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, team_id, pipeline_id, name, position, color, created_at, updated_at
		 FROM pipeline_stages WHERE pipeline_id = $1 AND team_id = $2 ORDER BY position`, pipelineID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []*models.PipelineStage
	for rows.Next() {
		var st models.PipelineStage
		if err := rows.Scan(&st.ID, &st.TeamID, &st.PipelineID, &st.Name, &st.Position,
			&st.Color, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, &st)
	}
	return stages, rows.Err()
}

func (s *PostgresStore) UpdateStage(ctx context.Context, st *models.PipelineStage) (*models.PipelineStage, error) {
	var out models.PipelineStage
	err := s.pool.QueryRow(ctx,
		`UPDATE pipeline_stages SET name = $3, position = $4, color = $5, updated_at = NOW()
		 WHERE id = $1 AND team_id = $2
		 RETURNING id, team_id, pipeline_id, name, position, color, created_at, updated_at`,
		st.ID, st.TeamID, st.Name, st.Position, st.Color,
	).Scan(&out.ID, &out.TeamID, &out.PipelineID, &out.Name, &out.Position,
		&out.Color, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update stage: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) DeleteStage(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pipeline_stages WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Activities ---

const activityColumns = `id, team_id, lead_id, type, title, notes, due_at, completed_at, assigned_to, created_by, created_at, updated_at`

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(&a.ID, &a.TeamID, &a.LeadID, &a.Type, &a.Title, &a.Notes,
		&a.DueAt, &a.CompletedAt, &a.AssignedTo, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO activities (id, team_id, lead_id, type, title, notes, due_at, assigned_to, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.TeamID, a.LeadID, a.Type, a.Title, a.Notes, a.DueAt,
		a.AssignedTo, a.CreatedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetActivity(ctx context.Context, id, teamID uuid.UUID) (*models.Activity, error) {
	a, err := scanActivity(s.pool.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1 AND team_id = $2`, id, teamID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, err
}

func (s *PostgresStore) ListActivities(ctx context.Context, filter ActivityFilter) ([]*models.Activity, int, error) {
	conditions := []string{"team_id = $1"}
	args := []any{filter.TeamID}
	argIdx := 2

	if filter.LeadID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("lead_id = $%d", argIdx))
		args = append(args, filter.LeadID)
		argIdx++
	}
	if filter.Completed != nil {
		if *filter.Completed {
			conditions = append(conditions, "completed_at IS NOT NULL")
		} else {
			conditions = append(conditions, "completed_at IS NULL")
		}
	}
	if !filter.DueBefore.IsZero() {
		conditions = append(conditions, fmt.Sprintf("due_at <= $%d", argIdx))
		args = append(args, filter.DueBefore)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM activities WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	limit, offset := normalizePage(filter.Limit, filter.Page)
	dataQuery := fmt.Sprintf(
		`SELECT `+activityColumns+` FROM activities WHERE %s ORDER BY due_at NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}

func (s *PostgresStore) CompleteActivity(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE activities SET completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND team_id = $2 AND completed_at IS NULL`, id, teamID)
	if err != nil {
		return fmt.Errorf("complete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteActivity(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Labels ---

func (s *PostgresStore) CreateLabel(ctx context.Context, l *models.Label) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO labels (id, team_id, name, color, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.TeamID, l.Name, l.Color, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create label: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListLabels(ctx context.Context, teamID uuid.UUID) ([]*models.Label, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, team_id, name, color, created_at, updated_at
		 FROM labels WHERE team_id = $1 ORDER BY name`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.TeamID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, &l)
	}
	return labels, rows.Err()
}

// DeleteLabel removes the label and scrubs it from every lead's label_ids in
// the same transaction, so leads never carry references to deleted labels.
func (s *PostgresStore) DeleteLabel(ctx context.Context, id, teamID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete label: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM labels WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE leads SET label_ids = array_remove(label_ids, $1), updated_at = NOW()
		 WHERE team_id = $2 AND $1 = ANY(label_ids)`, id, teamID)
	if err != nil {
		return fmt.Errorf("detach label from leads: %w", err)
	}

	return tx.Commit(ctx)
}

// --- Custom field definitions ---

func (s *PostgresStore) CreateFieldDefinition(ctx context.Context, def *models.FieldDefinition) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO field_definitions (id, team_id, entity, name, type, options, required, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		def.ID, def.TeamID, def.Entity, def.Name, def.Type, def.Options,
		def.Required, def.CreatedAt, def.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create field definition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFieldDefinitions(ctx context.Context, teamID uuid.UUID, entity models.FieldEntity) ([]*models.FieldDefinition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, team_id, entity, name, type, options, required, created_at, updated_at
		 FROM field_definitions WHERE team_id = $1 AND entity = $2 ORDER BY created_at`, teamID, entity)
	if err != nil {
		return nil, fmt.Errorf("list field definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.FieldDefinition
	for rows.Next() {
		var d models.FieldDefinition
		if err := rows.Scan(&d.ID, &d.TeamID, &d.Entity, &d.Name, &d.Type, &d.Options,
			&d.Required, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan field definition: %w", err)
		}
		defs = append(defs, &d)
	}
	return defs, rows.Err()
}

func (s *PostgresStore) DeleteFieldDefinition(ctx context.Context, id, teamID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM field_definitions WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("delete field definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// normalizePage clamps pagination to sane bounds.
func normalizePage(limit, page int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

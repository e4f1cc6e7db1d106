package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

// Schema creates the catalog tables when they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS institutions (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	abbreviation        TEXT NOT NULL DEFAULT '',
	uses_custom_scoring BOOLEAN NOT NULL DEFAULT FALSE,
	position            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS programs (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	faculty              TEXT NOT NULL,
	duration             TEXT NOT NULL DEFAULT '',
	required_score       INTEGER NOT NULL,
	subject_requirements JSONB NOT NULL DEFAULT '[]',
	career_prospects     TEXT[] NOT NULL DEFAULT '{}',
	description          TEXT NOT NULL DEFAULT '',
	position             INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS program_assignment_rules (
	id                       SERIAL PRIMARY KEY,
	program_id               TEXT NOT NULL,
	mode                     TEXT NOT NULL DEFAULT '',
	excluded_institution_ids TEXT[] NOT NULL DEFAULT '{}',
	required_score_overrides JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS faculty_descriptions (
	name        TEXT PRIMARY KEY,
	description TEXT NOT NULL
);`

// PostgresSource reads the catalog from the catalog tables.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func (s *PostgresSource) Load(ctx context.Context) (*catalog.Dataset, error) {
	ds := &catalog.Dataset{}
	var err error

	if ds.Institutions, err = s.institutions(ctx); err != nil {
		return nil, fmt.Errorf("load institutions: %w", err)
	}
	if ds.Programs, err = s.programs(ctx); err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	if ds.Rules, err = s.rules(ctx); err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if ds.Faculties, err = s.facultyDescriptions(ctx); err != nil {
		return nil, fmt.Errorf("load faculty descriptions: %w", err)
	}

	if len(ds.Institutions) == 0 && len(ds.Programs) == 0 {
		return nil, ErrNotFound
	}
	return ds, nil
}

func (s *PostgresSource) institutions(ctx context.Context) ([]catalog.InstitutionRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, abbreviation, uses_custom_scoring
		FROM institutions ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.InstitutionRef
	for rows.Next() {
		var i catalog.InstitutionRef
		if err := rows.Scan(&i.ID, &i.Name, &i.Abbreviation, &i.UsesCustomScoring); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PostgresSource) programs(ctx context.Context) ([]catalog.Program, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, faculty, duration, required_score,
			subject_requirements, career_prospects, description
		FROM programs ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Program
	for rows.Next() {
		var p catalog.Program
		var reqJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.FacultyName, &p.DurationLabel, &p.RequiredScore,
			&reqJSON, &p.CareerProspects, &p.Description); err != nil {
			return nil, err
		}
		if len(reqJSON) > 0 {
			if err := json.Unmarshal(reqJSON, &p.SubjectRequirements); err != nil {
				return nil, fmt.Errorf("program %s subject requirements: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rules are returned in insertion order so first-rule-wins holds across sources.
func (s *PostgresSource) rules(ctx context.Context) ([]catalog.AssignmentRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT program_id, mode, excluded_institution_ids, required_score_overrides
		FROM program_assignment_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.AssignmentRule
	for rows.Next() {
		var r catalog.AssignmentRule
		var mode string
		var overridesJSON []byte
		if err := rows.Scan(&r.ProgramID, &mode, &r.ExcludedInstitutionIDs, &overridesJSON); err != nil {
			return nil, err
		}
		r.Mode = catalog.AssignmentMode(mode)
		if len(overridesJSON) > 0 {
			if err := json.Unmarshal(overridesJSON, &r.RequiredScoreOverrides); err != nil {
				return nil, fmt.Errorf("rule for %s overrides: %w", r.ProgramID, err)
			}
		}
		if len(r.RequiredScoreOverrides) == 0 {
			r.RequiredScoreOverrides = nil
		}
		if len(r.ExcludedInstitutionIDs) == 0 {
			r.ExcludedInstitutionIDs = nil
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresSource) facultyDescriptions(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, description FROM faculty_descriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, desc string
		if err := rows.Scan(&name, &desc); err != nil {
			return nil, err
		}
		out[name] = desc
	}
	if len(out) == 0 {
		return nil, rows.Err()
	}
	return out, rows.Err()
}

// Import replaces the catalog tables with ds inside one transaction.
func (s *PostgresSource) Import(ctx context.Context, ds *catalog.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE institutions, programs, program_assignment_rules, faculty_descriptions RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	for i, inst := range ds.Institutions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO institutions (id, name, abbreviation, uses_custom_scoring, position)
			VALUES ($1, $2, $3, $4, $5)`,
			inst.ID, inst.Name, inst.Abbreviation, inst.UsesCustomScoring, i); err != nil {
			return fmt.Errorf("insert institution %s: %w", inst.ID, err)
		}
	}
	for i, p := range ds.Programs {
		reqJSON, err := json.Marshal(p.SubjectRequirements)
		if err != nil {
			return err
		}
		if p.SubjectRequirements == nil {
			reqJSON = []byte("[]")
		}
		prospects := p.CareerProspects
		if prospects == nil {
			prospects = []string{}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO programs (id, name, faculty, duration, required_score,
				subject_requirements, career_prospects, description, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.Name, p.FacultyName, p.DurationLabel, p.RequiredScore,
			reqJSON, prospects, p.Description, i); err != nil {
			return fmt.Errorf("insert program %s: %w", p.ID, err)
		}
	}
	for _, r := range ds.Rules {
		overrides := r.RequiredScoreOverrides
		if overrides == nil {
			overrides = map[string]int{}
		}
		overridesJSON, err := json.Marshal(overrides)
		if err != nil {
			return err
		}
		excluded := r.ExcludedInstitutionIDs
		if excluded == nil {
			excluded = []string{}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO program_assignment_rules (program_id, mode, excluded_institution_ids, required_score_overrides)
			VALUES ($1, $2, $3, $4)`,
			r.ProgramID, string(r.Mode), excluded, overridesJSON); err != nil {
			return fmt.Errorf("insert rule for %s: %w", r.ProgramID, err)
		}
	}
	for name, desc := range ds.Faculties {
		if _, err := tx.Exec(ctx, `INSERT INTO faculty_descriptions (name, description) VALUES ($1, $2)`, name, desc); err != nil {
			return fmt.Errorf("insert faculty description %s: %w", name, err)
		}
	}
	return tx.Commit(ctx)
}

//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

func setupTestDB(t *testing.T) *PostgresSource {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresSource(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE institutions, programs, program_assignment_rules, faculty_descriptions RESTART IDENTITY")
		s.Close()
	})

	return s
}

func TestPostgresEmptyIsNotFound(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	_, _ = s.pool.Exec(ctx, "TRUNCATE institutions, programs, program_assignment_rules, faculty_descriptions RESTART IDENTITY")

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresImportAndLoad(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	ds := &catalog.Dataset{
		Institutions: []catalog.InstitutionRef{
			{ID: "x", Name: "Institution X", Abbreviation: "X"},
			{ID: "y", Name: "Institution Y", Abbreviation: "Y", UsesCustomScoring: true},
		},
		Programs: []catalog.Program{
			{ID: "p", Name: "BSc", FacultyName: "Science", DurationLabel: "3 years", RequiredScore: 24,
				SubjectRequirements: []catalog.SubjectRequirement{{Name: "Mathematics", MinLevel: 4, Required: true}},
				CareerProspects:     []string{"Analyst"}},
			{ID: "q", Name: "BA", FacultyName: "Humanities", RequiredScore: 22},
		},
		Rules: []catalog.AssignmentRule{
			{ProgramID: "p", Mode: catalog.ModeAllExcept, ExcludedInstitutionIDs: []string{"x"},
				RequiredScoreOverrides: map[string]int{"y": 30}},
			{ProgramID: "q", Mode: catalog.ModeAll},
		},
		Faculties: map[string]string{"Science": "Natural sciences."},
	}
	require.NoError(t, s.Import(ctx, ds))

	got, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, ds.Institutions, got.Institutions)
	assert.Equal(t, ds.Programs[0], got.Programs[0])
	assert.Equal(t, "BA", got.Programs[1].Name)
	assert.Equal(t, ds.Rules, got.Rules)
	assert.Equal(t, ds.Faculties, got.Faculties)
}

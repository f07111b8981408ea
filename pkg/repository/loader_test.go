package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func validRepository() Repository {
	return Repository{
		Meta: Meta{
			Name:     "Test User",
			Location: "Test City",
			Email:    "test@example.com",
			Education: []Education{
				{Degree: "BS Computer Science", School: "Test University", Year: "2012"},
			},
		},
		Positions: []Position{
			{
				ID:        "acme-staff",
				Title:     "Staff Engineer",
				Company:   "Acme Corp",
				StartDate: "2021-01",
				ImpactStatements: []ImpactStatement{
					{ID: "acme-1", Text: "Led migration of 40 services", Tags: []string{"migration"}},
					{ID: "acme-2", Text: "Mentored 5 engineers"},
				},
			},
			{
				ID:        "globex-senior",
				Title:     "Senior Engineer",
				Company:   "Globex",
				StartDate: "2017-03",
				EndDate:   strPtr("2020-12"),
				ImpactStatements: []ImpactStatement{
					{ID: "globex-1", Text: "Built the billing pipeline"},
				},
			},
		},
	}
}

func TestLoad(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "repository.json")

	data, err := json.MarshalIndent(validRepository(), "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(repoPath, data, 0600))

	loaded, err := Load(repoPath)
	require.NoError(t, err)

	require.Len(t, loaded.Positions, 2)
	assert.Equal(t, "acme-staff", loaded.Positions[0].ID)
	assert.Equal(t, "Test User", loaded.Meta.Name)
	assert.True(t, loaded.Positions[0].IsCurrent(), "null end_date is a current position")
}

func TestLoadFixture(t *testing.T) {
	loaded, err := Load(filepath.Join("testdata", "repository.json"))
	require.NoError(t, err)
	assert.NotZero(t, loaded.StatementCount())
}

func TestLoadErrors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte("not valid json"), 0600))

	_, err := Load("/nonexistent/repository.json")
	assert.Error(t, err)

	_, err = Load(invalid)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *Repository)
		wantError bool
	}{
		{
			name:      "valid repository",
			mutate:    func(r *Repository) {},
			wantError: false,
		},
		{
			name:      "missing name",
			mutate:    func(r *Repository) { r.Meta.Name = "" },
			wantError: true,
		},
		{
			name:      "no positions",
			mutate:    func(r *Repository) { r.Positions = nil },
			wantError: true,
		},
		{
			name:      "duplicate position id",
			mutate:    func(r *Repository) { r.Positions[1].ID = "acme-staff" },
			wantError: true,
		},
		{
			name: "duplicate statement id within position",
			mutate: func(r *Repository) {
				r.Positions[0].ImpactStatements[1].ID = "acme-1"
			},
			wantError: true,
		},
		{
			name: "same statement id across positions",
			mutate: func(r *Repository) {
				r.Positions[1].ImpactStatements[0].ID = "acme-1"
			},
			wantError: false,
		},
		{
			name:      "partial start date",
			mutate:    func(r *Repository) { r.Positions[0].StartDate = "2021" },
			wantError: true,
		},
		{
			name:      "malformed end date",
			mutate:    func(r *Repository) { r.Positions[1].EndDate = strPtr("Dec 2020") },
			wantError: true,
		},
		{
			name:      "empty end date means current",
			mutate:    func(r *Repository) { r.Positions[1].EndDate = strPtr("") },
			wantError: false,
		},
		{
			name:      "missing company",
			mutate:    func(r *Repository) { r.Positions[0].Company = "" },
			wantError: true,
		},
		{
			name:      "invalid email",
			mutate:    func(r *Repository) { r.Meta.Email = "not-an-email" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := validRepository()
			tt.mutate(&repo)
			err := repo.Validate()
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2021-01", "January 2021"},
		{"2019-12", "December 2019"},
		{"2019", "2019"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.input))
		})
	}
}

func TestDateRange(t *testing.T) {
	repo := validRepository()

	assert.Equal(t, "January 2021 - Present", repo.Positions[0].DateRange())
	assert.Equal(t, "March 2017 - December 2020", repo.Positions[1].DateRange())
}

func TestActiveWithin(t *testing.T) {
	repo := validRepository()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, repo.Positions[0].ActiveWithin(5, now), "current position is recent")
	assert.True(t, repo.Positions[1].ActiveWithin(6, now), "ended 2020-12, within 6 years")
	assert.False(t, repo.Positions[1].ActiveWithin(3, now), "ended 2020-12, older than 3 years")
}

func TestPositionLookup(t *testing.T) {
	repo := validRepository()

	p, ok := repo.PositionByID("globex-senior")
	require.True(t, ok)
	assert.Equal(t, "Globex", p.Company)

	p, ok = repo.PositionByTitle("  staff engineer ")
	require.True(t, ok)
	assert.Equal(t, "acme-staff", p.ID)

	_, ok = repo.PositionByID("missing")
	assert.False(t, ok)
}

package repository

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Load reads the career repository from a JSON file.
func Load(path string) (repo Repository, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read repository file: %s", path)
		return repo, err
	}

	repo, err = Parse(fileData)
	if err != nil {
		err = errors.Wrapf(err, "invalid repository file: %s", path)
		return repo, err
	}

	return repo, err
}

// Parse decodes and validates repository JSON.
func Parse(data []byte) (repo Repository, err error) {
	err = json.Unmarshal(data, &repo)
	if err != nil {
		err = errors.Wrap(err, "failed to parse repository JSON")
		return repo, err
	}

	err = repo.Validate()
	if err != nil {
		err = errors.Wrap(err, "repository validation failed")
		return repo, err
	}

	return repo, err
}

// Validate checks that the repository is well-formed.
func (r *Repository) Validate() (err error) {
	err = validator.New().Struct(r)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(r.Positions))
	for i, position := range r.Positions {
		if seen[position.ID] {
			err = errors.Errorf("duplicate position id %q at index %d", position.ID, i)
			return err
		}
		seen[position.ID] = true

		err = position.Validate()
		if err != nil {
			return err
		}
	}

	return err
}

// Validate checks a single position's dates and statement ids.
func (p *Position) Validate() (err error) {
	_, err = ParseYearMonth(p.StartDate)
	if err != nil {
		err = errors.Wrapf(err, "position %s start_date", p.ID)
		return err
	}

	if !p.IsCurrent() {
		_, err = ParseYearMonth(*p.EndDate)
		if err != nil {
			err = errors.Wrapf(err, "position %s end_date", p.ID)
			return err
		}
	}

	statementIDs := make(map[string]bool, len(p.ImpactStatements))
	for _, statement := range p.ImpactStatements {
		if statementIDs[statement.ID] {
			err = errors.Errorf("position %s has duplicate impact statement id %q", p.ID, statement.ID)
			return err
		}
		statementIDs[statement.ID] = true
	}

	return err
}

package repository

import "strings"

// Repository represents the complete career record.
type Repository struct {
	Meta      Meta       `json:"meta"`
	Positions []Position `json:"positions" validate:"required,min=1,dive"`
}

// Meta represents personal and contact information.
type Meta struct {
	Name      string      `json:"name" validate:"required"`
	Location  string      `json:"location,omitempty"`
	Email     string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string      `json:"phone,omitempty"`
	LinkedIn  string      `json:"linkedin,omitempty"`
	Website   string      `json:"website,omitempty"`
	Education []Education `json:"education" validate:"dive"`
}

// Education represents a single degree entry.
type Education struct {
	Degree   string `json:"degree" validate:"required"`
	School   string `json:"school" validate:"required"`
	Location string `json:"location,omitempty"`
	Year     string `json:"year,omitempty"`
}

// Position represents one job held.
type Position struct {
	ID               string            `json:"id" validate:"required"`
	Title            string            `json:"title" validate:"required"`
	Company          string            `json:"company" validate:"required"`
	Location         string            `json:"location,omitempty"`
	StartDate        string            `json:"start_date" validate:"required"`
	EndDate          *string           `json:"end_date"`
	Context          string            `json:"context,omitempty"`
	Categories       []Category        `json:"categories"`
	ImpactStatements []ImpactStatement `json:"impact_statements" validate:"dive"`
	Tags             []string          `json:"tags"`
}

// Category groups raw accomplishment text under a theme.
type Category struct {
	Name   string   `json:"name"`
	Blocks []string `json:"blocks"`
}

// ImpactStatement is one atomic, taggable accomplishment.
type ImpactStatement struct {
	ID   string   `json:"id" validate:"required"`
	Text string   `json:"text" validate:"required"`
	Tags []string `json:"tags"`
}

// IsCurrent reports whether the position has no end date.
func (p *Position) IsCurrent() (current bool) {
	current = p.EndDate == nil || *p.EndDate == ""
	return current
}

// PositionByID returns the position with the given id.
func (r *Repository) PositionByID(id string) (position Position, ok bool) {
	for _, p := range r.Positions {
		if p.ID == id {
			position = p
			ok = true
			return position, ok
		}
	}
	return position, ok
}

// PositionByTitle returns the first position whose title matches, ignoring case.
func (r *Repository) PositionByTitle(title string) (position Position, ok bool) {
	for _, p := range r.Positions {
		if strings.EqualFold(strings.TrimSpace(p.Title), strings.TrimSpace(title)) {
			position = p
			ok = true
			return position, ok
		}
	}
	return position, ok
}

// StatementCount returns the total number of impact statements.
func (r *Repository) StatementCount() (count int) {
	for _, p := range r.Positions {
		count += len(p.ImpactStatements)
	}
	return count
}

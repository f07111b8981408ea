// Package matching checks matched statements against the repository they
// were drawn from.
package matching

import (
	"sort"

	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/repository"
)

// RepairScore is the relevance score given to statements added by Repair.
const RepairScore = 0

// RepairReason is the match reason given to statements added by Repair.
const RepairReason = "Added to keep every position represented"

// Report describes how a matched set covers the repository.
type Report struct {
	// PositionCounts maps position id to matched statement count.
	PositionCounts map[string]int `json:"position_counts"`
	// MissingPositions lists repository positions with no matched statement, in repository order.
	MissingPositions []string `json:"missing_positions"`
	// UnknownPositions lists referenced position ids not present in the repository.
	UnknownPositions []string `json:"unknown_positions"`
	// OutOfRange lists indexes of blocks whose score is outside [0,100].
	OutOfRange []int `json:"out_of_range"`
	Total      int   `json:"total"`
}

// Complete reports whether every position is represented and every reference is valid.
func (r *Report) Complete() (ok bool) {
	ok = len(r.MissingPositions) == 0 && len(r.UnknownPositions) == 0 && len(r.OutOfRange) == 0
	return ok
}

// Check builds a coverage report for blocks against repo.
func Check(blocks []llm.MatchedBlock, repo repository.Repository) (report Report) {
	report = Report{
		PositionCounts:   make(map[string]int, len(repo.Positions)),
		MissingPositions: make([]string, 0),
		UnknownPositions: make([]string, 0),
		OutOfRange:       make([]int, 0),
		Total:            len(blocks),
	}

	known := make(map[string]bool, len(repo.Positions))
	for _, p := range repo.Positions {
		known[p.ID] = true
	}

	unknown := make(map[string]bool)
	for i, block := range blocks {
		if block.RelevanceScore < 0 || block.RelevanceScore > 100 {
			report.OutOfRange = append(report.OutOfRange, i)
		}
		if !known[block.PositionID] {
			unknown[block.PositionID] = true
			continue
		}
		report.PositionCounts[block.PositionID]++
	}

	for _, p := range repo.Positions {
		if report.PositionCounts[p.ID] == 0 {
			report.MissingPositions = append(report.MissingPositions, p.ID)
		}
	}

	for id := range unknown {
		report.UnknownPositions = append(report.UnknownPositions, id)
	}
	sort.Strings(report.UnknownPositions)

	return report
}

// Repair returns blocks with out-of-range scores clamped, unknown position
// references dropped, and up to perPosition leading statements appended for
// each missing position. The input slice is not modified.
func Repair(blocks []llm.MatchedBlock, repo repository.Repository, perPosition int) (repaired []llm.MatchedBlock, report Report) {
	if perPosition < 1 {
		perPosition = 1
	}

	known := make(map[string]bool, len(repo.Positions))
	for _, p := range repo.Positions {
		known[p.ID] = true
	}

	repaired = make([]llm.MatchedBlock, 0, len(blocks))
	for _, block := range blocks {
		if !known[block.PositionID] {
			continue
		}
		block.RelevanceScore = clampScore(block.RelevanceScore)
		repaired = append(repaired, block)
	}

	missing := Check(repaired, repo).MissingPositions
	for _, id := range missing {
		position, _ := repo.PositionByID(id)
		for i, statement := range position.ImpactStatements {
			if i >= perPosition {
				break
			}
			repaired = append(repaired, llm.MatchedBlock{
				PositionID:     position.ID,
				PositionTitle:  position.Title,
				Company:        position.Company,
				StatementID:    statement.ID,
				StatementText:  statement.Text,
				MatchReason:    RepairReason,
				RelevanceScore: RepairScore,
				Tags:           append([]string(nil), statement.Tags...),
			})
		}
	}

	report = Check(repaired, repo)
	return repaired, report
}

// FilterByScore returns blocks scoring at or above threshold, preserving order.
func FilterByScore(blocks []llm.MatchedBlock, threshold int) (filtered []llm.MatchedBlock) {
	filtered = make([]llm.MatchedBlock, 0, len(blocks))
	for _, block := range blocks {
		if block.RelevanceScore >= threshold {
			filtered = append(filtered, block)
		}
	}
	return filtered
}

func clampScore(score int) (clamped int) {
	clamped = score
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}
	return clamped
}

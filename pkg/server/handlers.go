package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/career-tailor/pkg/llm"
	"github.com/nikogura/career-tailor/pkg/pipeline"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/resume"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalyzeRequest carries pasted job description text.
type AnalyzeRequest struct {
	JobDescription string `json:"jobDescription"`
}

// MatchRequest carries a prior analysis.
type MatchRequest struct {
	JDAnalysis *llm.JDAnalysis `json:"jdAnalysis"`
}

// GenerateRequest selects one document to generate.
type GenerateRequest struct {
	Type          string             `json:"type"`
	JDAnalysis    *llm.JDAnalysis    `json:"jd_analysis"`
	MatchedBlocks []llm.MatchedBlock `json:"matched_blocks"`
}

// GenerateResponse is one generated document.
type GenerateResponse struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

// ExtractRequest carries a transcript. With Stage set the extracted position
// is also added to the pending file.
type ExtractRequest struct {
	Transcript string `json:"transcript"`
	Stage      bool   `json:"stage"`
}

// ExtractResponse is an extracted position.
type ExtractResponse struct {
	Position repository.Position `json:"position"`
	Staged   bool                `json:"staged"`
}

// ParseRequest carries resume markdown.
type ParseRequest struct {
	Markdown string `json:"markdown"`
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AnalyzeJD derives a JDAnalysis from job description text.
func (s *Server) AnalyzeJD(c *gin.Context) {
	var req AnalyzeRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		s.badRequest(c, "Job description is required")
		return
	}

	analysis, err := s.pipeline.Analyze(c.Request.Context(), req.JobDescription)
	if err != nil {
		s.stageFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Match selects impact statements for a JDAnalysis.
func (s *Server) Match(c *gin.Context) {
	var req MatchRequest
	if !s.bind(c, &req) {
		return
	}
	if req.JDAnalysis == nil {
		s.badRequest(c, "JD analysis is required")
		return
	}

	result, err := s.pipeline.Match(c.Request.Context(), *req.JDAnalysis)
	if err != nil {
		s.stageFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Generate produces one document.
func (s *Server) Generate(c *gin.Context) {
	var req GenerateRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Type == "" || req.JDAnalysis == nil || req.MatchedBlocks == nil {
		s.badRequest(c, "type, jd_analysis, and matched_blocks are required")
		return
	}

	docType, err := llm.ParseDocumentType(req.Type)
	if err != nil {
		s.badRequest(c, "Invalid generation type")
		return
	}

	text, err := s.pipeline.GenerateOne(c.Request.Context(), docType, *req.JDAnalysis, req.MatchedBlocks)
	if err != nil {
		s.stageFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{Content: text, Type: string(docType)})
}

// GenerateAll produces all three documents or none.
func (s *Server) GenerateAll(c *gin.Context) {
	var req GenerateRequest
	if !s.bind(c, &req) {
		return
	}
	if req.JDAnalysis == nil || req.MatchedBlocks == nil {
		s.badRequest(c, "jd_analysis and matched_blocks are required")
		return
	}

	docs, err := s.pipeline.Generate(c.Request.Context(), *req.JDAnalysis, req.MatchedBlocks)
	if err != nil {
		s.stageFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

// Tailor runs every stage and stores the result.
func (s *Server) Tailor(c *gin.Context) {
	var req AnalyzeRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		s.badRequest(c, "Job description is required")
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), req.JobDescription)
	if err != nil {
		s.stageFailure(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ExtractExperience turns a transcript into a position.
func (s *Server) ExtractExperience(c *gin.Context) {
	var req ExtractRequest
	if !s.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		s.badRequest(c, "Invalid transcript")
		return
	}
	if req.Stage && s.pending == nil {
		s.unavailable(c, "pending positions are not configured")
		return
	}

	position, err := s.extractor.ExtractExperience(c.Request.Context(), req.Transcript)
	if err != nil {
		var malformed *llm.MalformedResponseError
		message := "Extraction failed"
		if errors.As(err, &malformed) {
			message = "Failed to parse extracted data"
		}
		s.logger.WithFields(logrus.Fields{"error": err.Error()}).Error("extract experience failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
		return
	}

	resp := ExtractResponse{Position: position}
	if req.Stage {
		reserved := make([]string, 0)
		for _, p := range s.pipeline.Repository().Positions {
			reserved = append(reserved, p.ID)
		}

		resp.Position, err = s.pending.Add(c.Request.Context(), position, reserved)
		if err != nil {
			s.internalError(c, err, "Failed to save position")
			return
		}
		resp.Staged = true
	}

	c.JSON(http.StatusOK, resp)
}

// ListPending lists positions waiting to be merged into the repository.
func (s *Server) ListPending(c *gin.Context) {
	if s.pending == nil {
		s.unavailable(c, "pending positions are not configured")
		return
	}

	positions, err := s.pending.List(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "Failed to list pending positions")
		return
	}

	c.JSON(http.StatusOK, positions)
}

// ParseResume converts resume markdown into a ParsedResume.
func (s *Server) ParseResume(c *gin.Context) {
	var req ParseRequest
	if !s.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, resume.Parse(req.Markdown))
}

// ListAnalyses lists stored analyses, newest first.
func (s *Server) ListAnalyses(c *gin.Context) {
	if !s.hasAnalyses(c) {
		return
	}

	analyses, err := s.analyses.List(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "Failed to list analyses")
		return
	}

	c.JSON(http.StatusOK, analyses)
}

// GetAnalysis returns one stored analysis.
func (s *Server) GetAnalysis(c *gin.Context) {
	if !s.hasAnalyses(c) {
		return
	}

	analysis, err := store.Find(c.Request.Context(), s.analyses, c.Param("id"))
	if err != nil {
		s.storeFailure(c, err, "Failed to load analysis")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// CreateAnalysis stores a complete analysis produced elsewhere.
func (s *Server) CreateAnalysis(c *gin.Context) {
	if !s.hasAnalyses(c) {
		return
	}

	var analysis store.Analysis
	if !s.bind(c, &analysis) {
		return
	}

	err := analysis.Validate()
	if err != nil {
		s.badRequest(c, "Analysis is incomplete")
		return
	}

	err = s.analyses.Append(c.Request.Context(), analysis)
	if err != nil {
		s.storeFailure(c, err, "Failed to save analysis")
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

// DeleteAnalysis removes a stored analysis.
func (s *Server) DeleteAnalysis(c *gin.Context) {
	if !s.hasAnalyses(c) {
		return
	}

	err := s.analyses.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeFailure(c, err, "Failed to delete analysis")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) bind(c *gin.Context, target interface{}) (ok bool) {
	err := c.ShouldBindJSON(target)
	if err != nil {
		s.badRequest(c, "Invalid JSON body")
		return ok
	}
	ok = true
	return ok
}

func (s *Server) hasAnalyses(c *gin.Context) (ok bool) {
	if s.analyses == nil {
		s.unavailable(c, "analysis history is not configured")
		return ok
	}
	ok = true
	return ok
}

func (s *Server) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func (s *Server) unavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: message})
}

func (s *Server) internalError(c *gin.Context, err error, message string) {
	s.logger.WithFields(logrus.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	}).Error(message)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// stageFailure answers 400 for invalid input and a generic retry message for
// every other stage failure. Model output is never echoed to the client.
func (s *Server) stageFailure(c *gin.Context, err error) {
	var invalid *llm.InvalidInputError
	if errors.As(err, &invalid) {
		s.badRequest(c, invalid.Error())
		return
	}

	message := "Something went wrong. Please try again."
	fields := logrus.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		message = stageErr.Message()
		fields["stage"] = stageErr.Stage
	}

	s.logger.WithFields(fields).Error("stage failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

func (s *Server) storeFailure(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Analysis not found"})
	case errors.Is(err, store.ErrExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Analysis already exists"})
	default:
		s.internalError(c, err, message)
	}
}

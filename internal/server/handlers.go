package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/career-analyzer/internal/catalog"
	"github.com/jonathan/career-analyzer/internal/rendering"
	"github.com/jonathan/career-analyzer/internal/schemas"
	"github.com/jonathan/career-analyzer/internal/types"
)

// multipartOverhead allows for multipart framing around an upload at the size limit.
const multipartOverhead = 1 << 20

// maxJSONBody bounds analysis payloads posted for export and narrative generation.
const maxJSONBody = 5 << 20

// handleParseResume parses an uploaded PDF or DOCX into bullets.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	bullets, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, bullets)
}

// parseUpload reads the multipart "file" field and runs the parser on it.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) ([]types.BulletPoint, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, maxBytes
		}
		return nil, &ErrValidation{Message: "expected a multipart upload with a file field"}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ErrValidation{Message: "file is required"}
	}
	defer func() { _ = file.Close() }()

	bullets, err := s.parser.Parse(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		return nil, err
	}
	if bullets == nil {
		bullets = []types.BulletPoint{}
	}
	return bullets, nil
}

// readResult validates a posted analysis against the schema and decodes it.
func (s *Server) readResult(w http.ResponseWriter, r *http.Request) (*types.AnalysisResult, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.AnalysisResult, body); err != nil {
		return nil, fromValidator("invalid analysis result", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ErrValidation{Message: "invalid analysis result: " + err.Error()}
	}
	if result.OnboardingData != nil {
		if err := s.validate.Struct(result.OnboardingData); err != nil {
			return nil, fromValidator("invalid onboarding data", err)
		}
	}
	return &result, nil
}

// handleExport renders a posted analysis as a JSON or PDF download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := rendering.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.readResult(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, format, result)
}

// export renders result in format and writes it as an attachment.
func (s *Server) export(w http.ResponseWriter, r *http.Request, format rendering.Format, result *types.AnalysisResult) {
	var (
		data []byte
		err  error
	)
	switch format {
	case rendering.FormatPDF:
		data, err = s.pdf.Render(r.Context(), result)
	default:
		data, err = rendering.ExportJSON(result)
	}
	s.metrics.ObserveExport(string(format), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", rendering.ContentDisposition(format, s.now()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write export", "format", format, "error", err)
	}
}

// handleNarrative generates narrative guidance for a posted analysis.
func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	result, err := s.readResult(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.narrative.Generate(r.Context(), result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

type catalogResponse struct {
	Bins          []types.BinConfig `json:"bins"`
	CareerValues  []string          `json:"career_values"`
	DefiningWords []string          `json:"defining_words"`
}

// handleCatalog returns the bins and onboarding vocabularies.
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, catalogResponse{
		Bins:          catalog.Bins(),
		CareerValues:  catalog.CareerValues(),
		DefiningWords: catalog.DefiningWords(),
	})
}

package server

import (
	"net/http"

	"github.com/jonathan/career-analyzer/internal/formatting"
	"github.com/jonathan/career-analyzer/internal/rendering"
	"github.com/jonathan/career-analyzer/internal/server/middleware"
	"github.com/jonathan/career-analyzer/internal/session"
	"github.com/jonathan/career-analyzer/internal/types"
	"github.com/jonathan/career-analyzer/internal/workflow"
)

// maxActionBody bounds the small JSON bodies of workflow actions.
const maxActionBody = 64 << 10

// sessionHandler handles a request for an authenticated, live session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves the session named by the token claims.
func (s *Server) withSession(h sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := middleware.GetSessionID(r)
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, sess)
	})
}

type bulletResponse struct {
	Applied bool               `json:"applied"`
	Bullet  *types.BulletPoint `json:"bullet,omitempty"`
	State   workflow.State     `json:"state"`
}

// act runs a categorization-style action and reports whether it applied.
// Misses are not errors.
func (s *Server) act(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*workflow.Workflow) (bool, error)) {
	var resp types.ActionResponse
	err := sess.Do(func(wf *workflow.Workflow) error {
		applied, err := fn(wf)
		if err != nil {
			return err
		}
		resp = types.ActionResponse{Applied: applied, State: wf.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// step runs a phase-level operation and returns the resulting state.
func (s *Server) step(w http.ResponseWriter, r *http.Request, sess *session.Session, fn func(*workflow.Workflow) error) {
	var state workflow.State
	err := sess.Do(func(wf *workflow.Workflow) error {
		if err := fn(wf); err != nil {
			return err
		}
		state = wf.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleCreateSession starts a workflow and returns its bearer token.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	token, err := s.jwtService.GenerateToken(sess.ID)
	if err != nil {
		s.sessions.Delete(sess.ID)
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, types.SessionResponse{Token: token, State: sess.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload parses a resume outside the session lock. A reset or second
// upload while parsing makes this result stale.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var ticket workflow.Ticket
	if err := sess.Do(func(wf *workflow.Workflow) (err error) {
		ticket, err = wf.BeginUpload()
		return err
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	bullets, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.step(w, r, sess, func(wf *workflow.Workflow) error {
		return wf.CompleteUpload(ticket, bullets)
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.step(w, r, sess, (*workflow.Workflow).Back)
}

func (s *Server) handleAddBullet(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var resp bulletResponse
	err := sess.Do(func(wf *workflow.Workflow) error {
		b, err := wf.AddBullet()
		if err != nil {
			return err
		}
		resp = bulletResponse{Applied: true, Bullet: &b, State: wf.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleEditBullet replaces a preview bullet's text. Markup in the html field
// carries bold and italic runs; plain text resets formatting.
func (s *Server) handleEditBullet(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req types.EditBulletRequest
	if err := decodeJSON(w, r, maxActionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")

	if req.HTML != "" {
		text, f, err := formatting.FromHTML(req.HTML)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Message: "invalid bullet markup: " + err.Error()})
			return
		}
		s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
			return wf.EditBulletFormatted(id, text, f)
		})
		return
	}
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.EditBullet(id, req.Text)
	})
}

func (s *Server) handleDeletePreviewBullet(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.DeleteBullet(id)
	})
}

func (s *Server) handleConfirmPreview(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.step(w, r, sess, (*workflow.Workflow).ConfirmPreview)
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req types.DragStartRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.DragStart(req.BulletID)
	})
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req types.DragEndRequest
	if err := decodeJSON(w, r, maxActionBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.DragEnd(req.BinID)
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req types.MoveRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	binID := r.PathValue("bin_id")
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.Move(req.BulletID, binID)
	})
}

func (s *Server) handleRemoveFromBin(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	binID, id := r.PathValue("bin_id"), r.PathValue("id")
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.RemoveFromBin(binID, id)
	})
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	var resp bulletResponse
	err := sess.Do(func(wf *workflow.Workflow) error {
		dup, ok, err := wf.Duplicate(id)
		if err != nil {
			return err
		}
		resp = bulletResponse{Applied: ok, State: wf.Snapshot()}
		if ok {
			resp.Bullet = &dup
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteDuplicate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	s.act(w, r, sess, func(wf *workflow.Workflow) (bool, error) {
		return wf.DeleteDuplicate(id)
	})
}

// handleComplete finalizes categorization and computes the analytics.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.step(w, r, sess, func(wf *workflow.Workflow) error {
		_, err := wf.Finalize()
		return err
	})
}

// handleOnboarding records the onboarding answers for the summary.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var data types.OnboardingData
	if err := decodeJSON(w, r, maxActionBody, &data); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Struct(&data); err != nil {
		s.writeError(w, r, fromValidator("invalid onboarding data", err))
		return
	}
	s.step(w, r, sess, func(wf *workflow.Workflow) error {
		return wf.SetOnboarding(data)
	})
}

// handleSessionNarrative generates narrative guidance for the finalized result.
// The model call runs outside the session lock; a reset meanwhile discards it.
func (s *Server) handleSessionNarrative(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var (
		input  *types.AnalysisResult
		ticket workflow.Ticket
	)
	if err := sess.Do(func(wf *workflow.Workflow) (err error) {
		if input, err = wf.NarrativeInput(); err != nil {
			return err
		}
		ticket, err = wf.BeginNarrative()
		return err
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.narrative.Generate(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := sess.Do(func(wf *workflow.Workflow) error {
		return wf.CompleteNarrative(ticket, resp)
	}); err != nil {
		s.logger.Info("discarding stale narrative", "session", sess.ID)
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSessionExport downloads the stored result of a finished workflow.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	format, err := rendering.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var result *types.AnalysisResult
	if err := sess.Do(func(wf *workflow.Workflow) error {
		if result = wf.Result(); result == nil {
			return &workflow.PhaseError{Op: "export", Phase: wf.Phase(), Want: workflow.PhaseSummary}
		}
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, format, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.step(w, r, sess, func(wf *workflow.Workflow) error {
		wf.Reset()
		return nil
	})
}

// decodeValid decodes a JSON body and validates its struct tags.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, maxActionBody, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		return fromValidator("invalid request", err)
	}
	return nil
}

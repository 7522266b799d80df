package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "embed"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/wizard"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

// Engine is the part of *stepwise.Engine the handler drives.
type Engine interface {
	Index() string
	Show(ctx context.Context, sessionID, key string) (*stepwise.View, error)
	Update(ctx context.Context, sessionID, key string, params map[string]any) (*stepwise.Outcome, error)
	Review(ctx context.Context, sessionID string) (*stepwise.Review, error)
	Reset(ctx context.Context, sessionID string) error
	Registry() *wizard.Registry
}

// WizardInfo is the body of GET /wizard.
type WizardInfo struct {
	Name  string   `json:"name"`
	Index string   `json:"index"`
	Steps []string `json:"steps"`
}

// UpdateRequest is the body of PUT /sessions/{session}/steps/{key}.
type UpdateRequest struct {
	Attributes map[string]any `json:"attributes"`
}

// Server serves one wizard.
type Server struct {
	Engine Engine
	logger *slog.Logger
	router routers.Router
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Spec returns the OpenAPI document served at /openapi.yaml.
func Spec() []byte { return rawSpec }

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler. Requests matching a documented operation are
// validated against the OpenAPI document before they reach the Engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s := &Server{Engine: engine, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.router, err = legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(s.validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/wizard", s.GetWizard)
	r.Delete("/sessions/{session}", s.ResetSession)
	r.Get("/sessions/{session}/review", s.GetReview)
	r.Get("/sessions/{session}/steps/{key}", s.ShowStep)
	r.Put("/sessions/{session}/steps/{key}", s.UpdateStep)
	return r, nil
}

func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := s.router.FindRoute(r)
		if err != nil {
			// Undocumented routes such as /openapi.yaml are not validated.
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Warn("request rejected by schema", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusBadRequest, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pathParam binds a simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

func (s *Server) sessionAndKey(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	sessionID, err := pathParam(r, "session")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", "", false
	}
	key, err := pathParam(r, "key")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return "", "", false
	}
	return sessionID, key, true
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetWizard handles GET /wizard.
func (s *Server) GetWizard(w http.ResponseWriter, r *http.Request) {
	reg := s.Engine.Registry()
	writeJSON(w, http.StatusOK, WizardInfo{
		Name:  reg.Name(),
		Index: s.Engine.Index(),
		Steps: reg.StepKeys(),
	})
}

// ShowStep handles GET /sessions/{session}/steps/{key}.
func (s *Server) ShowStep(w http.ResponseWriter, r *http.Request) {
	sessionID, key, ok := s.sessionAndKey(w, r)
	if !ok {
		return
	}
	view, err := s.Engine.Show(r.Context(), sessionID, key)
	if err != nil {
		s.fail(w, "ShowStep", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateStep handles PUT /sessions/{session}/steps/{key}.
func (s *Server) UpdateStep(w http.ResponseWriter, r *http.Request) {
	sessionID, key, ok := s.sessionAndKey(w, r)
	if !ok {
		return
	}

	var body UpdateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.logger.Warn("UpdateStep: invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	params, err := runner.SanitizeParams(body.Attributes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := s.Engine.Update(r.Context(), sessionID, key, params)
	if err != nil {
		s.fail(w, "UpdateStep", err)
		return
	}
	status := http.StatusOK
	if out.Kind == stepwise.OutcomeInvalid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

// GetReview handles GET /sessions/{session}/review.
func (s *Server) GetReview(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathParam(r, "session")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	review, err := s.Engine.Review(r.Context(), sessionID)
	if err != nil {
		s.fail(w, "GetReview", err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// ResetSession handles DELETE /sessions/{session}.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathParam(r, "session")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Engine.Reset(r.Context(), sessionID); err != nil {
		s.fail(w, "ResetSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrUnknownStep) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.logger.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscribe/internal/processor"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

// Runner runs the pipeline for one call.
type Runner interface {
	Process(ctx context.Context, callID uuid.UUID) (*processor.Result, error)
}

type Server struct {
	router *chi.Mux
	runner Runner
	logger *slog.Logger
	http   *http.Server
}

type processRequest struct {
	CallLogsID string `json:"call_logsId"`
}

type processResponse struct {
	CallID            string    `json:"call_id"`
	Status            string    `json:"status"`
	TranscriptionLen  int       `json:"transcription_len"`
	QuestionsAnswered int       `json:"questions_answered"`
	AnswersMissing    int       `json:"answers_missing"`
	OutputFile        string    `json:"output_file"`
	ProcessedAt       time.Time `json:"processed_at"`
}

func NewServer(port int, apiToken string, runner Runner, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		runner: runner,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/callscribe/status", s.status)

	router.Route("/api/v1/calls", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/process", s.processFromBody)
		r.Post("/{id}/process", s.processFromPath)
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// BearerAuthMiddleware rejects requests without "Authorization: Bearer <token>".
// An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "callscribe",
		"status":  "ready",
	})
}

// processFromBody handles POST /api/v1/calls/process.
func (s *Server) processFromBody(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.CallLogsID) == "" {
		writeError(w, http.StatusBadRequest, "call_logsId is required")
		return
	}
	s.process(w, r, req.CallLogsID)
}

// processFromPath handles POST /api/v1/calls/{id}/process.
func (s *Server) processFromPath(w http.ResponseWriter, r *http.Request) {
	s.process(w, r, chi.URLParam(r, "id"))
}

func (s *Server) process(w http.ResponseWriter, r *http.Request, rawID string) {
	callID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid call id %q", rawID))
		return
	}

	res, err := s.runner.Process(r.Context(), callID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrCallNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, processor.ErrNoRecording):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		CallID:            callID.String(),
		Status:            "processed",
		TranscriptionLen:  len(res.Document.Transcription),
		QuestionsAnswered: len(res.Document.QuestionsAndAnswers),
		AnswersMissing:    res.AnswersMissing,
		OutputFile:        res.OutputFile,
		ProcessedAt:       res.Document.ProcessedAt,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

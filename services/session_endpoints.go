package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepwise/interview-coach/models"
)

// SessionStore is the subset of the repository the session endpoints need.
type SessionStore interface {
	CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error
	GetInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error)
	GetInterviewSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error)
}

type SessionEndpoints struct {
	store SessionStore
}

func NewSessionEndpoints(store SessionStore) *SessionEndpoints {
	return &SessionEndpoints{
		store: store,
	}
}

// Wire shapes for the session API. Field names mirror what the interview flow
// sends and reads back, so a stored session round-trips unchanged.

type ScorePayload struct {
	Metric   string  `json:"metric"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type AnswerPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ReportPayload struct {
	OverallFeedback string          `json:"overallFeedback"`
	Scores          []ScorePayload  `json:"scores"`
	Answers         []AnswerPayload `json:"answers"`
}

type SessionPayload struct {
	ID             string        `json:"id"`
	Date           string        `json:"date"`
	Domain         string        `json:"domain"`
	Specialization string        `json:"specialization"`
	Report         ReportPayload `json:"report"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", e.CreateSessionHandler)
		r.Get("/", e.GetSessionsHandler)
		r.Get("/{id}", e.GetSessionHandler)
	})
}

func (e *SessionEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	// Get claims from context (set by auth middleware)
	claims, ok := r.Context().Value("user").(*TokenClaims)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	var req SessionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Domain == "" || req.Specialization == "" {
		writeError(w, http.StatusBadRequest, "Domain and specialization are required")
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	session := models.InterviewSession{
		ID:              uuid.New().String(),
		UserID:          claims.UserID,
		Date:            date,
		Domain:          req.Domain,
		Specialization:  req.Specialization,
		OverallFeedback: req.Report.OverallFeedback,
	}
	for _, s := range req.Report.Scores {
		session.Scores = append(session.Scores, models.Score{
			SessionID: session.ID,
			Metric:    s.Metric,
			Score:     s.Score,
			Feedback:  s.Feedback,
		})
	}
	for _, a := range req.Report.Answers {
		session.Answers = append(session.Answers, models.Answer{
			SessionID: session.ID,
			Question:  a.Question,
			Answer:    a.Answer,
		})
	}

	if err := e.store.CreateInterviewSession(r.Context(), &session); err != nil {
		slog.Error("Failed to create interview session", "error", err, "user_id", claims.UserID)
		writeError(w, http.StatusInternalServerError, "Failed to save interview session")
		return
	}

	writeJSON(w, http.StatusCreated, toSessionPayload(&session))

	slog.Info("Interview session created", "session_id", session.ID, "user_id", claims.UserID,
		"domain", session.Domain, "specialization", session.Specialization)
}

func (e *SessionEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value("user").(*TokenClaims)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessions, err := e.store.GetInterviewSessions(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("Failed to get interview sessions", "error", err, "user_id", claims.UserID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	payloads := make([]SessionPayload, 0, len(sessions))
	for i := range sessions {
		payloads = append(payloads, toSessionPayload(&sessions[i]))
	}

	writeJSON(w, http.StatusOK, payloads)

	slog.Info("Interview sessions retrieved", "user_id", claims.UserID, "count", len(payloads))
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value("user").(*TokenClaims)
	if !ok {
		writeError(w, http.StatusInternalServerError, "User not found in context")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	// The query is scoped by the caller's user id, so fetching someone else's
	// session id comes back as not found.
	session, err := e.store.GetInterviewSession(r.Context(), sessionID, claims.UserID)
	if err != nil {
		slog.Error("Failed to get interview session", "error", err, "session_id", sessionID, "user_id", claims.UserID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, toSessionPayload(session))

	slog.Info("Interview session retrieved", "session_id", sessionID, "user_id", claims.UserID)
}

func toSessionPayload(session *models.InterviewSession) SessionPayload {
	payload := SessionPayload{
		ID:             session.ID,
		Date:           session.Date,
		Domain:         session.Domain,
		Specialization: session.Specialization,
		Report: ReportPayload{
			OverallFeedback: session.OverallFeedback,
			Scores:          make([]ScorePayload, 0, len(session.Scores)),
			Answers:         make([]AnswerPayload, 0, len(session.Answers)),
		},
	}
	for _, s := range session.Scores {
		payload.Report.Scores = append(payload.Report.Scores, ScorePayload{
			Metric:   s.Metric,
			Score:    s.Score,
			Feedback: s.Feedback,
		})
	}
	for _, a := range session.Answers {
		payload.Report.Answers = append(payload.Report.Answers, AnswerPayload{
			Question: a.Question,
			Answer:   a.Answer,
		})
	}
	return payload
}

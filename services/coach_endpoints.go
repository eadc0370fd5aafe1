package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CoachEndpoints exposes the prompt gateway over HTTP. Failures surface a
// generic message; model internals never reach the response.
type CoachEndpoints struct {
	coach *CoachService
}

type GenerateQuestionsRequest struct {
	Domain         string `json:"domain"`
	Specialization string `json:"specialization"`
}

type AnalyzeRequest struct {
	Answers []AnswerPayload `json:"answers"`
}

type HintRequest struct {
	Question string `json:"question"`
}

func NewCoachEndpoints(coach *CoachService) *CoachEndpoints {
	return &CoachEndpoints{
		coach: coach,
	}
}

func (e *CoachEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/questions", e.QuestionsHandler)
	r.Post("/analyze", e.AnalyzeHandler)
	r.Post("/hint", e.HintHandler)
}

func (e *CoachEndpoints) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Domain == "" || req.Specialization == "" {
		writeError(w, http.StatusBadRequest, "Domain and specialization are required")
		return
	}

	questions, err := e.coach.GenerateQuestions(r.Context(), req.Domain, req.Specialization)
	if err != nil {
		slog.Error("Question generation failed", "error", err, "domain", req.Domain, "specialization", req.Specialization)
		writeError(w, http.StatusInternalServerError, "Failed to get a valid response from the AI model")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (e *CoachEndpoints) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "At least one answer is required")
		return
	}

	report, err := e.coach.AnalyzeAnswers(r.Context(), req.Answers)
	if err != nil {
		slog.Error("Answer analysis failed", "error", err, "answers", len(req.Answers))
		writeError(w, http.StatusInternalServerError, "Failed to get a valid response from the AI model")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (e *CoachEndpoints) HintHandler(w http.ResponseWriter, r *http.Request) {
	var req HintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	hint, err := e.coach.GetHint(r.Context(), req.Question)
	if err != nil {
		slog.Error("Hint generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get a valid response from the AI model")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"hint": hint})
}

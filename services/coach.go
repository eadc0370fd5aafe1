package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prepwise/interview-coach/models"
)

// QuestionCount is the fixed length of a generated question set.
const QuestionCount = 10

// ModelProvider generates a JSON-formatted completion for a prompt.
type ModelProvider interface {
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
}

// CoachService is the prompt gateway: it formats the three fixed prompt
// templates, forwards them to the model provider, and validates the responses
// before anything downstream trusts them.
type CoachService struct {
	provider ModelProvider
}

func NewCoachService(provider ModelProvider) *CoachService {
	return &CoachService{
		provider: provider,
	}
}

// GenerateQuestions asks the model for exactly QuestionCount interview
// questions. Anything other than that many non-empty strings is a failure.
func (c *CoachService) GenerateQuestions(ctx context.Context, domain, specialization string) ([]string, error) {
	prompt := fmt.Sprintf(`You are a senior hiring manager. Your task is to generate a list of interview questions.
The list must contain exactly %d unique, insightful, and relevant interview questions for a '%s' role in the '%s' field.
Provide the response as a JSON object with a single key "questions" which is an array of %d strings.
Example format: {"questions": ["Question 1?", "Question 2?"]}`, QuestionCount, specialization, domain, QuestionCount)

	raw, err := c.provider.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	var resp struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}

	if len(resp.Questions) != QuestionCount {
		return nil, fmt.Errorf("expected %d questions, got %d", QuestionCount, len(resp.Questions))
	}
	for i, q := range resp.Questions {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("question %d is empty", i+1)
		}
	}

	slog.Info("Questions generated", "domain", domain, "specialization", specialization)
	return resp.Questions, nil
}

// AnalyzeAnswers asks the model to score the answers on the fixed metric
// catalog. The model output is untrusted: unknown metrics are dropped, scores
// are clamped to [0,10], and a response missing any catalog metric is an
// error.
func (c *CoachService) AnalyzeAnswers(ctx context.Context, answers []AnswerPayload) (*ReportPayload, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	prompt := fmt.Sprintf(`You are an expert interview coach. Analyze the following interview questions and answers: %s.
IMPORTANT: give 0 in all metrics if the candidate does not answer

Provide a concise overall feedback summary and score the user's performance on these specific metrics (1-10 scale):

1. Technical Knowledge - Understanding of technical concepts and domain expertise
2. Problem Solving - Ability to approach and solve complex problems systematically
3. Communication - Clarity, structure, and effectiveness of communication
4. Code Quality - Quality of code examples, explanations, and technical implementation (if applicable)
5. Industry Awareness - Knowledge of current trends, best practices, and industry standards
6. Confidence - Poise, confidence, and professional demeanor in responses

Provide the response as a JSON object with two keys: "overallFeedback" (string) and "scores" (an array of objects, each with "metric", "score" (1-10), and "feedback").

IMPORTANT: Use exactly these metric names: %s

Example format: {"overallFeedback": "Good job!", "scores": [{"metric": "Technical Knowledge", "score": 8, "feedback": "Strong understanding of core concepts."}]}`,
		string(answersJSON), quotedMetricNames())

	raw, err := c.provider.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer analysis failed: %w", err)
	}

	var resp struct {
		OverallFeedback string         `json:"overallFeedback"`
		Scores          []ScorePayload `json:"scores"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	if strings.TrimSpace(resp.OverallFeedback) == "" {
		return nil, fmt.Errorf("analysis response missing overall feedback")
	}

	scores, err := validateScores(resp.Scores)
	if err != nil {
		return nil, err
	}

	slog.Info("Answers analyzed", "answers", len(answers), "scores", len(scores))
	return &ReportPayload{
		OverallFeedback: resp.OverallFeedback,
		Scores:          scores,
		Answers:         []AnswerPayload{},
	}, nil
}

// GetHint asks the model for one short hint that does not give away the
// answer.
func (c *CoachService) GetHint(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert interview coach. A user is stuck on the following interview question: "%s".
Provide a single, concise hint to guide them. The hint should be 1-2 sentences and suggest a key concept or a direction to think about, without giving away the full answer.
Provide the response as a JSON object with a single key "hint" which is a string.
Example format: {"hint": "Consider the trade-offs between..."}`, question)

	raw, err := c.provider.GenerateJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("hint generation failed: %w", err)
	}

	var resp struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse hint response: %w", err)
	}

	hint := strings.TrimSpace(resp.Hint)
	if hint == "" {
		return "", fmt.Errorf("hint response is empty")
	}

	return hint, nil
}

// validateScores enforces the fixed metric catalog: unknown metric names are
// dropped, scores are clamped to [0,10], duplicates keep the first entry, and
// every catalog metric must be present. The result follows catalog order.
func validateScores(raw []ScorePayload) ([]ScorePayload, error) {
	byMetric := make(map[string]ScorePayload, len(raw))
	for _, s := range raw {
		if !models.IsKnownMetric(s.Metric) {
			slog.Warn("Dropping unknown metric from model response", "metric", s.Metric)
			continue
		}
		if _, seen := byMetric[s.Metric]; seen {
			continue
		}
		byMetric[s.Metric] = ScorePayload{
			Metric:   s.Metric,
			Score:    clampScore(s.Score),
			Feedback: s.Feedback,
		}
	}

	scores := make([]ScorePayload, 0, len(models.MetricNames))
	for _, name := range models.MetricNames {
		s, ok := byMetric[name]
		if !ok {
			return nil, fmt.Errorf("analysis response missing metric %q", name)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func quotedMetricNames() string {
	quoted := make([]string, 0, len(models.MetricNames))
	for _, name := range models.MetricNames {
		quoted = append(quoted, fmt.Sprintf("%q", name))
	}
	return strings.Join(quoted, ", ")
}

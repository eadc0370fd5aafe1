package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prepwise/interview-coach/models"
)

// QuestionCount is the number of questions in one interview round.
const QuestionCount = 10

// FlowState tracks where the user is in an interview round.
type FlowState int

const (
	StateDomainSelection FlowState = iota
	StateInProgress
	StateAnalyzing
	StateReportReady
)

func (s FlowState) String() string {
	switch s {
	case StateDomainSelection:
		return "domain_selection"
	case StateInProgress:
		return "in_progress"
	case StateAnalyzing:
		return "analyzing"
	case StateReportReady:
		return "report_ready"
	default:
		return "unknown"
	}
}

var (
	// ErrWrongState is returned when an operation is not valid for the
	// flow's current state.
	ErrWrongState = errors.New("operation not valid in current state")

	// ErrStaleHint is returned when a hint arrives after the user has
	// already moved to a different question.
	ErrStaleHint = errors.New("hint no longer matches the current question")
)

// Gateway is the AI side of the coach API the flow depends on.
type Gateway interface {
	Questions(ctx context.Context, domain, specialization string) ([]string, error)
	Analyze(ctx context.Context, answers []Answer) (*Report, error)
	Hint(ctx context.Context, question string) (string, error)
}

// SessionSaver persists a finished interview for a signed-in user.
type SessionSaver interface {
	Authenticated() bool
	CreateSession(ctx context.Context, session Session) (*Session, error)
}

// Flow drives one interview round: pick a role, answer the questions one at
// a time, then receive the analysis report. When the AI gateway is down it
// degrades to clearly labeled mock content instead of failing the round.
type Flow struct {
	gateway Gateway
	saver   SessionSaver

	mu             sync.Mutex
	state          FlowState
	domain         string
	specialization string
	questions      []string
	index          int
	answers        map[string]string
	report         *Report
}

// NewFlow creates a flow in the domain selection state. saver may be nil for
// anonymous practice; the report is then simply not persisted.
func NewFlow(gateway Gateway, saver SessionSaver) *Flow {
	return &Flow{
		gateway: gateway,
		saver:   saver,
		state:   StateDomainSelection,
		answers: make(map[string]string),
	}
}

// State returns the current flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Index returns the zero-based position of the current question.
func (f *Flow) Index() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// Questions returns the question list for the active round.
func (f *Flow) Questions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.questions))
	copy(out, f.questions)
	return out
}

// CurrentQuestion returns the question the user is answering.
func (f *Flow) CurrentQuestion() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateInProgress {
		return "", ErrWrongState
	}
	return f.questions[f.index], nil
}

// AnswerFor returns the recorded answer for a question, for prefilling the
// input when the user navigates back.
func (f *Flow) AnswerFor(question string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answers[question]
}

// Start begins a round for the chosen role. If question generation fails the
// round proceeds with mock questions so the user can still practice the UI.
func (f *Flow) Start(ctx context.Context, domain, specialization string) error {
	f.mu.Lock()
	if f.state != StateDomainSelection {
		f.mu.Unlock()
		return ErrWrongState
	}
	f.mu.Unlock()

	questions, err := f.gateway.Questions(ctx, domain, specialization)
	if err != nil || len(questions) != QuestionCount {
		if err != nil {
			slog.Warn("Question generation failed, using mock questions", "error", err)
		} else {
			slog.Warn("Question generation returned wrong count, using mock questions", "count", len(questions))
		}
		questions = mockQuestions(specialization)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateDomainSelection {
		return ErrWrongState
	}
	f.state = StateInProgress
	f.domain = domain
	f.specialization = specialization
	f.questions = questions
	f.index = 0
	f.answers = make(map[string]string)
	f.report = nil
	return nil
}

// Next records the answer for the current question and advances. Answering
// the last question submits the round for analysis.
func (f *Flow) Next(ctx context.Context, answer string) error {
	f.mu.Lock()
	if f.state != StateInProgress {
		f.mu.Unlock()
		return ErrWrongState
	}

	f.answers[f.questions[f.index]] = answer
	if f.index < len(f.questions)-1 {
		f.index++
		f.mu.Unlock()
		return nil
	}

	f.state = StateAnalyzing
	answers := f.collectAnswersLocked()
	f.mu.Unlock()

	return f.analyze(ctx, answers)
}

// Back moves to the previous question. Recorded answers are kept so the
// input can be prefilled.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateInProgress {
		return ErrWrongState
	}
	if f.index > 0 {
		f.index--
	}
	return nil
}

// Report returns the finished analysis.
func (f *Flow) Report() (*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateReportReady {
		return nil, ErrWrongState
	}
	return f.report, nil
}

// Hint fetches guidance for the current question. If the user moves on while
// the request is in flight the result is discarded with ErrStaleHint.
func (f *Flow) Hint(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.state != StateInProgress {
		f.mu.Unlock()
		return "", ErrWrongState
	}
	question := f.questions[f.index]
	f.mu.Unlock()

	hint, err := f.gateway.Hint(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to get hint: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateInProgress || f.questions[f.index] != question {
		return "", ErrStaleHint
	}
	return hint, nil
}

// Reset abandons the round and returns to domain selection.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateDomainSelection
	f.domain = ""
	f.specialization = ""
	f.questions = nil
	f.index = 0
	f.answers = make(map[string]string)
	f.report = nil
}

// collectAnswersLocked builds the ordered answer list. Callers must hold mu.
func (f *Flow) collectAnswersLocked() []Answer {
	answers := make([]Answer, 0, len(f.questions))
	for _, q := range f.questions {
		answers = append(answers, Answer{Question: q, Answer: f.answers[q]})
	}
	return answers
}

func (f *Flow) analyze(ctx context.Context, answers []Answer) error {
	report, err := f.gateway.Analyze(ctx, answers)
	if err != nil {
		slog.Warn("Analysis failed, using mock report", "error", err)
		report = mockReport()
	}
	report.Answers = answers

	f.mu.Lock()
	if f.state != StateAnalyzing {
		// Round was reset while the analysis was in flight.
		f.mu.Unlock()
		return ErrWrongState
	}
	f.state = StateReportReady
	f.report = report
	domain, specialization := f.domain, f.specialization
	f.mu.Unlock()

	if f.saver != nil && f.saver.Authenticated() {
		session := Session{
			Date:           time.Now().Format("2006-01-02"),
			Domain:         domain,
			Specialization: specialization,
			Report:         *report,
		}
		if _, err := f.saver.CreateSession(ctx, session); err != nil {
			slog.Warn("Failed to save interview session", "error", err)
		}
	}
	return nil
}

func mockQuestions(specialization string) []string {
	questions := make([]string, QuestionCount)
	for i := range questions {
		questions[i] = fmt.Sprintf(
			"This is mock question %d for %s. The local AI server is not running or has failed. Please start the server and try again.",
			i+1, specialization)
	}
	return questions
}

func mockReport() *Report {
	scores := make([]Score, 0, len(models.MetricNames))
	for _, metric := range models.MetricNames {
		scores = append(scores, Score{
			Metric:   metric,
			Score:    0,
			Feedback: fmt.Sprintf("Mock feedback for %s.", strings.ToLower(metric)),
		})
	}
	return &Report{
		OverallFeedback: "This is mock feedback because the local AI server is not running or has failed. Please start the server and try again.",
		Scores:          scores,
	}
}

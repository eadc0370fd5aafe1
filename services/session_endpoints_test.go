package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prepwise/interview-coach/models"
	"github.com/prepwise/interview-coach/services"
)

// fakeSessionStore implements services.SessionStore in memory, scoped by user
// the same way the real repository is.
type fakeSessionStore struct {
	sessions  []models.InterviewSession
	createErr error
}

func (f *fakeSessionStore) CreateInterviewSession(ctx context.Context, session *models.InterviewSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionStore) GetInterviewSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var out []models.InterviewSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) GetInterviewSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	for i := range f.sessions {
		if f.sessions[i].ID == sessionID && f.sessions[i].UserID == userID {
			return &f.sessions[i], nil
		}
	}
	return nil, nil
}

// sessionTestServer mounts the session routes behind the real auth middleware
// and returns a signed-in user's token alongside the server.
func sessionTestServer(t *testing.T, store *fakeSessionStore) (*httptest.Server, string) {
	t.Helper()

	auth := services.NewAuthService(newFakeUserStore(), "test-secret")
	resp, err := auth.Register(context.Background(), "alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	endpoints := services.NewSessionEndpoints(store)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			endpoints.RegisterRoutes(r)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, resp.Token
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateSessionEndpoint(t *testing.T) {
	store := &fakeSessionStore{}
	srv, token := sessionTestServer(t, store)

	payload := services.SessionPayload{
		Domain:         "Tech & Engineering",
		Specialization: "Backend Developer",
		Report: services.ReportPayload{
			OverallFeedback: "Good round.",
			Scores: []services.ScorePayload{
				{Metric: "Communication", Score: 7, Feedback: "Clear answers."},
			},
			Answers: []services.AnswerPayload{
				{Question: "Q1?", Answer: "A1"},
				{Question: "Q2?", Answer: ""},
			},
		},
	}

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/sessions", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created services.SessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("created session has no id")
	}
	if created.Date == "" {
		t.Error("created session has no date default")
	}
	if len(created.Report.Answers) != 2 {
		t.Errorf("got %d answers back, want 2", len(created.Report.Answers))
	}

	if len(store.sessions) != 1 {
		t.Fatalf("store has %d sessions, want 1", len(store.sessions))
	}
	if store.sessions[0].UserID == "" {
		t.Error("stored session is not attributed to the caller")
	}
}

func TestCreateSessionValidation(t *testing.T) {
	store := &fakeSessionStore{}
	srv, token := sessionTestServer(t, store)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/sessions", token,
		services.SessionPayload{Domain: "", Specialization: "Backend Developer"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionEndpointsRequireAuth(t *testing.T) {
	store := &fakeSessionStore{}
	srv, _ := sessionTestServer(t, store)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, srv.URL+"/api/sessions", tt.token, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestGetSessionScopedToOwner(t *testing.T) {
	store := &fakeSessionStore{
		sessions: []models.InterviewSession{
			{ID: "someone-elses", UserID: "other-user", Domain: "d", Specialization: "s"},
		},
	}
	srv, token := sessionTestServer(t, store)

	// Another user's session id reads as not found, not forbidden.
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/sessions/someone-elses", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/sessions/does-not-exist", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListSessionsEmpty(t *testing.T) {
	store := &fakeSessionStore{}
	srv, token := sessionTestServer(t, store)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/sessions", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var sessions []services.SessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}

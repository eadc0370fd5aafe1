package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// API is an HTTP client for the coach server. It carries the active
// credentials and attaches the bearer token to authenticated requests. All
// methods are safe for concurrent use.
type API struct {
	baseURL    string
	httpClient *http.Client
	store      *CredentialStore

	mu    sync.Mutex
	creds Credentials
}

// NewAPI creates a client for the server at baseURL. A nil store disables
// credential persistence; tokens then live only in memory.
func NewAPI(baseURL string, store *CredentialStore) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		store:      store,
	}
}

// RestoreSession loads previously saved credentials, if any.
func (a *API) RestoreSession() error {
	if a.store == nil {
		return nil
	}
	creds, err := a.store.Load()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.creds = *creds
	a.mu.Unlock()
	return nil
}

// Authenticated reports whether a token is present.
func (a *API) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.creds.Token != ""
}

// CurrentUser returns the signed-in user, or nil.
func (a *API) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.creds.User
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// Register creates an account and signs the user in.
func (a *API) Register(ctx context.Context, username, email, password string) (*User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var resp authResponse
	if err := a.doJSON(ctx, http.MethodPost, "/api/auth/register", body, false, &resp); err != nil {
		return nil, err
	}

	a.setCredentials(Credentials{Token: resp.Token, User: resp.User})
	return resp.User, nil
}

// Login authenticates an existing account.
func (a *API) Login(ctx context.Context, username, password string) (*User, error) {
	body := map[string]string{"username": username, "password": password}

	var resp authResponse
	if err := a.doJSON(ctx, http.MethodPost, "/api/auth/login", body, false, &resp); err != nil {
		return nil, err
	}

	a.setCredentials(Credentials{Token: resp.Token, User: resp.User})
	return resp.User, nil
}

// Logout discards the in-memory and stored credentials.
func (a *API) Logout() {
	a.clearCredentials()
}

// Me fetches the profile for the current token. An expired or rejected token
// clears the credentials and returns nil without error, so callers can treat
// it as a signed-out state.
func (a *API) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User *User `json:"user"`
	}
	err := a.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, true, &resp)
	if err != nil {
		if isAuthFailure(err) {
			a.clearCredentials()
			return nil, nil
		}
		return nil, err
	}

	a.mu.Lock()
	a.creds.User = resp.User
	a.mu.Unlock()
	return resp.User, nil
}

// Sessions lists the user's saved interview sessions, oldest first. A
// rejected token clears the credentials and yields an empty list rather than
// an error.
func (a *API) Sessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	err := a.doJSON(ctx, http.MethodGet, "/api/sessions", nil, true, &sessions)
	if err != nil {
		if isAuthFailure(err) {
			slog.Warn("Session list rejected, clearing credentials")
			a.clearCredentials()
			return []Session{}, nil
		}
		return nil, err
	}
	return sessions, nil
}

// Session fetches a single saved session by id.
func (a *API) Session(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := a.doJSON(ctx, http.MethodGet, "/api/sessions/"+id, nil, true, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession saves a completed interview for the signed-in user.
func (a *API) CreateSession(ctx context.Context, session Session) (*Session, error) {
	if !a.Authenticated() {
		return nil, fmt.Errorf("not signed in")
	}

	var created Session
	if err := a.doJSON(ctx, http.MethodPost, "/api/sessions", session, true, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Questions asks the server to generate interview questions for a role.
func (a *API) Questions(ctx context.Context, domain, specialization string) ([]string, error) {
	body := map[string]string{"domain": domain, "specialization": specialization}

	var resp struct {
		Questions []string `json:"questions"`
	}
	if err := a.doJSON(ctx, http.MethodPost, "/api/questions", body, false, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// Analyze submits the finished answers for evaluation.
func (a *API) Analyze(ctx context.Context, answers []Answer) (*Report, error) {
	body := map[string][]Answer{"answers": answers}

	var report Report
	if err := a.doJSON(ctx, http.MethodPost, "/api/analyze", body, false, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Hint requests guidance for answering a question.
func (a *API) Hint(ctx context.Context, question string) (string, error) {
	body := map[string]string{"question": question}

	var resp struct {
		Hint string `json:"hint"`
	}
	if err := a.doJSON(ctx, http.MethodPost, "/api/hint", body, false, &resp); err != nil {
		return "", err
	}
	return resp.Hint, nil
}

func (a *API) setCredentials(creds Credentials) {
	a.mu.Lock()
	a.creds = creds
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Save(&creds); err != nil {
			slog.Warn("Failed to persist credentials", "error", err)
		}
	}
}

func (a *API) clearCredentials() {
	a.mu.Lock()
	a.creds = Credentials{}
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Clear(); err != nil {
			slog.Warn("Failed to clear stored credentials", "error", err)
		}
	}
}

func (a *API) token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.creds.Token
}

// apiError carries the server's error message and HTTP status.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func isAuthFailure(err error) bool {
	apiErr, ok := err.(*apiError)
	return ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

func (a *API) doJSON(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := a.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		return &apiError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

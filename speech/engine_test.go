package speech_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prepwise/interview-coach/speech"
)

func nextResult(t *testing.T, results <-chan speech.Result) speech.Result {
	t.Helper()
	select {
	case r, ok := <-results:
		if !ok {
			t.Fatal("results channel closed early")
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
	}
	return speech.Result{}
}

// TestWSEngineStreamsAndSurfacesEvents runs the engine against a fake
// transcription service: it must send the session config first, forward audio
// base64-encoded, and turn delta/done/error events into results.
func TestWSEngineStreamsAndSurfacesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotAuth := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// The session config arrives before any audio.
		var session struct {
			Type    string `json:"type"`
			Session struct {
				Model    string `json:"model"`
				InputFmt struct {
					Encoding   string `json:"encoding"`
					SampleRate int    `json:"sample_rate"`
				} `json:"input_audio_format"`
			} `json:"session"`
		}
		if err := conn.ReadJSON(&session); err != nil {
			t.Errorf("failed to read session config: %v", err)
			return
		}
		if session.Type != "session.update" || session.Session.Model != "test-model" {
			t.Errorf("unexpected session config: %+v", session)
		}
		if session.Session.InputFmt.Encoding != "pcm_s16le" || session.Session.InputFmt.SampleRate != 16000 {
			t.Errorf("unexpected audio format: %+v", session.Session.InputFmt)
		}

		var chunk struct {
			Type  string `json:"type"`
			Audio string `json:"audio"`
		}
		if err := conn.ReadJSON(&chunk); err != nil {
			t.Errorf("failed to read audio append: %v", err)
			return
		}
		if chunk.Type != "input_audio_buffer.append" {
			t.Errorf("audio message type = %q", chunk.Type)
		}
		decoded, err := base64.StdEncoding.DecodeString(chunk.Audio)
		if err != nil {
			t.Errorf("audio payload is not base64: %v", err)
		}
		if string(decoded) != "pcm-bytes" {
			t.Errorf("decoded audio = %q, want pcm-bytes", decoded)
		}

		conn.WriteJSON(map[string]string{"type": "transcription.text.delta", "text": "hel"})
		conn.WriteJSON(map[string]string{"type": "transcription.text.done", "text": "hello"})
		conn.WriteJSON(map[string]string{"type": "error", "error": "overloaded"})

		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	source := make(chan []byte, 1)
	source <- []byte("pcm-bytes")

	engine := speech.NewWSEngine(wsURL, "test-model", "sekrit", 16000, source)
	results, err := engine.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer engine.Stop()

	if auth := <-gotAuth; auth != "Bearer sekrit" {
		t.Errorf("Authorization header = %q, want Bearer sekrit", auth)
	}

	r := nextResult(t, results)
	if r.Text != "hel" || r.Final || r.Err != nil {
		t.Errorf("first result = %+v, want interim %q", r, "hel")
	}

	r = nextResult(t, results)
	if r.Text != "hello" || !r.Final || r.Err != nil {
		t.Errorf("second result = %+v, want final %q", r, "hello")
	}

	// A service-reported error event surfaces as a result, not just a log
	// line, so the capture layer can record it.
	r = nextResult(t, results)
	if r.Err == nil || !strings.Contains(r.Err.Error(), "overloaded") {
		t.Errorf("third result = %+v, want the service error", r)
	}

	engine.Stop()
	for {
		select {
		case _, ok := <-results:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("results channel not closed after Stop")
		}
	}
}

func TestWSEngineDialFailure(t *testing.T) {
	source := make(chan []byte)
	engine := speech.NewWSEngine("ws://127.0.0.1:1", "test-model", "", 16000, source)

	if _, err := engine.Start(context.Background()); err == nil {
		t.Error("expected an error when the service is unreachable")
	}
}

package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Result is one recognition event from a speech engine. Interim results
// replace each other; a final result is a settled segment. Err reports an
// engine failure, after which no further results arrive.
type Result struct {
	Text  string
	Final bool
	Err   error
}

// Engine turns audio into recognition results. Start begins a recognition
// stream; the returned channel is closed when the stream ends. Stop ends the
// stream and lets any buffered results drain.
type Engine interface {
	Start(ctx context.Context) (<-chan Result, error)
	Stop()
}

// WSEngine streams PCM audio to a realtime transcription service over a
// WebSocket and yields the text events it sends back. It works with local
// vLLM realtime servers and compatible hosted APIs.
type WSEngine struct {
	url        string
	model      string
	apiKey     string
	sampleRate int
	source     <-chan []byte

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewWSEngine creates an engine that reads PCM chunks from source and sends
// them to the transcription service at url. apiKey may be empty for local
// servers.
func NewWSEngine(url, model, apiKey string, sampleRate int, source <-chan []byte) *WSEngine {
	return &WSEngine{
		url:        url,
		model:      model,
		apiKey:     apiKey,
		sampleRate: sampleRate,
		source:     source,
	}
}

type wsSessionUpdate struct {
	Type    string    `json:"type"`
	Session wsSession `json:"session"`
}

type wsSession struct {
	Model       string        `json:"model"`
	InputFmt    wsAudioFormat `json:"input_audio_format"`
	Temperature float64       `json:"temperature"`
}

type wsAudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type wsAudioAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

type wsEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Start dials the service and begins streaming. The session config is sent
// before any audio.
func (e *WSEngine) Start(ctx context.Context) (<-chan Result, error) {
	header := http.Header{}
	if e.apiKey != "" {
		header.Set("Authorization", "Bearer "+e.apiKey)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, e.url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", e.url, err)
	}

	if err := conn.WriteJSON(wsSessionUpdate{
		Type: "session.update",
		Session: wsSession{
			Model:       e.model,
			InputFmt:    wsAudioFormat{Encoding: "pcm_s16le", SampleRate: e.sampleRate},
			Temperature: 0.0,
		},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send session config: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.conn = conn
	e.cancel = cancel
	e.mu.Unlock()

	slog.Info("Speech stream connected", "url", e.url, "model", e.model)

	results := make(chan Result)
	go e.writeAudio(streamCtx, conn)
	go e.readEvents(streamCtx, conn, results)
	return results, nil
}

// Stop ends the stream. The results channel closes once the reader exits.
func (e *WSEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
}

func (e *WSEngine) writeAudio(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-e.source:
			if !ok {
				return
			}
			msg := wsAudioAppend{
				Type:  "input_audio_buffer.append",
				Audio: base64.StdEncoding.EncodeToString(chunk),
			}
			if err := conn.WriteJSON(msg); err != nil {
				if ctx.Err() == nil {
					slog.Warn("Speech stream write failed", "error", err)
				}
				return
			}
		}
	}
}

func (e *WSEngine) readEvents(ctx context.Context, conn *websocket.Conn, results chan<- Result) {
	defer close(results)

	for {
		var ev wsEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case results <- Result{Err: fmt.Errorf("speech stream read failed: %w", err)}:
			case <-ctx.Done():
			}
			return
		}

		switch ev.Type {
		case "transcription.text.delta":
			if ev.Text == "" {
				continue
			}
			select {
			case results <- Result{Text: ev.Text}:
			case <-ctx.Done():
				return
			}
		case "transcription.text.done":
			select {
			case results <- Result{Text: ev.Text, Final: true}:
			case <-ctx.Done():
				return
			}
		case "error":
			slog.Warn("Speech stream error event", "error", ev.Error)
			select {
			case results <- Result{Err: fmt.Errorf("speech service error: %s", ev.Error)}:
			case <-ctx.Done():
				return
			}
		}
	}
}

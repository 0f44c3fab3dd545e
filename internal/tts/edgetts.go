package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// writeJSON marshals v and writes it as a text frame, the same encoding
// github.com/coder/websocket/wsjson uses but against the wsConn interface
// so tests can substitute a fake connection.
func writeJSON(ctx context.Context, conn wsConn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// dialWebSocket is overridden in tests to avoid a real network dial.
var dialWebSocket = func(ctx context.Context, rawURL string) (wsConn, error) {
	conn, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// wsConn is the subset of *websocket.Conn the backend depends on, so tests
// can substitute a fake connection.
type wsConn interface {
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Close(code websocket.StatusCode, reason string) error
}

// EdgeTTSBackend synthesizes speech over the Microsoft Edge neural-voice
// streaming endpoint (the service the original project's "edge_tts" backend
// wrapped), speaking binary audio frames terminated by a text "EOS" control
// message, the same request/stream shape as a conventional voice-websocket
// provider.
type EdgeTTSBackend struct {
	host    string
	workDir string

	mu   sync.Mutex
	conn wsConn
}

// EdgeTTSOption configures an EdgeTTSBackend.
type EdgeTTSOption func(*EdgeTTSBackend)

// WithEdgeTTSHost overrides the synthesis endpoint host, for pointing at a
// private relay or test server.
func WithEdgeTTSHost(host string) EdgeTTSOption {
	return func(b *EdgeTTSBackend) {
		if host != "" {
			b.host = host
		}
	}
}

// NewEdgeTTSBackend constructs a Backend that streams audio out of the
// public Edge TTS endpoint, writing each synthesized clip under workDir.
func NewEdgeTTSBackend(workDir string, opts ...EdgeTTSOption) *EdgeTTSBackend {
	b := &EdgeTTSBackend{host: "speech.platform.bing.com", workDir: workDir}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *EdgeTTSBackend) getConn(ctx context.Context) (wsConn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return b.conn, nil
	}
	u := url.URL{
		Scheme:   "wss",
		Host:     b.host,
		Path:     "/consumer/speech/synthesize/readaloud/edge/v1",
		RawQuery: "TrustedClientToken=redub",
	}
	conn, err := dialWebSocket(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("dial edge tts: %w", err)
	}
	b.conn = conn
	return conn, nil
}

// Synthesize streams text through the Edge TTS websocket and writes the
// returned audio frames to a file under workDir, returning its path.
// sampleRateHz is accepted for interface conformance; the endpoint always
// streams 24kHz mono audio, so callers resample downstream
// (internal/media/ffmpeg.Client.ToMonoPCM) rather than requesting a rate
// this backend cannot honor.
func (b *EdgeTTSBackend) Synthesize(ctx context.Context, text, voiceID string, sampleRateHz uint32) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &ContentError{Cause: errors.New("empty text")}
	}
	if strings.TrimSpace(voiceID) == "" {
		return "", &ContentError{Cause: errors.New("empty voice id")}
	}

	conn, err := b.getConn(ctx)
	if err != nil {
		return "", &TransportError{Cause: err}
	}

	req := map[string]any{
		"text":  text,
		"voice": voiceID,
	}
	if err := writeJSON(ctx, conn, req); err != nil {
		b.dropConn()
		return "", &TransportError{Cause: fmt.Errorf("send synthesis request: %w", err)}
	}

	dst := filepath.Join(b.workDir, uuid.NewString()+".mp3")
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	var wroteAny bool
	for {
		msgType, payload, err := conn.Read(ctx)
		if err != nil {
			b.dropConn()
			return "", &TransportError{Cause: fmt.Errorf("read from edge tts: %w", err)}
		}

		switch msgType {
		case websocket.MessageBinary:
			if _, err := f.Write(payload); err != nil {
				return "", fmt.Errorf("write audio chunk: %w", err)
			}
			wroteAny = true
		case websocket.MessageText:
			msg := string(payload)
			if msg == "EOS" {
				if !wroteAny {
					return "", &ContentError{Cause: fmt.Errorf("no audio returned for voice %q", voiceID)}
				}
				return dst, nil
			}
			if strings.HasPrefix(msg, "ERR:") {
				return "", classifyEdgeTTSMessage(msg)
			}
		}
	}
}

// classifyEdgeTTSMessage distinguishes retryable transport conditions
// (rate limiting, connection resets the endpoint reports inline) from
// non-retryable content failures (unknown voice, rejected text).
func classifyEdgeTTSMessage(msg string) error {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"rate limit", "timeout", "connection", "unavailable"} {
		if strings.Contains(lower, marker) {
			return &TransportError{Cause: errors.New(msg)}
		}
	}
	return &ContentError{Cause: errors.New(msg)}
}

func (b *EdgeTTSBackend) dropConn() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		_ = b.conn.Close(websocket.StatusAbnormalClosure, "")
		b.conn = nil
	}
}

// Close releases the backend's persistent connection, if one is open.
func (b *EdgeTTSBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close(websocket.StatusNormalClosure, "")
	b.conn = nil
	return err
}

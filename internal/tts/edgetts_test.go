package tts

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

// fakeWSConn is an in-memory wsConn used to test EdgeTTSBackend without a
// real network dial.
type fakeWSConn struct {
	mu        sync.Mutex
	sent      []map[string]any
	frames    []fakeFrame
	readIdx   int
	closed    bool
	closeCode websocket.StatusCode
}

type fakeFrame struct {
	typ     websocket.MessageType
	payload []byte
}

func (f *fakeWSConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err == nil {
		f.mu.Lock()
		f.sent = append(f.sent, decoded)
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeWSConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readIdx >= len(f.frames) {
		return 0, nil, context.Canceled
	}
	frame := f.frames[f.readIdx]
	f.readIdx++
	return frame.typ, frame.payload, nil
}

func (f *fakeWSConn) Close(code websocket.StatusCode, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCode = code
	return nil
}

func withFakeDial(t *testing.T, conn *fakeWSConn) {
	t.Helper()
	original := dialWebSocket
	dialWebSocket = func(ctx context.Context, rawURL string) (wsConn, error) {
		return conn, nil
	}
	t.Cleanup(func() { dialWebSocket = original })
}

func audioFrames(t *testing.T, chunks ...string) []fakeFrame {
	t.Helper()
	frames := make([]fakeFrame, 0, len(chunks)+1)
	for _, c := range chunks {
		frames = append(frames, fakeFrame{typ: websocket.MessageBinary, payload: []byte(c)})
	}
	frames = append(frames, fakeFrame{typ: websocket.MessageText, payload: []byte("EOS")})
	return frames
}

func TestEdgeTTSSynthesizeWritesAudioFrames(t *testing.T) {
	conn := &fakeWSConn{frames: audioFrames(t, "chunk-one", "chunk-two")}
	withFakeDial(t, conn)

	dir := t.TempDir()
	backend := NewEdgeTTSBackend(dir)

	path, err := backend.Synthesize(context.Background(), "hello there", "en-US-GuyNeural", 24000)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected output under %q, got %q", dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "chunk-onechunk-two" {
		t.Errorf("audio = %q, want concatenated chunks", string(data))
	}
}

func TestEdgeTTSSynthesizeSendsVoiceAndText(t *testing.T) {
	conn := &fakeWSConn{frames: audioFrames(t, "chunk")}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	if _, err := backend.Synthesize(context.Background(), "a line of dialogue", "en-GB-SoniaNeural", 24000); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if len(conn.sent) != 1 {
		t.Fatalf("expected 1 request sent, got %d", len(conn.sent))
	}
	if conn.sent[0]["voice"] != "en-GB-SoniaNeural" {
		t.Errorf("voice = %v, want en-GB-SoniaNeural", conn.sent[0]["voice"])
	}
	if conn.sent[0]["text"] != "a line of dialogue" {
		t.Errorf("text = %v, want original dialogue", conn.sent[0]["text"])
	}
}

func TestEdgeTTSSynthesizeRejectsEmptyText(t *testing.T) {
	backend := NewEdgeTTSBackend(t.TempDir())
	if _, err := backend.Synthesize(context.Background(), "   ", "en-US-GuyNeural", 24000); err == nil {
		t.Fatal("expected error for empty text")
	} else if IsTransport(err) {
		t.Errorf("empty text should be a content error, got transport: %v", err)
	}
}

func TestEdgeTTSSynthesizeRejectsEmptyVoice(t *testing.T) {
	backend := NewEdgeTTSBackend(t.TempDir())
	if _, err := backend.Synthesize(context.Background(), "hello", "", 24000); err == nil {
		t.Fatal("expected error for empty voice id")
	}
}

func TestEdgeTTSSynthesizeRejectsNoAudioReturned(t *testing.T) {
	conn := &fakeWSConn{frames: []fakeFrame{{typ: websocket.MessageText, payload: []byte("EOS")}}}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	_, err := backend.Synthesize(context.Background(), "hello", "en-US-GuyNeural", 24000)
	if err == nil {
		t.Fatal("expected error when no audio frames arrive")
	}
	if IsTransport(err) {
		t.Errorf("expected content error, got transport: %v", err)
	}
}

func TestEdgeTTSSynthesizeClassifiesRateLimitAsTransport(t *testing.T) {
	conn := &fakeWSConn{frames: []fakeFrame{{typ: websocket.MessageText, payload: []byte("ERR: rate limit exceeded")}}}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	_, err := backend.Synthesize(context.Background(), "hello", "en-US-GuyNeural", 24000)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestEdgeTTSSynthesizeClassifiesUnknownVoiceAsContentError(t *testing.T) {
	conn := &fakeWSConn{frames: []fakeFrame{{typ: websocket.MessageText, payload: []byte("ERR: unknown voice id")}}}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	_, err := backend.Synthesize(context.Background(), "hello", "not-a-real-voice", 24000)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsTransport(err) {
		t.Errorf("expected content error, got transport: %v", err)
	}
}

func TestEdgeTTSReusesConnectionAcrossCalls(t *testing.T) {
	conn := &fakeWSConn{frames: append(audioFrames(t, "a"), audioFrames(t, "b")...)}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	if _, err := backend.Synthesize(context.Background(), "first", "en-US-GuyNeural", 24000); err != nil {
		t.Fatalf("first Synthesize() error = %v", err)
	}
	if _, err := backend.Synthesize(context.Background(), "second", "en-US-GuyNeural", 24000); err != nil {
		t.Fatalf("second Synthesize() error = %v", err)
	}
	if len(conn.sent) != 2 {
		t.Errorf("expected connection reused for 2 requests, got %d sends", len(conn.sent))
	}
}

func TestEdgeTTSCloseReleasesConnection(t *testing.T) {
	conn := &fakeWSConn{frames: audioFrames(t, "a")}
	withFakeDial(t, conn)

	backend := NewEdgeTTSBackend(t.TempDir())
	if _, err := backend.Synthesize(context.Background(), "hello", "en-US-GuyNeural", 24000); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !conn.closed {
		t.Error("expected underlying connection to be closed")
	}
}

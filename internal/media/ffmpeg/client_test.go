package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestExtractSegmentRejectsBackwardsRange(t *testing.T) {
	cli := NewCLI()
	if err := cli.ExtractSegment(context.Background(), "src.mp4", 2000, 1000, "dst.mp4"); err == nil {
		t.Fatal("expected error for end_ms before start_ms")
	}
}

func TestRetimeVideoRejectsNonPositiveRatio(t *testing.T) {
	cli := NewCLI()
	if err := cli.RetimeVideo(context.Background(), "src.mp4", 0, "dst.mp4"); err == nil {
		t.Fatal("expected error for non-positive ratio")
	}
}

func TestMuxRequiresVideoAndAudio(t *testing.T) {
	cli := NewCLI()
	if err := cli.Mux(context.Background(), MuxOptions{DstPath: "out.mp4"}); err == nil {
		t.Fatal("expected error when video/audio paths are missing")
	}
}

func setHelperCommand(t *testing.T, mode string) *[]string {
	t.Helper()
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &capturedArgs
}

func TestExtractSegmentIncludesTimingFlags(t *testing.T) {
	capturedArgs := setHelperCommand(t, "success")

	cli := NewCLI()
	tempDir := t.TempDir()
	dst := filepath.Join(tempDir, "segment.mp4")

	if err := cli.ExtractSegment(context.Background(), "src.mp4", 1000, 3000, dst); err != nil {
		t.Fatalf("ExtractSegment returned error: %v", err)
	}

	if findArg(*capturedArgs, "-ss") == -1 {
		t.Errorf("expected -ss flag in args: %v", *capturedArgs)
	}
	if findArg(*capturedArgs, "-t") == -1 {
		t.Errorf("expected -t flag in args: %v", *capturedArgs)
	}
}

func TestMuxEmbedsSubtitleWhenProvided(t *testing.T) {
	capturedArgs := setHelperCommand(t, "success")

	cli := NewCLI()
	tempDir := t.TempDir()
	dst := filepath.Join(tempDir, "out.mp4")

	opts := MuxOptions{
		VideoPath:        "video.mp4",
		AudioPath:        "audio.wav",
		SubtitlePath:     "subs.srt",
		SubtitleLanguage: "en",
		DstPath:          dst,
	}
	if err := cli.Mux(context.Background(), opts); err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	if findArg(*capturedArgs, "mov_text") == -1 {
		t.Errorf("expected mov_text subtitle codec in args: %v", *capturedArgs)
	}
	if findArg(*capturedArgs, "language=en") == -1 {
		t.Errorf("expected subtitle language metadata in args: %v", *capturedArgs)
	}
}

func TestMuxRobustTimestampsAddsCorrection(t *testing.T) {
	capturedArgs := setHelperCommand(t, "success")

	cli := NewCLI()
	tempDir := t.TempDir()
	dst := filepath.Join(tempDir, "out.mp4")

	opts := MuxOptions{
		VideoPath:        "video.mp4",
		AudioPath:        "audio.wav",
		RobustTimestamps: true,
		DstPath:          dst,
	}
	if err := cli.Mux(context.Background(), opts); err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	if findArg(*capturedArgs, "make_zero") == -1 {
		t.Errorf("expected avoid_negative_ts make_zero in args: %v", *capturedArgs)
	}
}

func TestMuxFailurePropagatesStderr(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	opts := MuxOptions{VideoPath: "video.mp4", AudioPath: "audio.wav", DstPath: "out.mp4"}
	err := cli.Mux(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error from failing ffmpeg invocation")
	}
}

func TestTrimLeadingSilenceIncludesFilter(t *testing.T) {
	capturedArgs := setHelperCommand(t, "success")

	cli := NewCLI()
	tempDir := t.TempDir()
	dst := filepath.Join(tempDir, "trimmed.wav")

	if err := cli.TrimLeadingSilence(context.Background(), "src.wav", dst); err != nil {
		t.Fatalf("TrimLeadingSilence returned error: %v", err)
	}
	if findArg(*capturedArgs, "-af") == -1 {
		t.Errorf("expected -af flag in args: %v", *capturedArgs)
	}
}

func TestTempoChainDecomposesOutOfRangeRatio(t *testing.T) {
	chain := tempoChain(3.0)
	if len(chain) < 2 {
		t.Fatalf("expected ratio 3.0 to decompose into multiple factors, got %v", chain)
	}
	product := 1.0
	for _, f := range chain {
		var val float64
		if _, err := fmt.Sscanf(f, "%f", &val); err != nil {
			t.Fatalf("parse factor %q: %v", f, err)
		}
		product *= val
	}
	if diff := product - 3.0; diff > 0.001 || diff < -0.001 {
		t.Errorf("tempo chain product = %f, want 3.0", product)
	}
}

func TestTempoChainInRangeIsSingleFactor(t *testing.T) {
	chain := tempoChain(1.5)
	if len(chain) != 1 {
		t.Fatalf("expected single-factor chain for in-range ratio, got %v", chain)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "ffmpeg error")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

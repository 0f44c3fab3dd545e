package tts

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"redub/internal/media/ffmpeg"
	"redub/internal/rerr"
	"redub/internal/ttscache"
)

const stageTTS = "tts_orchestrator"
const opSynthesize = "synthesize"
const opNormalize = "normalize"

// DefaultConcurrency, DefaultRetryAttempts, and DefaultRequestTimeout mirror
// internal/config's TTS orchestration defaults.
const (
	DefaultConcurrency    = 4
	DefaultRetryAttempts  = 3
	DefaultRequestTimeout = 180 * time.Second
)

// Params configures an Orchestrator's fan-out behavior.
type Params struct {
	Concurrency            int
	RetryAttempts          int
	RequestTimeout         time.Duration
	SampleRateHz           uint32
	LengthLimitedThreshold int
	NoFallback             bool
}

func (p Params) normalize() Params {
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.RetryAttempts <= 0 {
		p.RetryAttempts = DefaultRetryAttempts
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}
	if p.SampleRateHz == 0 {
		p.SampleRateHz = 24000
	}
	if p.NoFallback {
		p.Concurrency = 1
	}
	return p
}

// Request is a single cue's synthesis job.
type Request struct {
	Index         int
	Text          string
	VoiceID       string
	LengthLimited bool
}

// Result is the outcome of one Request, always returned in Index order.
type Result struct {
	Index  int
	Path   string
	Blank  bool
	Cached bool
	Err    error
}

// Orchestrator fans a batch of Requests out to a Backend under bounded
// concurrency, consulting the TTS cache first and normalizing every
// synthesized file to mono PCM afterward.
type Orchestrator struct {
	backend Backend
	cache   *ttscache.Cache
	ffmpeg  ffmpeg.Client
	params  Params
	workDir string
}

// New builds an Orchestrator. workDir is where normalized, freshly
// synthesized audio is staged before being written into the cache.
func New(backend Backend, cache *ttscache.Cache, client ffmpeg.Client, workDir string, params Params) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		cache:   cache,
		ffmpeg:  client,
		params:  params.normalize(),
		workDir: workDir,
	}
}

// SynthesizeAll dispatches every request, returning results in request
// order regardless of completion order. In no-fallback mode the first
// failure aborts all in-flight and not-yet-started requests and is
// returned directly; otherwise per-request failures are carried in each
// Result.Err and SynthesizeAll itself returns nil.
func (o *Orchestrator) SynthesizeAll(ctx context.Context, requests []Request) ([]Result, error) {
	results := make([]Result, len(requests))

	sem := semaphore.NewWeighted(int64(o.params.Concurrency))
	eg, egCtx := errgroup.WithContext(ctx)

	for _, req := range requests {
		req := req
		eg.Go(func() error {
			if err := sem.Acquire(egCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res := o.synthesizeOne(egCtx, req)
			results[req.Index] = res

			if o.params.NoFallback && res.Err != nil {
				return res.Err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) synthesizeOne(ctx context.Context, req Request) Result {
	ctx = rerr.WithCueIndex(ctx, req.Index)
	ctx = rerr.WithStage(ctx, stageTTS)

	if isBlankText(req.Text) {
		return Result{Index: req.Index, Blank: true}
	}

	if req.LengthLimited && o.params.LengthLimitedThreshold > 0 && len([]rune(req.Text)) > o.params.LengthLimitedThreshold {
		err := rerr.WrapHint(rerr.ErrInputInvalid, stageTTS, opSynthesize,
			fmt.Sprintf("cue %d text exceeds length-limited backend threshold of %d characters", req.Index, o.params.LengthLimitedThreshold),
			"length_limit_exceeded",
			"split the cue or choose a backend without a length limit",
			nil)
		return Result{Index: req.Index, Err: err}
	}

	key := ttscache.Key(req.Text, req.VoiceID, int(o.params.SampleRateHz))
	if path, hit := o.cache.Lookup(req.Index, key); hit {
		return Result{Index: req.Index, Path: path, Cached: true}
	}

	rawPath, err := o.synthesizeWithRetry(ctx, req)
	if err != nil {
		return Result{Index: req.Index, Err: err}
	}
	defer removeIfTemp(rawPath)

	normPath := filepath.Join(o.workDir, fmt.Sprintf("tts_norm_%d.wav", req.Index))
	if err := o.ffmpeg.ToMonoPCM(ctx, rawPath, int(o.params.SampleRateHz), normPath); err != nil {
		wrapped := rerr.Wrap(rerr.ErrToolFailure, stageTTS, opNormalize,
			fmt.Sprintf("normalize synthesized audio for cue %d", req.Index), err)
		return Result{Index: req.Index, Err: wrapped}
	}
	defer removeIfTemp(normPath)

	finalPath, err := o.cache.Store(req.Index, key, normPath)
	if err != nil {
		wrapped := rerr.Wrap(rerr.ErrToolFailure, stageTTS, opSynthesize,
			fmt.Sprintf("store synthesized audio for cue %d in cache", req.Index), err)
		return Result{Index: req.Index, Err: wrapped}
	}

	return Result{Index: req.Index, Path: finalPath}
}

func (o *Orchestrator) synthesizeWithRetry(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 0; attempt < o.params.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.params.RequestTimeout)
		path, err := o.backend.Synthesize(attemptCtx, req.Text, req.VoiceID, o.params.SampleRateHz)
		cancel()
		if err == nil {
			return path, nil
		}

		lastErr = err
		if !IsTransport(err) {
			break
		}
	}
	return "", rerr.Wrap(rerr.ErrResourceExhausted, stageTTS, opSynthesize,
		fmt.Sprintf("synthesize cue %d", req.Index), lastErr)
}

func sleepBackoff(ctx context.Context, attempt int) error {
	base := time.Duration(attempt) * 200 * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(150 * time.Millisecond)))
	select {
	case <-time.After(base + jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isBlankText(text string) bool {
	return strings.TrimSpace(text) == ""
}

func removeIfTemp(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

package qa

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"redub/internal/cluster"
	"redub/internal/cue"
)

// DefaultEnvelopeWindowMS and DefaultOnsetSearchMS mirror the post-flight
// onset-detection defaults.
const (
	DefaultEnvelopeWindowMS = 20
	DefaultOnsetSearchMS    = 500
	// DefaultOnsetPassToleranceMS is the maximum acceptable drift between a
	// cue's intended start and its detected speech onset.
	DefaultOnsetPassToleranceMS = 180
)

// SyncAuditEntry records one cue's intended-vs-detected onset comparison.
type SyncAuditEntry struct {
	Index      int
	StartMS    int
	DetectedMS int
	DeltaMS    int
	Passed     bool
}

// SyncAuditReport aggregates the per-cue sync audit entries.
type SyncAuditReport struct {
	Entries     []SyncAuditEntry
	PassCount   int
	FailCount   int
	ToleranceMS int
}

// RunSyncAudit computes a windowed energy envelope over the assembled
// audio and, for each cue, locates the nearest onset above an adaptive
// threshold near the cue's intended start. A cue passes when the detected
// onset is within toleranceMS of its intended start.
func RunSyncAudit(pcm cluster.PCM, cues cue.CueList, winMS, searchMS, toleranceMS int) SyncAuditReport {
	if winMS <= 0 {
		winMS = DefaultEnvelopeWindowMS
	}
	if searchMS <= 0 {
		searchMS = DefaultOnsetSearchMS
	}
	if toleranceMS <= 0 {
		toleranceMS = DefaultOnsetPassToleranceMS
	}

	env := cluster.Envelope(pcm, winMS)
	report := SyncAuditReport{ToleranceMS: toleranceMS}

	for i, c := range cues {
		detected := detectOnset(env, c.StartMS, winMS, searchMS)
		delta := detected - c.StartMS
		absDelta := delta
		if absDelta < 0 {
			absDelta = -absDelta
		}
		passed := absDelta <= toleranceMS
		if passed {
			report.PassCount++
		} else {
			report.FailCount++
		}
		report.Entries = append(report.Entries, SyncAuditEntry{
			Index:      i,
			StartMS:    c.StartMS,
			DetectedMS: detected,
			DeltaMS:    delta,
			Passed:     passed,
		})
	}
	return report
}

// detectOnset scans the envelope around a cue's intended start for the
// first window whose energy clears an adaptive threshold: 3x the mean
// energy of the window immediately preceding the search span, or 30% of
// the search span's peak when that baseline is silent. Falls back to the
// intended start itself when nothing clears the threshold.
func detectOnset(env []float64, startMS, winMS, searchMS int) int {
	if winMS <= 0 || len(env) == 0 {
		return startMS
	}
	idxStart := startMS / winMS
	span := searchMS / winMS
	lo := idxStart - span
	if lo < 0 {
		lo = 0
	}
	hi := idxStart + span
	if hi > len(env)-1 {
		hi = len(env) - 1
	}

	baseStart := lo - span
	if baseStart < 0 {
		baseStart = 0
	}
	baseEnd := lo

	var base float64
	if baseEnd > baseStart {
		var sum float64
		for _, v := range env[baseStart:baseEnd] {
			sum += v
		}
		base = sum / float64(baseEnd-baseStart)
	}

	var threshold float64
	if base > 0 {
		threshold = base * 3.0
	} else if hi > lo {
		peak := env[lo]
		for _, v := range env[lo:hi] {
			if v > peak {
				peak = v
			}
		}
		threshold = peak * 0.3
	}

	for j := lo; j < hi; j++ {
		if env[j] >= threshold {
			return j * winMS
		}
	}
	return idxStart * winMS
}

// WriteSyncAuditCSV writes the audit as a "index,start_ms,detected_ms,delta_ms"
// CSV table.
func WriteSyncAuditCSV(report SyncAuditReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sync audit csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "start_ms", "detected_ms", "delta_ms"}); err != nil {
		return fmt.Errorf("write sync audit header: %w", err)
	}
	for _, e := range report.Entries {
		row := []string{
			strconv.Itoa(e.Index),
			strconv.Itoa(e.StartMS),
			strconv.Itoa(e.DetectedMS),
			strconv.Itoa(e.DeltaMS),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write sync audit row %d: %w", e.Index, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSyncAuditLog writes a human-readable debug log, one line per cue.
func WriteSyncAuditLog(report SyncAuditReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sync audit log: %w", err)
	}
	defer f.Close()

	for _, e := range report.Entries {
		status := "pass"
		if !e.Passed {
			status = "fail"
		}
		line := fmt.Sprintf("[%d] start=%d detected=%d delta=%d %s\n",
			e.Index, e.StartMS, e.DetectedMS, e.DeltaMS, status)
		if _, err := f.WriteString(line); err != nil {
			return fmt.Errorf("write sync audit log line %d: %w", e.Index, err)
		}
	}
	return nil
}

package cue

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"redub/internal/rerr"
)

const (
	stageCue    = "cue_store"
	opLoad      = "load"
	opSave      = "save"
	opAssertEqu = "assert_text_equal"
)

// Load reads an SRT file into an ordered CueList. The reader tolerates a
// leading UTF-8 byte-order mark and accepts both comma and period
// millisecond separators.
func Load(path string) (CueList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageCue, opLoad, fmt.Sprintf("read %s", path), err)
	}
	cues, err := Parse(string(data))
	if err != nil {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageCue, opLoad, fmt.Sprintf("parse %s", path), err)
	}
	return cues, nil
}

// Parse decodes SRT-formatted text into an ordered CueList.
func Parse(text string) (CueList, error) {
	text = strings.TrimPrefix(text, "\xef\xbb\xbf")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(text), "\n\n")

	var cues CueList
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		c, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		cues = append(cues, c)
	}
	if len(cues) == 0 {
		return nil, fmt.Errorf("no cues found")
	}
	return cues, nil
}

func parseBlock(block string) (Cue, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return Cue{}, fmt.Errorf("malformed cue block %q", block)
	}

	idx := 0
	// First line is the numeric index unless the timing arrow is on it,
	// which some generators omit the index for.
	if !strings.Contains(lines[0], "-->") {
		idx = 1
	}
	if idx >= len(lines) {
		return Cue{}, fmt.Errorf("malformed cue block %q", block)
	}
	timingLine := lines[idx]
	startMS, endMS, err := parseTimingLine(timingLine)
	if err != nil {
		return Cue{}, err
	}
	text := strings.Join(lines[idx+1:], "\n")
	return Cue{StartMS: startMS, EndMS: endMS, Text: text}, nil
}

func parseTimingLine(line string) (int, int, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	startMS, err := parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	endField := strings.TrimSpace(parts[1])
	// Some SRT variants append positioning directives after the end
	// timestamp (e.g. "X1:.. Y1:.."); keep only the timestamp token.
	if fields := strings.Fields(endField); len(fields) > 0 {
		endField = fields[0]
	}
	endMS, err := parseTimestamp(endField)
	if err != nil {
		return 0, 0, err
	}
	return startMS, endMS, nil
}

func parseTimestamp(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.SplitN(value, ",", 2)
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	totalMS := ((hours*3600+minutes*60+seconds)*1000 + millis)
	return totalMS, nil
}

// Save writes a CueList as an SRT file, renumbering cues from 1.
func Save(path string, cues CueList) error {
	if len(cues) == 0 {
		return rerr.Wrap(rerr.ErrInputInvalid, stageCue, opSave, "cannot save empty cue list", nil)
	}
	file, err := os.Create(path)
	if err != nil {
		return rerr.Wrap(rerr.ErrInputInvalid, stageCue, opSave, fmt.Sprintf("create %s", path), err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := writeSRT(writer, cues); err != nil {
		return rerr.Wrap(rerr.ErrInputInvalid, stageCue, opSave, fmt.Sprintf("write %s", path), err)
	}
	if err := writer.Flush(); err != nil {
		return rerr.Wrap(rerr.ErrInputInvalid, stageCue, opSave, fmt.Sprintf("flush %s", path), err)
	}
	return file.Close()
}

// Compose renders a CueList as SRT text, renumbering cues from 1.
func Compose(cues CueList) (string, error) {
	var sb strings.Builder
	if err := writeSRT(&sb, cues); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeSRT(w interface{ WriteString(string) (int, error) }, cues CueList) error {
	for i, c := range cues {
		if _, err := w.WriteString(strconv.Itoa(i + 1)); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
		line := fmt.Sprintf("%s --> %s\n", formatTimestamp(c.StartMS), formatTimestamp(c.EndMS))
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if _, err := w.WriteString(c.Text); err != nil {
			return err
		}
		if _, err := w.WriteString("\n\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatTimestamp(totalMS int) string {
	if totalMS < 0 {
		totalMS = 0
	}
	hours := totalMS / 3600000
	rem := totalMS % 3600000
	minutes := rem / 60000
	rem = rem % 60000
	seconds := rem / 1000
	millis := rem % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// AssertTextEqual is the text-immutability gate: it fails with
// rerr.ErrInvariant if the text vectors of before and after differ in
// length or at any position, including whitespace-only differences. Every
// script-stage transform (Rebalancer, Clusterer, Timeline Assembler) must
// call this before trusting its own output.
func AssertTextEqual(before, after CueList) error {
	if len(before) != len(after) {
		return rerr.WrapHint(rerr.ErrInvariant, stageCue, opAssertEqu,
			fmt.Sprintf("cue count changed: %d -> %d", len(before), len(after)),
			"text_mutation", "a script-stage transform must not add or remove cues", nil)
	}
	for i := range before {
		if before[i].Text != after[i].Text {
			return rerr.WrapHint(rerr.ErrInvariant, stageCue, opAssertEqu,
				fmt.Sprintf("cue %d text changed", i),
				"text_mutation", "a script-stage transform may adjust timing only, never text", nil)
		}
	}
	return nil
}

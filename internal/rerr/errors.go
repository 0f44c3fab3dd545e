package rerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputInvalid covers subtitle parse failures, missing project files,
	// and malformed voice maps. Always fatal.
	ErrInputInvalid = errors.New("input invalid")
	// ErrInvariant covers text mutation across script stages, ordering
	// breaks, and a voice map missing DEFAULT. Always fatal.
	ErrInvariant = errors.New("invariant violated")
	// ErrResourceExhausted covers TTS timeouts and backend unavailability
	// after retries. Fatal by default, and always fatal in no-fallback mode.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrIntegrity covers extreme stretch ratios, audio/video length
	// divergence, and onset delta overruns. Never fatal; always reported.
	ErrIntegrity = errors.New("integrity issue")
	// ErrToolFailure covers media extract/retime/mux subprocess errors.
	// Always fatal.
	ErrToolFailure = errors.New("tool failure")
)

// Kind captures the five-way error taxonomy from the engine's failure model.
type Kind string

const (
	KindInputInvalid      Kind = "input_invalid"
	KindInvariant         Kind = "invariant_violated"
	KindResourceExhausted Kind = "resource_exhausted"
	KindIntegrity         Kind = "integrity"
	KindToolFailure       Kind = "tool_failure"
	KindTransient         Kind = "transient"
)

// Error provides structured error context for pipeline stage failures.
type Error struct {
	Marker     error
	Kind       Kind
	Stage      string
	Operation  string
	Message    string
	Code       string
	Hint       string
	DetailPath string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if detail == "" {
		detail = "pipeline failure"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", detail, e.Cause)
	}
	return detail
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	if e.Marker != nil && errors.Is(e.Marker, target) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// Details exposes a snapshot of an Error for structured logging.
type Details struct {
	Kind       Kind
	Stage      string
	Operation  string
	Message    string
	Code       string
	Hint       string
	DetailPath string
	Cause      error
}

// Describe extracts structured error information when available.
func Describe(err error) Details {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return Details{
			Kind:       e.Kind,
			Stage:      e.Stage,
			Operation:  e.Operation,
			Message:    strings.TrimSpace(e.Message),
			Code:       strings.TrimSpace(e.Code),
			Hint:       strings.TrimSpace(e.Hint),
			DetailPath: strings.TrimSpace(e.DetailPath),
			Cause:      e.Cause,
		}
	}
	return Details{
		Kind:    KindTransient,
		Message: strings.TrimSpace(errorMessage(err)),
		Cause:   err,
	}
}

// Wrap builds an error that carries stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	return wrapWithOptions(marker, stage, operation, message, err)
}

// WrapDetail attaches a detail path (e.g. a tool's captured stderr) to the
// resulting error.
func WrapDetail(marker error, stage, operation, message string, err error, detailPath string) error {
	return wrapWithOptions(marker, stage, operation, message, err, WithDetailPath(detailPath))
}

// WrapHint attaches a stable error code and operator-facing hint.
func WrapHint(marker error, stage, operation, message, code, hint string, err error) error {
	return wrapWithOptions(marker, stage, operation, message, err, WithCode(code), WithHint(hint))
}

type wrapOption func(*Error)

func WithDetailPath(path string) wrapOption {
	return func(e *Error) {
		if e != nil {
			e.DetailPath = strings.TrimSpace(path)
		}
	}
}

func WithCode(code string) wrapOption {
	return func(e *Error) {
		if e != nil {
			e.Code = strings.TrimSpace(code)
		}
	}
}

func WithHint(hint string) wrapOption {
	return func(e *Error) {
		if e != nil {
			e.Hint = strings.TrimSpace(hint)
		}
	}
}

func wrapWithOptions(marker error, stage, operation, message string, err error, opts ...wrapOption) error {
	if marker == nil {
		marker = ErrToolFailure
	}
	kind, code := classifyMarker(marker)
	e := &Error{
		Marker:    marker,
		Kind:      kind,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Code:      code,
		Cause:     err,
	}
	if err != nil {
		var nested *Error
		if errors.As(err, &nested) && nested != nil {
			if strings.TrimSpace(e.DetailPath) == "" {
				e.DetailPath = nested.DetailPath
			}
			if strings.TrimSpace(e.Code) == "" {
				e.Code = nested.Code
			}
			if strings.TrimSpace(e.Hint) == "" {
				e.Hint = nested.Hint
			}
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Hint == "" && e.DetailPath != "" {
		e.Hint = "see error_detail_path for tool output"
	}
	return e
}

// Fatal reports whether an error must abort the run outright, per spec §7's
// propagation table. ErrResourceExhausted is fatal whether or not noFallback
// is set; ErrIntegrity is never fatal (it is reported, not corrected).
func Fatal(err error, noFallback bool) bool {
	switch {
	case errors.Is(err, ErrIntegrity):
		return false
	case errors.Is(err, ErrResourceExhausted):
		return true
	case err != nil:
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

func classifyMarker(marker error) (Kind, string) {
	switch {
	case errors.Is(marker, ErrInputInvalid):
		return KindInputInvalid, "E_INPUT_INVALID"
	case errors.Is(marker, ErrInvariant):
		return KindInvariant, "E_INVARIANT"
	case errors.Is(marker, ErrResourceExhausted):
		return KindResourceExhausted, "E_RESOURCE_EXHAUSTED"
	case errors.Is(marker, ErrIntegrity):
		return KindIntegrity, "E_INTEGRITY"
	case errors.Is(marker, ErrToolFailure):
		return KindToolFailure, "E_TOOL_FAILURE"
	default:
		return KindTransient, "E_TRANSIENT"
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

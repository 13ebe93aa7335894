/* errors.go
 * Contains the error taxonomy of the parser and the diagnostics that carry per-sheet problems to the caller
 * Authors: Zachary Bower
 */

package shared

import (
	"errors"
	"fmt"
)

var (
	ErrWorkbookUnidentified      = errors.New("cannot identify workbook")
	ErrMissingProfile            = errors.New("missing profile")
	ErrSheetUnclassified         = errors.New("sheet definition not found")
	ErrInvalidBracketSize        = errors.New("invalid bracket size")
	ErrUnparsableScore           = errors.New("score can't be normalized")
	ErrAmbiguousParticipantMatch = errors.New("cell does not resolve to a participant")
	ErrNoRounds                  = errors.New("no round data found")
	ErrHeuristicDependent        = errors.New("structure depends on heuristic")
	ErrRecordNotFound            = errors.New("tournament record not found")
)

// ErrorKind names one entry of the taxonomy
type ErrorKind string

const (
	KindWorkbookUnidentified      ErrorKind = "WorkbookUnidentified"
	KindMissingProfile            ErrorKind = "MissingProfile"
	KindSheetUnclassified         ErrorKind = "SheetUnclassified"
	KindInvalidBracketSize        ErrorKind = "InvalidBracketSize"
	KindUnparsableScore           ErrorKind = "UnparsableScore"
	KindAmbiguousParticipantMatch ErrorKind = "AmbiguousParticipantMatch"
	KindNoRounds                  ErrorKind = "NoRounds"
	KindHeuristicDependent        ErrorKind = "HeuristicDependent"
)

var kindSentinels = map[ErrorKind]error{
	KindWorkbookUnidentified:      ErrWorkbookUnidentified,
	KindMissingProfile:            ErrMissingProfile,
	KindSheetUnclassified:         ErrSheetUnclassified,
	KindInvalidBracketSize:        ErrInvalidBracketSize,
	KindUnparsableScore:           ErrUnparsableScore,
	KindAmbiguousParticipantMatch: ErrAmbiguousParticipantMatch,
	KindNoRounds:                  ErrNoRounds,
	KindHeuristicDependent:        ErrHeuristicDependent,
}

// Sentinel returns the sentinel error for a kind, or nil for an unknown kind
func (k ErrorKind) Sentinel() error {
	return kindSentinels[k]
}

// ParseError is a failure located in a workbook, a sheet or a single cell
type ParseError struct {
	Kind    ErrorKind
	Sheet   string
	Cell    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := string(e.Kind)
	if e.Sheet != "" {
		msg = fmt.Sprintf("%s [%s", msg, e.Sheet)
		if e.Cell != "" {
			msg = fmt.Sprintf("%s!%s", msg, e.Cell)
		}
		msg += "]"
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the wrapped error first, then the kind's sentinel, so errors.Is works for both
func (e *ParseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	return errs
}

// Severity of a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one entry of the notification side channel
type Diagnostic struct {
	Kind     ErrorKind `json:"kind" bson:"kind"`
	Severity Severity  `json:"severity" bson:"severity"`
	Sheet    string    `json:"sheet,omitempty" bson:"sheet,omitempty"`
	Cell     string    `json:"cell,omitempty" bson:"cell,omitempty"`
	Message  string    `json:"message" bson:"message"`
}

// Err converts the diagnostic to a ParseError
func (d Diagnostic) Err() error {
	return &ParseError{Kind: d.Kind, Sheet: d.Sheet, Cell: d.Cell, Message: d.Message}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Err())
}

// Notifier receives diagnostics as they are produced
type Notifier interface {
	Notify(d Diagnostic)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(d Diagnostic)

// Notify calls f(d)
func (f NotifierFunc) Notify(d Diagnostic) {
	f(d)
}

// Diagnostics collects diagnostics in order and optionally forwards them
type Diagnostics struct {
	items   []Diagnostic
	forward Notifier
}

// NewDiagnostics creates a collector that forwards every diagnostic to n (n may be nil)
func NewDiagnostics(n Notifier) *Diagnostics {
	return &Diagnostics{forward: n}
}

// Notify implements Notifier
func (c *Diagnostics) Notify(d Diagnostic) {
	c.items = append(c.items, d)
	if c.forward != nil {
		c.forward.Notify(d)
	}
}

// Items returns the collected diagnostics
func (c *Diagnostics) Items() []Diagnostic {
	return c.items
}

// Report builds a diagnostic and notifies n. A nil notifier discards it
func Report(n Notifier, kind ErrorKind, severity Severity, sheet, cell, message string) {
	if n == nil {
		return
	}
	n.Notify(Diagnostic{Kind: kind, Severity: severity, Sheet: sheet, Cell: cell, Message: message})
}

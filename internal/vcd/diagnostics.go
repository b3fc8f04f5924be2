package vcd

import "fmt"

type DiagKind int

const (
	DiagMalformedLine DiagKind = iota
	DiagDuplicateIdentifier
	DiagDeclarationAfterFreeze
	DiagTimeOrderingViolation
	DiagUnknownSignalReference
)

func (k DiagKind) String() string {
	switch k {
	case DiagMalformedLine:
		return "malformed_line"
	case DiagDuplicateIdentifier:
		return "duplicate_identifier"
	case DiagDeclarationAfterFreeze:
		return "declaration_after_freeze"
	case DiagTimeOrderingViolation:
		return "time_ordering_violation"
	case DiagUnknownSignalReference:
		return "unknown_signal_reference"
	}
	return "unknown"
}

// A Diagnostic records one recoverable anomaly found while parsing.
// Diagnostics accumulate on the Document instead of aborting the parse.
type Diagnostic struct {
	Kind    DiagKind
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}

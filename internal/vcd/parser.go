package vcd

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parser drives the lexer over one document, building the symbol table
// from the declaration section and replaying the value-change stream
// into each signal's change log. Recoverable anomalies become
// diagnostics on the resulting Document; only an empty input or a
// missing $enddefinitions aborts the parse.
type Parser struct {
	lexer  *Lexer
	doc    *Document
	scope  []string
	frozen bool
	cursor uint64
}

func NewParser(input string) *Parser {
	return &Parser{
		lexer: NewLexer(input),
		doc: &Document{
			Timescale: Timescale{Magnitude: 1, Unit: "ns"},
			signals:   make(map[string]*Signal),
		},
	}
}

// Parse consumes all input and returns the built Document. The returned
// error is fatal (no Document); per-line anomalies are reported through
// Document.Diagnostics instead.
func Parse(src []byte) (*Document, error) {
	if len(strings.TrimSpace(string(src))) == 0 {
		return nil, ErrEmptyInput
	}
	return NewParser(string(src)).Parse()
}

func (p *Parser) Parse() (*Document, error) {
	for {
		tok := p.lexer.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		if p.frozen {
			p.replayToken(tok)
		} else {
			p.declareToken(tok)
		}
	}
	if !p.frozen {
		return nil, ErrNoDefinitions
	}
	return p.doc, nil
}

func (p *Parser) addDiag(kind DiagKind, line int, format string, args ...interface{}) {
	p.doc.Diagnostics = append(p.doc.Diagnostics, Diagnostic{
		Kind:    kind,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// declareToken handles the declaration section, up to and including
// $enddefinitions.
func (p *Parser) declareToken(tok Token) {
	switch tok.Type {
	case TokenHeader:
		if tok.Key == "timescale" {
			p.parseTimescale(tok)
		}
		// $date, $version, $comment carry no data the document needs.
	case TokenScopeEnter:
		p.scope = append(p.scope, tok.Name)
	case TokenScopeExit:
		if len(p.scope) > 0 {
			p.scope = p.scope[:len(p.scope)-1]
		}
	case TokenVarDecl:
		p.declareVar(tok)
	case TokenEndDefinitions:
		p.frozen = true
	case TokenDumpvars, TokenTimeMarker, TokenScalarChange, TokenVectorChange:
		p.addDiag(DiagMalformedLine, tok.Line, "value change before $enddefinitions: %q", tok.Raw)
	case TokenError:
		p.addDiag(DiagMalformedLine, tok.Line, "unrecognized line: %q", tok.Raw)
	}
}

func (p *Parser) declareVar(tok Token) {
	if _, dup := p.doc.signals[tok.ID]; dup {
		// First registration wins; a silent overwrite would corrupt the
		// earlier signal's change log.
		p.addDiag(DiagDuplicateIdentifier, tok.Line,
			"identifier %q already declared, ignoring %q", tok.ID, tok.Name)
		return
	}
	path := append(append([]string{}, p.scope...), tok.Name)
	s := &Signal{
		ID:    tok.ID,
		Name:  strings.Join(path, "."),
		Kind:  tok.Kind,
		Width: tok.Width,
	}
	p.doc.signals[tok.ID] = s
	p.doc.order = append(p.doc.order, s)
}

func (p *Parser) parseTimescale(tok Token) {
	// "1ns" or "1 ns"
	text := strings.TrimSpace(tok.Text)
	i := 0
	for i < len(text) && unicode.IsDigit(rune(text[i])) {
		i++
	}
	mag, err := strconv.Atoi(text[:i])
	unit := strings.TrimSpace(text[i:])
	if err != nil || mag <= 0 || unit == "" {
		p.addDiag(DiagMalformedLine, tok.Line, "bad timescale %q", tok.Text)
		return
	}
	p.doc.Timescale = Timescale{Magnitude: mag, Unit: unit}
}

// replayToken handles the event stream after the symbol table froze.
// The cursor starts at 0, so a $dumpvars burst before any time marker
// lands at time 0.
func (p *Parser) replayToken(tok Token) {
	switch tok.Type {
	case TokenTimeMarker:
		if tok.Time < p.cursor {
			p.addDiag(DiagTimeOrderingViolation, tok.Line,
				"time marker #%d behind cursor %d, keeping cursor", tok.Time, p.cursor)
			return
		}
		p.cursor = tok.Time
		if p.cursor > p.doc.MaxTime {
			p.doc.MaxTime = p.cursor
		}
	case TokenScalarChange:
		p.appendChange(tok, tok.Value)
	case TokenVectorChange:
		s, ok := p.doc.signals[tok.ID]
		if !ok {
			p.addDiag(DiagUnknownSignalReference, tok.Line,
				"change for undeclared identifier %q", tok.ID)
			return
		}
		s.Changes = append(s.Changes, ChangeEvent{Time: p.cursor, Value: normalizeVector(tok.Value, s.Width)})
	case TokenVarDecl:
		p.addDiag(DiagDeclarationAfterFreeze, tok.Line,
			"declaration of %q after $enddefinitions ignored", tok.Name)
	case TokenScopeEnter, TokenScopeExit:
		p.addDiag(DiagDeclarationAfterFreeze, tok.Line,
			"scope change after $enddefinitions ignored")
	case TokenDumpvars, TokenHeader, TokenEndDefinitions:
		// $dumpvars introduces a burst of ordinary changes; nothing to do.
	case TokenError:
		p.addDiag(DiagMalformedLine, tok.Line, "unrecognized line: %q", tok.Raw)
	}
}

func (p *Parser) appendChange(tok Token, value string) {
	s, ok := p.doc.signals[tok.ID]
	if !ok {
		p.addDiag(DiagUnknownSignalReference, tok.Line,
			"change for undeclared identifier %q", tok.ID)
		return
	}
	s.Changes = append(s.Changes, ChangeEvent{Time: p.cursor, Value: value})
}

// normalizeVector pads a b-radix value to the declared width. Omitted
// leading digits read as '0'; over-wide values keep the least
// significant digits.
func normalizeVector(bits string, width int) string {
	if width <= 0 || len(bits) == width {
		return bits
	}
	if len(bits) > width {
		return bits[len(bits)-width:]
	}
	return strings.Repeat("0", width-len(bits)) + bits
}

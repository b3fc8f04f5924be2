package vcd

import (
	"strconv"
	"strings"
)

type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenHeader // $timescale, $date, $version, $comment
	TokenScopeEnter
	TokenScopeExit
	TokenVarDecl
	TokenEndDefinitions
	TokenDumpvars
	TokenTimeMarker
	TokenScalarChange
	TokenVectorChange
)

type Token struct {
	Type TokenType
	Line int
	Raw  string

	Key   string // header keyword, without the leading '$'
	Text  string // header body, joined across lines, without '$end'
	Kind  string // scope kind or variable type
	Name  string // scope or variable name
	Width int
	ID    string
	Value string
	Time  uint64
}

// Lexer classifies one physical line of a VCD document per call to
// NextToken. It does no semantic interpretation: scope nesting, symbol
// registration and time ordering are the parser's business.
type Lexer struct {
	lines []string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{lines: strings.Split(input, "\n")}
}

func (l *Lexer) nextLine() (string, int, bool) {
	for l.pos < len(l.lines) {
		line := strings.TrimSpace(l.lines[l.pos])
		l.pos++
		if line == "" {
			continue
		}
		return line, l.pos, true
	}
	return "", l.pos, false
}

func (l *Lexer) NextToken() Token {
	line, num, ok := l.nextLine()
	if !ok {
		return Token{Type: TokenEOF, Line: num}
	}

	switch {
	case strings.HasPrefix(line, "$"):
		return l.lexDirective(line, num)
	case strings.HasPrefix(line, "#"):
		return lexTimeMarker(line, num)
	case strings.HasPrefix(line, "b") || strings.HasPrefix(line, "B"):
		return lexVectorChange(line, num)
	case len(line) >= 2 && strings.ContainsRune("01xzXZ", rune(line[0])):
		return Token{
			Type:  TokenScalarChange,
			Line:  num,
			Raw:   line,
			Value: strings.ToLower(line[:1]),
			ID:    strings.TrimSpace(line[1:]),
		}
	default:
		return Token{Type: TokenError, Line: num, Raw: line}
	}
}

func (l *Lexer) lexDirective(line string, num int) Token {
	fields := strings.Fields(line)
	switch fields[0] {
	case "$scope":
		// $scope module <name> $end
		if len(fields) >= 3 {
			return Token{Type: TokenScopeEnter, Line: num, Raw: line, Kind: fields[1], Name: fields[2]}
		}
		return Token{Type: TokenError, Line: num, Raw: line}
	case "$upscope":
		return Token{Type: TokenScopeExit, Line: num, Raw: line}
	case "$var":
		// $var wire 1 ! sclk $end
		if len(fields) >= 5 {
			width, err := strconv.Atoi(fields[2])
			if err != nil || width <= 0 {
				return Token{Type: TokenError, Line: num, Raw: line}
			}
			return Token{
				Type:  TokenVarDecl,
				Line:  num,
				Raw:   line,
				Kind:  fields[1],
				Width: width,
				ID:    fields[3],
				Name:  fields[4],
			}
		}
		return Token{Type: TokenError, Line: num, Raw: line}
	case "$enddefinitions":
		return Token{Type: TokenEndDefinitions, Line: num, Raw: line}
	case "$dumpvars", "$dumpall", "$dumpon", "$dumpoff":
		return Token{Type: TokenDumpvars, Line: num, Raw: line}
	case "$end":
		// Stray block terminator (closes $dumpvars). Skip it.
		return l.NextToken()
	default:
		return l.lexHeader(fields[0], line, num)
	}
}

// lexHeader consumes a $date/$version/$comment/$timescale block, which
// may span several lines up to its $end.
func (l *Lexer) lexHeader(key, first string, num int) Token {
	body := strings.TrimSpace(strings.TrimPrefix(first, key))
	for !strings.Contains(body, "$end") {
		line, _, ok := l.nextLine()
		if !ok {
			break
		}
		body += " " + line
	}
	if i := strings.Index(body, "$end"); i >= 0 {
		body = body[:i]
	}
	return Token{
		Type: TokenHeader,
		Line: num,
		Raw:  first,
		Key:  strings.TrimPrefix(key, "$"),
		Text: strings.TrimSpace(body),
	}
}

func lexTimeMarker(line string, num int) Token {
	t, err := strconv.ParseUint(strings.TrimSpace(line[1:]), 10, 64)
	if err != nil {
		return Token{Type: TokenError, Line: num, Raw: line}
	}
	return Token{Type: TokenTimeMarker, Line: num, Raw: line, Time: t}
}

func lexVectorChange(line string, num int) Token {
	// b1010 ! (value and identifier separated by whitespace)
	fields := strings.Fields(line)
	if len(fields) != 2 || len(fields[0]) < 2 {
		return Token{Type: TokenError, Line: num, Raw: line}
	}
	bits := strings.ToLower(fields[0][1:])
	for _, r := range bits {
		if !strings.ContainsRune("01xz", r) {
			return Token{Type: TokenError, Line: num, Raw: line}
		}
	}
	return Token{Type: TokenVectorChange, Line: num, Raw: line, Value: bits, ID: fields[1]}
}

package parser

import (
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenWord
	TokenAnd         // &&
	TokenRedirectOut // >
	TokenAppend      // >>
)

// Token represents a lexical token.
type Token struct {
	Type   TokenType
	Text   string // source text
	Value  string // word value with quotes removed
	Quoted bool   // some part of the word was quoted
	Pos    int    // byte offset in the input
}

// String returns a string representation of the token.
func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return tokenTypeToString(t.Type)
}

// tokenTypeToString returns the string representation of a token type.
func tokenTypeToString(t TokenType) string {
	switch t {
	case TokenEOF:
		return "newline"
	case TokenError:
		return "ERROR"
	case TokenWord:
		return "WORD"
	case TokenAnd:
		return "&&"
	case TokenRedirectOut:
		return ">"
	case TokenAppend:
		return ">>"
	default:
		return "UNKNOWN"
	}
}

// Lexer performs lexical analysis on a command line.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.input) {
		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += w
	}
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	switch {
	case l.hasPrefix("&&"):
		l.pos += 2
		return Token{Type: TokenAnd, Text: "&&", Pos: start}
	case l.hasPrefix(">>"):
		l.pos += 2
		return Token{Type: TokenAppend, Text: ">>", Pos: start}
	case l.hasPrefix(">"):
		l.pos++
		return Token{Type: TokenRedirectOut, Text: ">", Pos: start}
	}
	return l.scanWord(start)
}

// scanWord reads one word, joining quoted and unquoted pieces.
func (l *Lexer) scanWord(start int) Token {
	var value []byte
	quoted := false

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\'' || ch == '"':
			quoted = true
			end := l.scanQuote(ch)
			if end < 0 {
				return Token{Type: TokenError, Text: l.input[start:], Pos: start}
			}
			value = append(value, l.input[l.pos+1:end]...)
			l.pos = end + 1
			continue
		case l.hasPrefix("&&") || ch == '>':
			return l.word(start, value, quoted)
		}

		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		if unicode.IsSpace(r) {
			return l.word(start, value, quoted)
		}
		value = append(value, l.input[l.pos:l.pos+w]...)
		l.pos += w
	}
	return l.word(start, value, quoted)
}

func (l *Lexer) word(start int, value []byte, quoted bool) Token {
	return Token{
		Type:   TokenWord,
		Text:   l.input[start:l.pos],
		Value:  string(value),
		Quoted: quoted,
		Pos:    start,
	}
}

// scanQuote returns the index of the quote closing the one at l.pos, or -1.
func (l *Lexer) scanQuote(q byte) int {
	for i := l.pos + 1; i < len(l.input); i++ {
		if l.input[i] == q {
			return i
		}
	}
	return -1
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.input)-l.pos >= len(s) && l.input[l.pos:l.pos+len(s)] == s
}

// Tokens returns all tokens from the input, ending with EOF or an error.
func (l *Lexer) Tokens() []Token {
	tokens := make([]Token, 0, 16)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}

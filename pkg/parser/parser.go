package parser

import (
	"fmt"
	"strings"
)

// SyntaxError reports a token the grammar does not allow at its position.
type SyntaxError struct {
	Token string
	Pos   int
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "syntax error: unexpected end of file"
	}
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Token)
}

// Parser is a recursive descent parser for command lines.
type Parser struct {
	input string
	lexer *Lexer
	tok   Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	return &Parser{
		input: input,
		lexer: NewLexer(input),
	}
}

// Parse parses the whole input. A blank line yields an empty list.
func (p *Parser) Parse() (*ListNode, error) {
	p.nextToken()
	list := &ListNode{}
	if p.tok.Type == TokenEOF {
		return list, nil
	}

	for {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		list.Commands = append(list.Commands, cmd)

		switch p.tok.Type {
		case TokenEOF:
			return list, nil
		case TokenAnd:
			p.nextToken()
		default:
			return nil, p.unexpected()
		}
	}
}

func (p *Parser) nextToken() {
	p.tok = p.lexer.NextToken()
}

func (p *Parser) unexpected() error {
	switch p.tok.Type {
	case TokenError:
		return &SyntaxError{Pos: p.tok.Pos}
	case TokenEOF:
		return &SyntaxError{Token: "newline", Pos: p.tok.Pos}
	default:
		return &SyntaxError{Token: p.tok.Text, Pos: p.tok.Pos}
	}
}

// parseCommand parses words and redirections up to the next && or EOF.
func (p *Parser) parseCommand() (*CommandNode, error) {
	cmd := &CommandNode{}
	named := false
	start := p.tok.Pos
	end := start

	for {
		switch p.tok.Type {
		case TokenWord:
			if named {
				cmd.Words = append(cmd.Words, &WordNode{Value: p.tok.Value, Quoted: p.tok.Quoted})
			} else {
				cmd.Name = p.tok.Value
				named = true
			}
			end = p.tok.Pos + len(p.tok.Text)
			p.nextToken()
		case TokenRedirectOut, TokenAppend:
			redir, err := p.parseRedirection()
			if err != nil {
				return nil, err
			}
			cmd.Redirections = append(cmd.Redirections, redir)
			end = redir.end
		default:
			if !named {
				return nil, p.unexpected()
			}
			cmd.Raw = strings.TrimSpace(p.input[start:end])
			return cmd, nil
		}
	}
}

// parseRedirection parses > file or >> file.
func (p *Parser) parseRedirection() (*RedirectNode, error) {
	redir := &RedirectNode{Append: p.tok.Type == TokenAppend}
	p.nextToken()
	if p.tok.Type != TokenWord {
		return nil, p.unexpected()
	}
	redir.File = p.tok.Value
	redir.end = p.tok.Pos + len(p.tok.Text)
	p.nextToken()
	return redir, nil
}

// ParseString is a convenience function to parse a command string.
func ParseString(input string) (*ListNode, error) {
	return NewParser(input).Parse()
}

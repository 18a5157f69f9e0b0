/*
Package parser parses terminal command lines for the webdesk shell.

The language is deliberately small:
  - Words separated by whitespace
  - Single and double quoted strings (adjacent pieces join into one word)
  - Chains of commands joined by &&
  - Output redirection with > and >>

Every other character, including |, ; and a lone &, is part of a word.
*/
package parser

import "strings"

// NodeType represents the type of a syntax tree node.
type NodeType int

const (
	NodeList NodeType = iota
	NodeCommand
	NodeRedirect
	NodeWord
)

// Node represents a node in the abstract syntax tree.
type Node interface {
	Type() NodeType
	String() string
}

// ListNode is a chain of commands joined by &&.
type ListNode struct {
	Commands []*CommandNode
}

// Type returns the node type.
func (n *ListNode) Type() NodeType { return NodeList }

// String returns a string representation of the chain.
func (n *ListNode) String() string {
	parts := make([]string, len(n.Commands))
	for i, c := range n.Commands {
		parts[i] = c.String()
	}
	return strings.Join(parts, " && ")
}

// Empty reports whether the line held no commands.
func (n *ListNode) Empty() bool { return len(n.Commands) == 0 }

// CommandNode is a single command with its arguments and redirections.
type CommandNode struct {
	Name         string
	Words        []*WordNode // arguments, excluding the name
	Redirections []*RedirectNode
	Raw          string // source text of the command, trimmed
}

// Type returns the node type.
func (n *CommandNode) Type() NodeType { return NodeCommand }

// Args returns the argument values.
func (n *CommandNode) Args() []string {
	args := make([]string, len(n.Words))
	for i, w := range n.Words {
		args[i] = w.Value
	}
	return args
}

// Output returns the redirection that receives the command output, if any.
// When several are given the last one wins.
func (n *CommandNode) Output() *RedirectNode {
	if len(n.Redirections) == 0 {
		return nil
	}
	return n.Redirections[len(n.Redirections)-1]
}

// String returns a string representation of the command.
func (n *CommandNode) String() string {
	result := n.Name
	for _, w := range n.Words {
		result += " " + w.String()
	}
	for _, r := range n.Redirections {
		result += " " + r.String()
	}
	return result
}

// RedirectNode represents an output redirection.
type RedirectNode struct {
	File   string
	Append bool

	end int
}

// Type returns the node type.
func (n *RedirectNode) Type() NodeType { return NodeRedirect }

// String returns a string representation of the redirect.
func (n *RedirectNode) String() string {
	if n.Append {
		return ">> " + n.File
	}
	return "> " + n.File
}

// WordNode is one argument. Quoted words are never glob-expanded.
type WordNode struct {
	Value  string
	Quoted bool
}

// Type returns the node type.
func (n *WordNode) Type() NodeType { return NodeWord }

// String returns a string representation of the word.
func (n *WordNode) String() string {
	if n.Quoted {
		return "'" + n.Value + "'"
	}
	return n.Value
}

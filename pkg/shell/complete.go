package shell

import (
	"strings"
	"unicode/utf8"

	"webdesk/pkg/vfs"
)

// Completion is the result of a tab press.
type Completion struct {
	Line    string   // input with the last word extended
	Matches []string // candidates when more than one entry matched
}

// Complete extends the last word of input against the entries of the
// folder it names. A single match is completed in full, with a trailing
// slash for folders. Several matches are extended to their longest common
// prefix and listed.
func (s *Session) Complete(input string) Completion {
	head, word := splitLastWord(input)

	dirPart, prefix := "", word
	if i := strings.LastIndexAny(word, "/\\"); i >= 0 {
		dirPart, prefix = word[:i+1], word[i+1:]
	}

	dir, err := s.host.FileSystem().Lookup(vfs.ResolvePath(dirPart, s.Cwd()))
	if err != nil || !dir.IsDir() {
		return Completion{Line: input}
	}

	var matches []string
	for _, name := range dir.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if child, _ := dir.Child(name); child.IsDir() {
			name += "/"
		}
		matches = append(matches, name)
	}

	switch len(matches) {
	case 0:
		return Completion{Line: input}
	case 1:
		return Completion{Line: head + dirPart + matches[0]}
	}
	return Completion{
		Line:    head + dirPart + commonPrefix(matches),
		Matches: matches,
	}
}

// splitLastWord splits input after its last space.
func splitLastWord(input string) (head, word string) {
	i := strings.LastIndexAny(input, " \t")
	return input[:i+1], input[i+1:]
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
		}
	}
	return prefix
}

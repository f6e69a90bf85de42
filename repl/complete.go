// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/eescope/debugger"
)

// commandCompleter implements readline.AutoCompleter.  The first word
// completes to a command and later words complete to alias names.
type commandCompleter struct {
	session *debugger.Session
}

func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to a separator).
	start := pos
	for start > 0 && !isSeparator(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	var candidates []string
	if strings.TrimSpace(string(line[:start])) == "" {
		candidates = matching(commandNames, prefix)
	}
	if strings.HasPrefix(prefix, "$") || len(candidates) == 0 {
		candidates = append(candidates, c.aliasNames(prefix)...)
	}
	if len(candidates) == 0 {
		return nil, 0
	}

	// Each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *commandCompleter) aliasNames(prefix string) []string {
	var names []string
	for _, a := range c.session.Aliases() {
		names = append(names, a.Name)
	}
	return matching(names, prefix)
}

func matching(names []string, prefix string) []string {
	var result []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

func isSeparator(ch rune) bool {
	switch ch {
	case ' ', '\t', '(', ')', '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', ',', ';':
		return true
	}
	return false
}

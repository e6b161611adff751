// Package prompts holds the embedded prompt assets used by the generation
// pipeline. Keeping them as files makes prompt revisions reviewable without
// touching code.
package prompts

import (
	"embed"
	"strings"
)

// Version is incremented whenever the prompt assets change incompatibly.
const Version = "v1"

//go:embed system/flashcards.md format/json_array.md
var defaultFS embed.FS

func mustRead(name string) string {
	b, err := defaultFS.ReadFile(name)
	if err != nil {
		panic("prompts: missing embedded asset " + name)
	}
	return strings.TrimRight(string(b), "\n")
}

var (
	system      = mustRead("system/flashcards.md")
	formatRules = mustRead("format/json_array.md")
)

// System returns the system instruction sent with every generation request.
func System() string { return system }

// FormatRules returns the output-format instructions appended to every
// user prompt: a bare JSON array of {question, answer} objects.
func FormatRules() string { return formatRules }

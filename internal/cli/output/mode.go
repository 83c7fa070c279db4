package output

import "strings"

// OutputMode selects how command results are written.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"     // text on a terminal, markdown otherwise
	ModeText     OutputMode = "text"     // styled terminal output
	ModeMarkdown OutputMode = "markdown" // plain markdown, agent and pipe friendly
	ModeJSON     OutputMode = "json"     // machine readable
)

// Mode parses a configured output format. Unknown or empty values fall
// back to ModeAuto.
func Mode(s string) OutputMode {
	switch m := OutputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeText, ModeMarkdown, ModeJSON:
		return m
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

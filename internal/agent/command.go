// internal/agent/command.go
package agent

import (
	"regexp"
	"strings"
)

// CommandKind enumerates the closed set of commands the model may issue.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandGoto
	CommandClick
	CommandExtract
	CommandScroll
	CommandTitle
	CommandURL
	CommandBack
	CommandFill
	CommandScreenshot
	CommandAnswer
)

// String returns the wire keyword for logging and error messages.
func (k CommandKind) String() string {
	switch k {
	case CommandGoto:
		return "GOTO_URL"
	case CommandClick:
		return "CLICK_SELECTOR"
	case CommandExtract:
		return "EXTRACT_TEXT"
	case CommandScroll:
		return "SCROLL_DOWN"
	case CommandTitle:
		return "GET_TITLE"
	case CommandURL:
		return "GET_URL"
	case CommandBack:
		return "GO_BACK"
	case CommandFill:
		return "FILL_FORM"
	case CommandScreenshot:
		return "TAKE_SCREENSHOT"
	case CommandAnswer:
		return "ANSWER"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed model instruction. Constructed once per loop
// iteration; immutable thereafter.
type Command struct {
	Kind CommandKind
	// Arg holds the URL for Goto, the selector for Click and Fill, and the
	// final answer text for Answer.
	Arg string
	// Value holds the input text for Fill.
	Value string
	// Raw holds the full original model output for Unknown, surfaced in the
	// resulting error.
	Raw string
}

// fillSeparator splits a FILL_FORM remainder into selector and value.
const fillSeparator = " | "

var answerPrefixRE = regexp.MustCompile(`(?i)^answer:?\s*`)

// ParseCommand maps raw model output to exactly one Command. Only the first
// line is considered; everything after it is deliberately discarded. The
// parser never fails: an unmatched keyword yields Unknown, deferring error
// reporting to the loop controller.
func ParseCommand(raw string) Command {
	line := raw
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: CommandUnknown, Raw: raw}
	}
	keyword := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, keyword))

	switch strings.ToUpper(keyword) {
	case "GOTO_URL":
		return Command{Kind: CommandGoto, Arg: rest}
	case "CLICK_SELECTOR":
		return Command{Kind: CommandClick, Arg: rest}
	case "EXTRACT_TEXT":
		return Command{Kind: CommandExtract}
	case "SCROLL_DOWN":
		return Command{Kind: CommandScroll}
	case "GET_TITLE":
		return Command{Kind: CommandTitle}
	case "GET_URL":
		return Command{Kind: CommandURL}
	case "GO_BACK":
		return Command{Kind: CommandBack}
	case "FILL_FORM":
		selector, value := rest, ""
		if parts := strings.SplitN(rest, fillSeparator, 2); len(parts) == 2 {
			selector, value = parts[0], parts[1]
		}
		return Command{Kind: CommandFill, Arg: selector, Value: value}
	case "TAKE_SCREENSHOT":
		return Command{Kind: CommandScreenshot}
	case "ANSWER", "ANSWER:":
		// The answer keeps the full original text, not just the first line,
		// with only the prefix stripped.
		answer := answerPrefixRE.ReplaceAllString(strings.TrimSpace(raw), "")
		return Command{Kind: CommandAnswer, Arg: answer}
	default:
		return Command{Kind: CommandUnknown, Raw: raw}
	}
}

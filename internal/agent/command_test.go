package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Verifies every keyword maps to its command with arguments parsed verbatim.
func TestParseCommand_KeywordTable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "goto with url",
			raw:  "GOTO_URL https://example.com",
			want: Command{Kind: CommandGoto, Arg: "https://example.com"},
		},
		{
			name: "click with selector",
			raw:  "CLICK_SELECTOR #submit-button",
			want: Command{Kind: CommandClick, Arg: "#submit-button"},
		},
		{
			name: "extract",
			raw:  "EXTRACT_TEXT",
			want: Command{Kind: CommandExtract},
		},
		{
			name: "scroll",
			raw:  "SCROLL_DOWN",
			want: Command{Kind: CommandScroll},
		},
		{
			name: "title",
			raw:  "GET_TITLE",
			want: Command{Kind: CommandTitle},
		},
		{
			name: "url",
			raw:  "GET_URL",
			want: Command{Kind: CommandURL},
		},
		{
			name: "back",
			raw:  "GO_BACK",
			want: Command{Kind: CommandBack},
		},
		{
			name: "screenshot",
			raw:  "TAKE_SCREENSHOT",
			want: Command{Kind: CommandScreenshot},
		},
		{
			name: "keyword is case-insensitive",
			raw:  "goto_url https://example.com",
			want: Command{Kind: CommandGoto, Arg: "https://example.com"},
		},
		{
			name: "selector with internal spaces preserved",
			raw:  "CLICK_SELECTOR div.results > a:first-child",
			want: Command{Kind: CommandClick, Arg: "div.results > a:first-child"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.raw))
		})
	}
}

// Verifies FILL_FORM splits on the literal " | " separator and the value
// defaults to empty when absent.
func TestParseCommand_FillForm(t *testing.T) {
	cmd := ParseCommand("FILL_FORM loginBox | secret value")
	assert.Equal(t, CommandFill, cmd.Kind)
	assert.Equal(t, "loginBox", cmd.Arg)
	assert.Equal(t, "secret value", cmd.Value)

	cmd = ParseCommand("FILL_FORM loginBox")
	assert.Equal(t, CommandFill, cmd.Kind)
	assert.Equal(t, "loginBox", cmd.Arg)
	assert.Equal(t, "", cmd.Value)
}

// Verifies both ANSWER forms strip the prefix fully.
func TestParseCommand_Answer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"colon form", "ANSWER: Paris is the capital.", "Paris is the capital."},
		{"bare form", "ANSWER Paris is the capital.", "Paris is the capital."},
		{"lowercase", "answer: Paris is the capital.", "Paris is the capital."},
		{"multi-line answer preserved", "ANSWER: line one\nline two", "line one\nline two"},
		{"empty answer", "ANSWER:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.raw)
			assert.Equal(t, CommandAnswer, cmd.Kind)
			assert.Equal(t, tt.want, cmd.Arg)
		})
	}
}

// Verifies only the first line is considered for command recognition.
func TestParseCommand_FirstLineOnly(t *testing.T) {
	cmd := ParseCommand("GOTO_URL https://example.com\nsome trailing reasoning\nmore text")
	assert.Equal(t, CommandGoto, cmd.Kind)
	assert.Equal(t, "https://example.com", cmd.Arg)
}

// Verifies unmatched input always yields Unknown carrying the full original
// text, and the parser never panics.
func TestParseCommand_Unknown(t *testing.T) {
	tests := []string{
		"DO_SOMETHING weird",
		"",
		"   ",
		"\n\n",
		"I think I should navigate to the page first.",
	}

	for _, raw := range tests {
		cmd := ParseCommand(raw)
		assert.Equal(t, CommandUnknown, cmd.Kind, "input %q", raw)
		assert.Equal(t, raw, cmd.Raw, "input %q", raw)
	}
}

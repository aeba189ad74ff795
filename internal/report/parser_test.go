package report

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestMarkdownParser_PlainMarkdownWithoutSentinel(t *testing.T) {
	p := &MarkdownParser{}

	plainMarkdown := `# Some Document

Just notes, no embedded report.

- item 1
`
	_, err := p.Parse([]byte(plainMarkdown))
	if err == nil {
		t.Fatal("expected error for plain Markdown without sentinel, got nil")
	}
	if !strings.Contains(err.Error(), "not a focus report") {
		t.Errorf("expected error to contain 'not a focus report', got: %q", err.Error())
	}
}

func TestMarkdownParser_PayloadErrors(t *testing.T) {
	badJSON := base64.StdEncoding.EncodeToString([]byte("this is not json {{{"))
	noSession := base64.StdEncoding.EncodeToString([]byte(`{"summary": {}}`))

	cases := []struct {
		name    string
		content string
	}{
		{"missing payload", versionSentinel + "\n\n# Focus session\n"},
		{"unterminated payload", versionSentinel + "\n" + dataPrefix + "abc"},
		{"corrupted base64", versionSentinel + "\n" + dataPrefix + "!!!not-base64!!!" + dataSuffix + "\n"},
		{"invalid embedded JSON", versionSentinel + "\n" + dataPrefix + badJSON + dataSuffix + "\n"},
		{"payload without session", versionSentinel + "\n" + dataPrefix + noSession + dataSuffix + "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&MarkdownParser{}).Parse([]byte(tc.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "not a focus report") {
				t.Errorf("expected error to contain 'not a focus report', got: %q", err.Error())
			}
		})
	}
}

func TestJSONParser_MalformedJSON(t *testing.T) {
	p := &JSONParser{}

	cases := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"truncated object", `{"session": {`},
		{"plain text", "not json at all"},
		{"array instead of object", `[1, 2, 3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("expected error for malformed JSON input %q, got nil", tc.input)
			}
			if !strings.Contains(err.Error(), "failed to parse JSON report") {
				t.Errorf("expected error containing 'failed to parse JSON report', got: %q", err.Error())
			}
		})
	}
}

func TestDetect(t *testing.T) {
	if _, ok := Detect([]byte("  \n{\"session\":{}}")).(*JSONParser); !ok {
		t.Error("JSON document should select JSONParser")
	}
	if _, ok := Detect([]byte(versionSentinel)).(*MarkdownParser); !ok {
		t.Error("Markdown document should select MarkdownParser")
	}
}

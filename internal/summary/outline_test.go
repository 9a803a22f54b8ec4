package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	text := "## Email Summary\n\n### High Priority\n\n- Review PR\n\n### Low Priority\n\n(none)\n"

	got := Outline(text)
	require.Equal(t, []Heading{
		{Level: 2, Text: "Email Summary", Anchor: "email-summary", Empty: true},
		{Level: 3, Text: "High Priority", Anchor: "high-priority"},
		{Level: 3, Text: "Low Priority", Anchor: "low-priority", Empty: true},
	}, got)
}

func TestOutline_NoHeadings(t *testing.T) {
	require.Nil(t, Outline(""))
	require.Nil(t, Outline("just a paragraph\n- and a list"))
}

func TestOutline_SkipsFencedHeadings(t *testing.T) {
	text := "## Real\n\n```\n## not a heading\n```\n\n~~~~\n# also not\n~~~\n~~~~\n## After\nbody\n"

	got := Outline(text)
	require.Len(t, got, 2)
	require.Equal(t, "Real", got[0].Text)
	require.False(t, got[0].Empty)
	require.Equal(t, "After", got[1].Text)
}

func TestOutline_ClosingHashes(t *testing.T) {
	got := Outline("## Inbox ##\nmail\n### Sent #\t\n### C# tips\n")
	require.Equal(t, []Heading{
		{Level: 2, Text: "Inbox", Anchor: "inbox"},
		{Level: 3, Text: "Sent", Anchor: "sent", Empty: true},
		{Level: 3, Text: "C# tips", Anchor: "c-tips", Empty: true},
	}, got)
}

func TestOutline_HeadingTextOnSameLine(t *testing.T) {
	require.Nil(t, Outline("#\nfoo\n"))
	require.Nil(t, Outline("##\n\nbody\n"))
	require.Nil(t, Outline("#hashtag\n"))
}

func TestOutline_DuplicateAnchors(t *testing.T) {
	got := Outline("## Today\nx\n## Today\ny\n## Today\nz\n")
	require.Len(t, got, 3)
	require.Equal(t, "today", got[0].Anchor)
	require.Equal(t, "today-1", got[1].Anchor)
	require.Equal(t, "today-2", got[2].Anchor)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Meeting Schedule", "meeting-schedule"},
		{"  JIRA Tickets  ", "jira-tickets"},
		{"**Bold** heading_one", "bold-heading-one"},
		{"Q3: Review & Plan", "q3-review--plan"},
		{"!!!", "heading"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Slug(tt.in), tt.in)
	}
}

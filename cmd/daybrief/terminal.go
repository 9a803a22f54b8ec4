package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/hpungsan/daybrief/internal/chat"
	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/ops"
	"github.com/hpungsan/daybrief/internal/section"
)

const emptySection = "_No summary available yet. Run `daybrief summary refresh`._\n"

var (
	accent = lipgloss.Color("#2563EB")
	muted  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	userStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			MarginLeft(8)
	botStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

var (
	mdOnce     sync.Once
	mdRenderer *glamour.TermRenderer
)

// renderMarkdown renders markdown for the terminal. Piped output is left as
// plain markdown.
func renderMarkdown(text string) string {
	if !stdoutIsTerminal() {
		return text
	}
	mdOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			mdRenderer = r
		}
	})
	if mdRenderer == nil {
		return text
	}
	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

func stdoutIsTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// sectionMarkdown formats a section view as a markdown document.
func sectionMarkdown(out *ops.SectionOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", out.Title)

	switch out.Kind {
	case section.KindWelcome:
		b.WriteString("Sections:\n\n")
		for _, e := range section.Nav() {
			fmt.Fprintf(&b, "- `%s` %s\n", e.ID, e.Label)
		}
	case section.KindChat:
		fmt.Fprintf(&b, "Run `daybrief chat %s` to talk to this assistant.\n", out.Panel)
	case section.KindTodo:
		if len(out.Todos) == 0 {
			b.WriteString("_No todo items._\n")
		} else {
			b.WriteString("## Today's Main Focus\n\n")
		}
		for _, item := range out.Todos {
			b.WriteString("- [ ] ")
			if item.Time != "" {
				fmt.Fprintf(&b, "`%s` ", item.Time)
			}
			fmt.Fprintf(&b, "**%s**", item.Title)
			if item.Description != "" {
				b.WriteString(": " + item.Description)
			}
			b.WriteString("\n")
		}
		if strings.TrimSpace(out.Content) != "" {
			b.WriteString("\n" + strings.TrimSpace(out.Content) + "\n")
		}
	default:
		if strings.TrimSpace(out.Content) == "" {
			b.WriteString(emptySection)
			break
		}
		b.WriteString(strings.TrimSpace(out.Content) + "\n")
	}
	return b.String()
}

func userBubble(text string) string {
	return userStyle.Render(text)
}

func botBubble(text string) string {
	return botStyle.Render(strings.TrimSpace(renderMarkdown(text)))
}

const replHelp = `/mode <chat|create|summarize>  switch mode (jira only)
/ticket <id>                   set the ticket to summarize
/clear                         start over
/quit                          leave`

// runREPL reads messages line by line and prints each reply as a bubble.
func runREPL(ctx context.Context, s *chat.Session) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	p := s.Panel()
	fmt.Println(titleStyle.Render(p.Title) + dimStyle.Render("  /help for commands"))

	for {
		input, err := line.Prompt(p.ID + "> ")
		if err != nil {
			// Ctrl+C or Ctrl+D
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)

		if strings.HasPrefix(input, "/") {
			quit, msg := replCommand(s, input)
			if msg != "" {
				fmt.Println(dimStyle.Render(msg))
			}
			if quit {
				return nil
			}
			continue
		}
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		fmt.Println(userBubble(input))
		reply, err := s.Send(ctx, input)
		switch {
		case stderrors.Is(err, chat.ErrCleared):
			continue
		case err != nil:
			fmt.Println(errorStyle.Render(errors.As(err).Message))
			continue
		}
		fmt.Println(botBubble(reply.Content))
	}
}

// replCommand applies a slash command to s and returns whether to quit plus
// a status line.
func replCommand(s *chat.Session, input string) (bool, string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "quit", "exit":
		return true, ""
	case "help":
		return false, replHelp
	case "clear":
		s.Clear()
		return false, "conversation cleared"
	case "mode":
		if err := s.SetMode(chat.Mode(strings.ToLower(arg))); err != nil {
			return false, errors.As(err).Message
		}
		return false, "mode: " + strings.ToLower(arg)
	case "ticket":
		s.SetTicketID(arg)
		return false, "ticket: " + arg
	default:
		return false, fmt.Sprintf("unknown command %q, try /help", "/"+name)
	}
}

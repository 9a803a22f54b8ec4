package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/ops"
	"github.com/hpungsan/daybrief/internal/summary"
	"github.com/hpungsan/daybrief/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *ops.Dashboard) *cli.App {
	app := &cli.App{
		Name:    "daybrief",
		Usage:   "Daily summary dashboard",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(d),
			summaryCmd(d),
			sectionCmd(d),
			chatCmd(d),
			ticketCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(d *ops.Dashboard) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port %d", port)))
			}
			return web.Run(web.NewServer(d, Version, c.String("bind"), port))
		},
	}
}

// summaryCmd creates the summary command group.
func summaryCmd(d *ops.Dashboard) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Refresh or show the daily summary",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch the daily summary from the backend and store it",
				Action: func(c *cli.Context) error {
					output, err := d.Refresher.Refresh(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "show",
				Usage: "Print the stored daily summary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml"},
					&cli.StringFlag{Name: "field", Usage: "Print a single field as plain text"},
				},
				Action: func(c *cli.Context) error {
					format := strings.ToLower(c.String("format"))
					if format != "json" && format != "yaml" {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want json or yaml)", format)))
					}
					field := c.String("field")
					if field != "" && !summary.KnownField(field) {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown summary field %q", field)))
					}

					doc, err := ops.GetSummary(c.Context, d.Store)
					if err != nil {
						return outputError(err)
					}
					if field != "" {
						fmt.Println(doc.Field(field))
						return nil
					}
					if format == "yaml" {
						return outputYAML(doc)
					}
					return outputJSON(doc)
				},
			},
		},
	}
}

// sectionCmd creates the section command.
func sectionCmd(d *ops.Dashboard) *cli.Command {
	return &cli.Command{
		Name:      "section",
		Usage:     "Show a dashboard section (flags go before the id)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "Print markdown without terminal rendering"},
			&cli.BoolFlag{Name: "json", Usage: "Print the section view as JSON"},
		},
		Action: func(c *cli.Context) error {
			if err := singleArg(c, "section id"); err != nil {
				return outputError(err)
			}

			output := d.ViewSection(c.Context, c.Args().First())
			if c.Bool("json") {
				return outputJSON(output)
			}

			text := sectionMarkdown(output)
			if !c.Bool("raw") {
				text = renderMarkdown(text)
			}
			fmt.Print(text)
			return nil
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(d *ops.Dashboard) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Talk to an assistant panel (interactive unless --message is given; flags go before the panel)",
		ArgsUsage: "<panel>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Send one message and exit"},
			&cli.StringFlag{Name: "mode", Usage: "Panel mode: chat|create|summarize (jira only)"},
			&cli.StringFlag{Name: "ticket", Aliases: []string{"t"}, Usage: "Ticket id for summarize mode"},
			&cli.BoolFlag{Name: "json", Usage: "Print the reply and conversation state as JSON"},
		},
		Action: func(c *cli.Context) error {
			if err := singleArg(c, "panel"); err != nil {
				return outputError(err)
			}
			panel := c.Args().First()

			s, err := ops.ConfigureChat(d.Chats, panel, c.String("mode"), c.String("ticket"), c.IsSet("ticket"))
			if err != nil {
				return outputError(err)
			}

			if !c.IsSet("message") {
				return runREPL(c.Context, s)
			}

			output, err := ops.Chat(c.Context, d.Chats, ops.ChatInput{
				Panel:   panel,
				Message: c.String("message"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			if output.Reply != nil {
				fmt.Println(botBubble(output.Reply.Content))
			}
			return nil
		},
	}
}

// ticketCmd creates the ticket command group.
func ticketCmd(d *ops.Dashboard) *cli.Command {
	return &cli.Command{
		Name:  "ticket",
		Usage: "Create or summarize Jira tickets",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a ticket (reads a JSON object from stdin unless --summary is given)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Ticket summary"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Ticket description"},
					&cli.StringFlag{Name: "issue-type", Usage: "Issue type, e.g. Task or Bug"},
					&cli.StringFlag{Name: "priority", Usage: "Priority, e.g. High"},
				},
				Action: func(c *cli.Context) error {
					payload, err := ticketPayload(c)
					if err != nil {
						return outputError(err)
					}

					output, err := ops.CreateTicket(c.Context, d.Client, payload)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "summarize",
				Usage:     "Summarize a ticket",
				ArgsUsage: "<ticket-id>",
				Action: func(c *cli.Context) error {
					output, err := ops.SummarizeTicket(c.Context, d.Client, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// ticketPayload builds the create-ticket body from flags, or from stdin when
// no --summary flag is given.
func ticketPayload(c *cli.Context) (map[string]any, error) {
	if c.IsSet("summary") {
		payload := map[string]any{"summary": c.String("summary")}
		for flag, key := range map[string]string{
			"description": "description",
			"issue-type":  "issueType",
			"priority":    "priority",
		} {
			if v := c.String(flag); v != "" {
				payload[key] = v
			}
		}
		return payload, nil
	}

	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("pass --summary or pipe a JSON ticket via stdin")
	}
	text, err := readStdin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, errors.NewInvalidRequest("stdin must contain a JSON object")
	}
	return payload, nil
}

// Helper functions

// singleArg checks that exactly one positional argument was given. Flags
// after the positional argument are not parsed by urfave/cli, so they show
// up here as extra arguments.
func singleArg(c *cli.Context, name string) error {
	switch {
	case c.NArg() == 0:
		return errors.NewInvalidRequest(name + " is required")
	case c.NArg() > 1:
		return errors.NewInvalidRequest(fmt.Sprintf("unexpected arguments after %s %q: put flags before it", name, c.Args().First()))
	}
	return nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML marshals result to stdout as YAML.
func outputYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// outputError formats error for CLI.
func outputError(err error) error {
	dErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

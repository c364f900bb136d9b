package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"household-ledger/internal/app"
	"household-ledger/internal/handlers"
)

func newConsoleCommand(g *globals) *cobra.Command {
	var (
		userID   int64
		fullName string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the assistant from the terminal as one participant",
		Long: `Lines starting with "/" are intents ("/stats_my month", "/select plan:3").
"#N" picks the N-th suggested option. Any other line is free text for the
active flow. "/quit" leaves the console.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if userID == 0 {
				ids := cfg.ParticipantIDs()
				if len(ids) > 0 {
					userID = ids[0]
				}
			}
			deps, err := app.New(cfg, app.Options{})
			if err != nil {
				return err
			}
			defer deps.Close()

			c := &console{deps: deps, user: handlers.Update{UserID: userID, FullName: fullName}}
			return c.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "participant id to act as (defaults to the first participant)")
	cmd.Flags().StringVar(&fullName, "name", "", "display name sent with every turn")

	return cmd
}

type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	*bufio.Scanner
}

func (s scannerReader) ReadLine() (string, error) {
	if s.Scan() {
		return s.Text(), nil
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type console struct {
	deps    *app.Dependencies
	user    handlers.Update
	options []handlers.Option
}

func (c *console) run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	var (
		in     lineReader
		prompt func(string)
	)

	// Terminals get a line editor; pipes are read with a scanner.
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), state)

		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, stdout}, "> ")
		in, stdout = t, t
		prompt = func(p string) { t.SetPrompt(p) }
	} else {
		s := bufio.NewScanner(stdin)
		s.Buffer(make([]byte, 64<<10), 64<<10)
		in = scannerReader{s}
		prompt = func(string) {}
	}

	c.print(stdout, c.deps.Handlers.Handle(ctx, c.update("start", "", "")))
	for {
		line, err := in.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		u, quit, ok := c.parse(line)
		if quit {
			return nil
		}
		if !ok {
			continue
		}
		reply := c.deps.Handlers.Handle(ctx, u)
		c.print(stdout, reply)
		for _, msg := range c.deps.Outbox.Drain(c.user.UserID) {
			fmt.Fprintf(stdout, "🔔 %s\n\n", msg)
		}
		if reply.State != "" {
			prompt("[" + reply.State + "] > ")
		} else {
			prompt("> ")
		}
	}
}

func (c *console) update(intent, arg, text string) handlers.Update {
	u := c.user
	u.Intent, u.Arg, u.Text = intent, arg, text
	return u
}

// parse turns one input line into an update. ok is false for lines that
// produce nothing to send.
func (c *console) parse(line string) (u handlers.Update, quit, ok bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return u, false, false
	case line == "/quit" || line == "/exit":
		return u, true, false
	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(line[1:])
		if err != nil || n < 1 || n > len(c.options) {
			return c.update("text", "", line), false, true
		}
		opt := c.options[n-1]
		if opt.Intent == "text" {
			return c.update("text", "", opt.Arg), false, true
		}
		return c.update(opt.Intent, opt.Arg, ""), false, true
	case strings.HasPrefix(line, "/"):
		intent, arg, _ := strings.Cut(line[1:], " ")
		return c.update(intent, strings.TrimSpace(arg), ""), false, true
	}
	return c.update("text", "", line), false, true
}

func (c *console) print(w io.Writer, r handlers.Reply) {
	for _, msg := range r.Messages {
		fmt.Fprintf(w, "%s\n\n", msg)
	}
	c.options = r.Options
	for i, opt := range r.Options {
		fmt.Fprintf(w, "  #%d %s\n", i+1, opt.Label)
	}
	if len(r.Options) > 0 {
		fmt.Fprintln(w)
	}
}

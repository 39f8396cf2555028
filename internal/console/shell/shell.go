// Package shell is a line-oriented front end for a console session.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/embeddables/internal/console"
	"github.com/fastygo/embeddables/internal/console/pages"
)

const prompt = "> "

// Shell dispatches operator commands to one console session and echoes the activity log.
type Shell struct {
	session *console.Session
	out     io.Writer
	root    *cobra.Command
	printed int
}

func New(session *console.Session, out io.Writer) *Shell {
	s := &Shell{session: session, out: out}
	s.root = s.commands()
	return s
}

func (s *Shell) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "embeddables",
		Short:         "Operator console for the embeddables demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(s.out)
	root.SetErr(s.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "Load the user directory and detect the billing mode",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := s.session.LoadUsers(cmd.Context()); err != nil {
					return nil
				}
				s.printUsers()
				return nil
			},
		},
		&cobra.Command{
			Use:   "use <user_id>",
			Short: "Continue as a user from the directory",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if _, err := s.session.Continue(args[0]); err != nil {
					return err
				}
				s.show(s.session.Navigate(s.session.Fragment()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "manual <user_id>",
			Short: "Continue as a user id typed by hand",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				if _, err := s.session.UseManual(id); err != nil {
					return nil
				}
				s.show(s.session.Navigate(s.session.Fragment()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "go <page>",
			Short: "Show a page: carriers, billing, paymentlogs or reports",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if s.session.State().ActiveUserID == "" {
					return console.ErrNoSession
				}
				s.show(s.session.Navigate(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "open",
			Short: "Open the widget of the current page",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_ = s.session.Open(cmd.Context())
				return nil
			},
		},
		&cobra.Command{
			Use:   "switch",
			Short: "Forget the active user",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				if err := s.session.SwitchUser(); err != nil {
					return err
				}
				fmt.Fprintln(s.out, "Signed out. Run `users` to pick another user.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "theme",
			Short: "Toggle the dark theme",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_ = s.session.ToggleTheme(cmd.Context())
				return nil
			},
		},
		&cobra.Command{
			Use:   "nav",
			Short: "List pages and whether the billing mode enables them",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				for _, item := range s.session.NavItems() {
					marker := " "
					if item.Current {
						marker = "*"
					}
					status := "enabled"
					if !item.Enabled {
						status = "disabled"
					}
					fmt.Fprintf(s.out, "%s %-12s %-18s %s\n", marker, item.Route, item.Title, status)
				}
				return nil
			},
		},
	)
	return root
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	s.root.SetArgs(args)
	err := s.root.ExecuteContext(ctx)
	s.flushLog()
	return err
}

// Run reads commands from in until EOF, "quit" or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := s.Exec(ctx, line); err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		fmt.Fprint(s.out, prompt)
	}
	return scanner.Err()
}

func (s *Shell) printUsers() {
	fmt.Fprintln(s.out, s.session.ModeHelp())
	for _, opt := range s.session.Options() {
		fmt.Fprintln(s.out, "  "+opt.Label)
	}
}

func (s *Shell) show(route pages.Route) {
	view, ok := s.session.Screen().View()
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "[%s] %s\n%s\nUser: %s | Mode: %s\n(open: %s)\n",
		route, view.Title, view.Description, view.UserLabel, view.Mode, view.ActionLabel)
}

func (s *Shell) flushLog() {
	lines := s.session.Log()
	for _, line := range lines[s.printed:] {
		fmt.Fprintln(s.out, line)
	}
	s.printed = len(lines)
}

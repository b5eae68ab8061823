package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ShuffleRoster/internal/config"
	"github.com/JonMunkholm/ShuffleRoster/internal/core"
	"github.com/JonMunkholm/ShuffleRoster/internal/logging"
)

// app carries what every subcommand shares.
type app struct {
	cfg *config.Config
	now func() time.Time

	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "roster",
		Short: "Split a student roster into random groups",
		Long: `Load a roster from a CSV or Excel file, split the students into
groups of a chosen size and save the result as CSV, Excel or PDF.

Defaults come from the same environment variables as the web server
(GROUP_DEFAULT_SIZE, GROUP_MAX_SIZE, EXPORT_DEFAULT_FORMAT,
UPLOAD_MAX_FILE_SIZE).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), a.logLevel, a.logFormat))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		a.previewCmd(),
		a.groupCmd(),
		formatsCmd(),
	)
	return root
}

// levelColors colors notifications by level.
var levelColors = map[core.Level]*color.Color{
	core.LevelSuccess: color.New(color.FgGreen),
	core.LevelWarning: color.New(color.FgYellow),
	core.LevelError:   color.New(color.FgRed, color.Bold),
}

func printNotification(w io.Writer, n core.Notification) {
	c, ok := levelColors[n.Level]
	if !ok {
		c = color.New(color.Reset)
	}
	c.Fprintln(w, n.Message)
}

// reportError prints a mapped notification for roster errors and the raw
// error for anything else, such as a bad flag or a missing file.
func reportError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		n := core.NotificationFor(err)
		printNotification(w, n)
		if n.Level == core.LevelError {
			fmt.Fprintf(w, "%s (Code: %s)\n", core.MapError(err).Action, n.Code)
		}
		return
	}
	levelColors[core.LevelError].Fprintf(w, "Error: %v\n", err)
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported file formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, f := range core.Formats {
				mode := "read, write"
				if !f.Readable() {
					mode = "write"
				}
				fmt.Fprintf(w, "%-5s %s\n", f, mode)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

func (a *app) previewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the students in a roster file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.load(args[0], core.OptionsFromConfig(a.cfg))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderGrid(sess.View(), limit))
			fmt.Fprintln(w, sess.Status)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many rows (0 shows all)")
	return cmd
}

// load reads a roster file into a new session.
func (a *app) load(path string, opts core.SessionOptions) (*core.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sess := core.NewSession(opts)
	if err := sess.Load(filepath.Base(path), f); err != nil {
		return nil, err
	}
	return sess, nil
}

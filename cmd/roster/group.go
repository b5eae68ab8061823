package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

// groupFlags holds the options of the group command.
type groupFlags struct {
	size      int
	noShuffle bool
	seed      uint64
	format    string
	out       string
	quiet     bool
}

func (a *app) groupCmd() *cobra.Command {
	var f groupFlags

	cmd := &cobra.Command{
		Use:   "group FILE",
		Short: "Group the students in a roster file and save the result",
		Long: `Split the students in FILE into groups of --size and save the
grouped roster as grouped_<timestamp>.<format> in --out.

Students are shuffled first unless --no-shuffle is given. --seed makes
the shuffle repeatable. Use --out - to write the export to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := core.OptionsFromConfig(a.cfg)
			if cmd.Flags().Changed("seed") {
				opts.Grouper = core.NewSeededGrouper(f.seed)
			}
			return a.runGroup(cmd, args[0], opts, f)
		},
	}

	cmd.Flags().IntVarP(&f.size, "size", "s", 0, "students per group (default GROUP_DEFAULT_SIZE)")
	cmd.Flags().BoolVar(&f.noShuffle, "no-shuffle", false, "keep the file order")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for a repeatable shuffle")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "export format: csv, xlsx, xls or pdf (default EXPORT_DEFAULT_FORMAT)")
	cmd.Flags().StringVarP(&f.out, "out", "o", ".", "directory to save the export in, or - for stdout")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not print the grouped table")
	return cmd
}

func (a *app) runGroup(cmd *cobra.Command, path string, opts core.SessionOptions, f groupFlags) error {
	sess, err := a.load(path, opts)
	if err != nil {
		return err
	}

	if f.format != "" {
		if err := sess.SelectFormat(core.Format(f.format)); err != nil {
			return err
		}
	}

	size := f.size
	if size == 0 {
		size = sess.GroupSize
	}
	if err := sess.CreateGroups(size, !f.noShuffle); err != nil {
		return err
	}

	exp, err := sess.Save(a.now())
	if err != nil {
		return err
	}

	slog.Debug("groups created",
		"file", sess.FileName,
		"students", sess.Data.Len(),
		"size", size,
		"shuffle", sess.Shuffle,
		"groups", sess.Grouped.MaxGroup(),
	)

	if f.out == "-" {
		_, err := cmd.OutOrStdout().Write(exp.Data)
		return err
	}

	w := cmd.OutOrStdout()
	if !f.quiet {
		fmt.Fprintln(w, renderGrid(sess.View(), 0))
	}
	printNotification(w, core.Success(core.MsgGroupsCreated))
	fmt.Fprintln(w, sess.Status)

	dest := filepath.Join(f.out, exp.Filename)
	if err := os.WriteFile(dest, exp.Data, 0o644); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	printNotification(w, core.Success(core.SavedMessage(sess.Format)))
	fmt.Fprintln(w, dest)
	return nil
}

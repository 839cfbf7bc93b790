package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/polystore/pkg/store/gitsync"
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Git-sync operations (requires --git-sync)",
}

var gitLogCmd = &cobra.Command{
	Use:   "log <collection> <id>",
	Short: "Show the commit history touching a document's identifier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, cleanup, err := buildWrapper(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		history, err := w.GetHistory(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("git log: %w", err)
		}
		return printJSON(history)
	},
}

var gitRevertCmd = &cobra.Command{
	Use:   "revert <hash>",
	Short: "Hard-reset the repository to a prior commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, cleanup, err := buildWrapper(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := w.RevertTo(ctx, args[0]); err != nil {
			return fmt.Errorf("git revert: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

var gitSyncNowCmd = &cobra.Command{
	Use:   "sync",
	Short: "Commit any pending changes and pull/push against the remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, cleanup, err := buildWrapper(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := w.SyncNow(ctx); err != nil {
			return fmt.Errorf("git sync: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	gitCmd.AddCommand(gitLogCmd)
	gitCmd.AddCommand(gitRevertCmd)
	gitCmd.AddCommand(gitSyncNowCmd)
}

// buildWrapper requires --git-sync so the constructed Provider is a
// *gitsync.Wrapper, since history/revert/sync-now are wrapper-only
// operations with no equivalent on a plain Provider.
func buildWrapper(ctx context.Context) (*gitsync.Wrapper, func(), error) {
	if !flags.gitWrap {
		return nil, nil, fmt.Errorf("git subcommands require --git-sync")
	}
	p, err := buildProvider(ctx)
	if err != nil {
		return nil, nil, err
	}
	w, ok := p.(*gitsync.Wrapper)
	if !ok {
		return nil, nil, fmt.Errorf("internal error: --git-sync provider is not a *gitsync.Wrapper")
	}
	return w, func() { _ = w.Disconnect(ctx) }, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Read one document by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		doc, err := p.Read(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if doc == nil {
			printNull()
			return nil
		}
		return printJSON(doc)
	},
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

var createCmd = &cobra.Command{
	Use:   "create <collection> <json-document>",
	Short: "Create a document from a JSON object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := decodeDocument(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		created, err := p.Create(ctx, args[0], doc)
		if err != nil {
			return fmt.Errorf("create: %w", err)
		}
		return printJSON(created)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <collection> <id> <json-partial>",
	Short: "Merge a partial JSON object over an existing document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		partial, err := decodeDocument(args[2])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		updated, err := p.Update(ctx, args[0], args[1], partial)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		if updated == nil {
			printNull()
			return nil
		}
		return printJSON(updated)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete a document by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		removed, err := p.Delete(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Println(removed)
		return nil
	},
}

func decodeDocument(raw string) (store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return doc, nil
}

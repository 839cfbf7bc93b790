package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

var schemaFlags struct {
	fields   []string
	required []string
}

var ensureSchemaCmd = &cobra.Command{
	Use:   "ensure-schema <collection>",
	Short: "Declare a collection's shape ahead of first write",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		required := make(map[string]bool, len(schemaFlags.required))
		for _, f := range schemaFlags.required {
			required[f] = true
		}

		var def *store.SchemaDefinition
		if len(schemaFlags.fields) > 0 {
			def = &store.SchemaDefinition{}
			for _, name := range schemaFlags.fields {
				def.Fields = append(def.Fields, store.SchemaField{Name: name, Required: required[name]})
			}
		}

		if err := p.EnsureSchema(ctx, args[0], def); err != nil {
			return fmt.Errorf("ensure-schema: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

var indexFlags struct {
	name   string
	fields string
	unique bool
}

var ensureIndexCmd = &cobra.Command{
	Use:   "ensure-index <collection>",
	Short: "Create an index if it does not already exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if indexFlags.fields == "" {
			return fmt.Errorf("--index-fields is required")
		}

		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		def := store.IndexDefinition{
			Name:   indexFlags.name,
			Fields: strings.Split(indexFlags.fields, ","),
			Unique: indexFlags.unique,
		}
		if err := p.EnsureIndex(ctx, args[0], def); err != nil {
			return fmt.Errorf("ensure-index: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	ensureSchemaCmd.Flags().StringArrayVar(&schemaFlags.fields, "field", nil, "field name, repeatable")
	ensureSchemaCmd.Flags().StringArrayVar(&schemaFlags.required, "required", nil, "field name that must be present, repeatable")

	ensureIndexCmd.Flags().StringVar(&indexFlags.name, "index-name", "", "index name")
	ensureIndexCmd.Flags().StringVar(&indexFlags.fields, "index-fields", "", "comma-separated field names")
	ensureIndexCmd.Flags().BoolVar(&indexFlags.unique, "unique", false, "create a unique index")
}

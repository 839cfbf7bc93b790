package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "polystore",
	Short: "polystore — polyglot key/value-document storage CLI",
	Long:  "polystore is a library for storing documents across memory, file, relational, document, and object-store back-ends behind one Provider contract. This CLI is an operator's skin over that library.",
}

func init() {
	registerProviderFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(ensureSchemaCmd)
	rootCmd.AddCommand(ensureIndexCmd)
	rootCmd.AddCommand(gitCmd)
}

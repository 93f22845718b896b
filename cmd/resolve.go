package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

func resolveCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "resolve [token]",
		Short: "Resolve a serialized mention token back to its item",
		Long: `Resolve maps a token like "agent:code-reviewer" or a full
"@[file:local:src/main.go]" form back to the item and owning provider.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runResolve(args[0], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runResolve(token string, jsonOutput bool) {
	eng, err := loadEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	// Accept both the bare token and the full @[...] form.
	if id, ok := mention.ParseToken(token); ok {
		token = id
	}

	item, provider := eng.Resolve(token)
	if item == nil {
		fmt.Fprintf(os.Stderr, "Unrecognized token: %s\n", token)
		os.Exit(1)
	}

	if jsonOutput {
		out := map[string]any{"provider": provider.ID, "item": item}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Provider:    %s\n", provider.ID)
	fmt.Printf("Label:       %s\n", item.Label)
	if item.Description != "" {
		fmt.Printf("Description: %s\n", item.Description)
	}
	fmt.Printf("Token:       %s\n", mention.FormatToken(item.ID))
}

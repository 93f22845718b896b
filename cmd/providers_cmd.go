package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func providersCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List registered mention providers",
		Run: func(cmd *cobra.Command, args []string) {
			runProviders(jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

type providerEntry struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Trigger  string `json:"trigger"`
	Priority int    `json:"priority"`
	Category string `json:"category"`
}

func runProviders(jsonOutput bool) {
	eng, err := loadEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	var entries []providerEntry
	for _, p := range eng.Registry.GetAll() {
		entries = append(entries, providerEntry{
			ID:       p.ID,
			Label:    p.Label,
			Trigger:  string(p.Trigger.Char),
			Priority: p.Priority,
			Category: p.Category.Label,
		})
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return
	}
	if len(entries) == 0 {
		fmt.Println("No providers registered.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tLABEL\tTRIGGER\tPRIORITY\tCATEGORY\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.Label, e.Trigger, e.Priority, e.Category)
	}
	tw.Flush()
}

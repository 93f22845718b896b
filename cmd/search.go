package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/mention/internal/mention"
	"github.com/nextlevelbuilder/mention/pkg/mcp"
)

func searchCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
		timeout    time.Duration
		mcpFile    string
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run an aggregated mention search across all providers",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			runSearch(query, limit, timeout, mcpFile, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max results (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "search deadline")
	cmd.Flags().StringVar(&mcpFile, "mcp", "", "JSON file describing MCP servers and tools to search")
	return cmd
}

// mcpContextFile is the --mcp input: server connection states plus the tool
// names each server exposes.
type mcpContextFile struct {
	Servers map[string]bool     `json:"servers"`
	Tools   map[string][]string `json:"tools"`
}

// loadMCPContext reads an --mcp file into search request fields.
func loadMCPContext(path string) ([]string, []mention.ServerStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mcp context: %w", err)
	}
	var file mcpContextFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse mcp context %s: %w", path, err)
	}

	byServer := make(map[string][]mcpgo.Tool, len(file.Tools))
	for server, names := range file.Tools {
		tools := make([]mcpgo.Tool, 0, len(names))
		for _, name := range names {
			tools = append(tools, mcpgo.Tool{Name: name})
		}
		byServer[server] = tools
	}
	return mcp.MergeContextTools(byServer), mcp.Statuses(file.Servers), nil
}

func runSearch(query string, limit int, timeout time.Duration, mcpFile string, jsonOutput bool) {
	eng, err := loadEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	req := &mention.SearchRequest{Query: query, Limit: limit}
	if mcpFile != "" {
		tools, servers, err := loadMCPContext(mcpFile)
		if err != nil {
			fatal(err)
		}
		req.MCPTools = tools
		req.MCPServers = servers
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res := eng.SearchContext(ctx, req)

	if jsonOutput {
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(res.Items) == 0 {
		fmt.Println("No matches.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TOKEN\tLABEL\tDESCRIPTION\n")
	for _, item := range res.Items {
		desc := item.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Fprintf(tw, "@[%s]\t%s\t%s\n", item.ID, item.Label, desc)
	}
	tw.Flush()

	if res.HasMore {
		fmt.Printf("\n(more results available, raise --limit)\n")
	}
	fmt.Printf("%d result(s) in %s\n", len(res.Items), res.Timing.Round(time.Millisecond))
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/dokploy-deploy/internal/deploy"
	"github.com/joescharf/dokploy-deploy/internal/monorepo"
	"github.com/joescharf/dokploy-deploy/internal/output"
)

var detectJSON bool

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Show how a repository would be deployed",
	Long: `Classify a directory as a single application or a monorepo and list
the applications that would be created. No git or Dokploy calls are made.

Defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		return detectRun(path)
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the classification as JSON")
	rootCmd.AddCommand(detectCmd)
}

func detectRun(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}

	opts := []monorepo.Option{
		monorepo.WithHeuristicFallback(viper.GetBool("monorepo.heuristic_fallback")),
	}
	if !detectJSON {
		opts = append(opts, monorepo.WithReporter(ui))
	}
	res := monorepo.Classify(path, opts...)

	if detectJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	kind := "single application"
	if res.IsMultiApp {
		kind = "monorepo"
	}
	ui.Info("%s: %s (%s confidence)", output.Cyan(res.Root.Name), kind, output.ConfidenceColor(string(res.Confidence)))
	for _, s := range res.Signals {
		line := fmt.Sprintf("%s: %s", s.Tool, s.File)
		if len(s.Patterns) > 0 {
			line += " [" + strings.Join(s.Patterns, ", ") + "]"
		}
		ui.Detail("%s", line)
	}
	fmt.Fprintln(ui.Out)

	domain := viper.GetString("domain")
	headers := []string{"Application", "Build Path"}
	if domain != "" {
		headers = append(headers, "Host")
	}
	table := ui.Table(headers)
	for _, e := range res.Entries {
		row := []string{output.Cyan(e.Name), e.BuildPath}
		if domain != "" {
			row = append(row, deploy.Host(res.Root.Name, e.Name, domain, res.IsMultiApp))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

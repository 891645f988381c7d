package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/dokploy-deploy/internal/output"
	"github.com/joescharf/dokploy-deploy/internal/store"
)

var (
	historyProject string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded deploy runs",
	Long: `Show the runs recorded in the local journal.

Running bare 'dokploy-deploy history' is the same as 'dokploy-deploy history list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListRun()
	},
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListRun()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its applications and steps",
	Long:  "Show one run. The ID may be shortened to any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyShowRun(args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyListCmd} {
		c.Flags().StringVarP(&historyProject, "project", "p", "", "Only runs of this project")
		c.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of runs (0 for all)")
	}
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStore() (store.Store, error) {
	if !viper.GetBool("history.enabled") {
		return nil, fmt.Errorf("run history is disabled (history.enabled=false)")
	}
	return openStore(context.Background(), viper.GetString("history.db_path"))
}

func historyListRun() error {
	s, err := historyStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(context.Background(), store.RunListFilter{
		ProjectName: historyProject,
		Limit:       historyLimit,
	})
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		ui.Info("No runs recorded yet.")
		return nil
	}

	table := ui.Table([]string{"ID", "Project", "Type", "Status", "When"})
	for _, r := range runs {
		kind := "single"
		if r.MultiApp {
			kind = "monorepo"
		}
		table.Append([]string{
			shortID(r.ID),
			output.Cyan(r.ProjectName),
			kind,
			output.OutcomeColor(string(r.Status)),
			timeAgo(r.CreatedAt),
		})
	}
	table.Render()
	return nil
}

func historyShowRun(id string) error {
	s, err := historyStore()
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(r.ProjectName))
	fmt.Fprintf(ui.Out, "  Run:        %s\n", r.ID)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.OutcomeColor(string(r.Status)))
	fmt.Fprintf(ui.Out, "  When:       %s (%s)\n", r.CreatedAt.Local().Format(time.DateTime), timeAgo(r.CreatedAt))
	fmt.Fprintf(ui.Out, "  Path:       %s\n", r.RootPath)
	if r.RemoteURL != "" {
		fmt.Fprintf(ui.Out, "  Remote:     %s\n", r.RemoteURL)
	}
	if r.ProjectID != "" {
		fmt.Fprintf(ui.Out, "  Project ID: %s\n", r.ProjectID)
	}
	fmt.Fprintln(ui.Out)

	for _, a := range r.Apps {
		fmt.Fprintf(ui.Out, "%s %s  %s\n", output.Cyan(a.Name), output.Gray(a.BuildPath), output.OutcomeColor(string(a.Status)))
		fmt.Fprintf(ui.Out, "  Host:       https://%s\n", a.Host)
		if a.ApplicationID != "" {
			fmt.Fprintf(ui.Out, "  App ID:     %s\n", a.ApplicationID)
		}
		if a.EnvFile != "" {
			env := a.EnvFile
			if a.SharedEnv {
				env += " (shared)"
			}
			fmt.Fprintf(ui.Out, "  Env file:   %s\n", env)
		}
		for _, st := range a.Steps {
			line := fmt.Sprintf("    %-20s %s", st.Step, output.OutcomeColor(st.Status))
			if st.Detail != "" {
				line += "  " + output.Gray(st.Detail)
			}
			fmt.Fprintln(ui.Out, line)
		}
		fmt.Fprintln(ui.Out)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

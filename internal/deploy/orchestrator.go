package deploy

import (
	"context"
	"fmt"

	"github.com/joescharf/dokploy-deploy/internal/dokploy"
	"github.com/joescharf/dokploy-deploy/internal/git"
	"github.com/joescharf/dokploy-deploy/internal/monorepo"
)

// Reporter receives progress messages. *output.UI satisfies it.
type Reporter interface {
	Info(format string, a ...any)
	Success(format string, a ...any)
	Warning(format string, a ...any)
	Error(format string, a ...any)
	Detail(format string, a ...any)
	VerboseLog(format string, a ...any)
}

type nopReporter struct{}

func (nopReporter) Info(string, ...any)       {}
func (nopReporter) Success(string, ...any)    {}
func (nopReporter) Warning(string, ...any)    {}
func (nopReporter) Error(string, ...any)      {}
func (nopReporter) Detail(string, ...any)     {}
func (nopReporter) VerboseLog(string, ...any) {}

// Orchestrator drives the platform API for one classification result.
type Orchestrator struct {
	client   dokploy.Client
	settings Settings
	ui       Reporter
}

// New returns an Orchestrator. A nil reporter discards progress messages.
func New(client dokploy.Client, settings Settings, ui Reporter) *Orchestrator {
	if ui == nil {
		ui = nopReporter{}
	}
	return &Orchestrator{client: client, settings: settings, ui: ui}
}

// Run creates the project and provisions every entry of res in order.
// Only a failure to create the project is returned as an error; every
// per-application failure is recorded in the report. If ctx is canceled
// between applications the partial report is returned with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, remoteURL string, res monorepo.Result) (*Report, error) {
	name := res.Root.Name

	o.ui.Info("Creating Dokploy project %s...", name)
	project, err := o.client.CreateProject(ctx, name, "Auto-generated project for "+name)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	o.ui.Success("Dokploy project created: %s", name)
	o.ui.VerboseLog("Project ID: %s", project.ProjectID)

	pc := ProjectContext{
		ProjectName: name,
		ProjectID:   project.ProjectID,
		RootDir:     res.Root.Path,
		RemoteURL:   remoteURL,
		Remote:      git.ParseRemote(remoteURL),
		ServerID:    o.defaultServer(ctx),
		GitHubID:    o.defaultGitHubProvider(ctx),
		MultiApp:    res.IsMultiApp,
		Settings:    o.settings,
	}

	report := &Report{
		ProjectName: name,
		ProjectID:   pc.ProjectID,
		RemoteURL:   remoteURL,
		ServerID:    pc.ServerID,
		GitHubID:    pc.GitHubID,
		MultiApp:    pc.MultiApp,
	}

	for _, entry := range res.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		o.ui.Info("Provisioning %s (%s)...", entry.Name, entry.BuildPath)
		report.Apps = append(report.Apps, o.provision(ctx, pc, entry))
	}
	return report, nil
}

func (o *Orchestrator) defaultServer(ctx context.Context) string {
	servers, err := o.client.ListServers(ctx)
	if err != nil {
		o.ui.Warning("Could not fetch servers: %v", err)
		return ""
	}
	if len(servers) == 0 {
		o.ui.VerboseLog("No servers found")
		return ""
	}
	id := servers[0].Identifier()
	o.ui.Detail("Using server: %s", id)
	return id
}

func (o *Orchestrator) defaultGitHubProvider(ctx context.Context) string {
	providers, err := o.client.ListGitHubProviders(ctx)
	if err != nil {
		o.ui.Warning("Could not fetch GitHub integrations: %v", err)
	}
	if len(providers) == 0 {
		o.ui.Warning("No GitHub integration found, repository configuration will be skipped")
		o.ui.Detail("Set up a GitHub integration in the Dokploy dashboard for automatic repository configuration")
		return ""
	}
	id := providers[0].Identifier()
	o.ui.Detail("Using GitHub integration: %s", id)
	return id
}

// stepFunc runs one step for out. Status and Detail of the returned result
// are recorded; Step is filled in by the caller.
type stepFunc func(ctx context.Context, pc ProjectContext, out *AppOutcome) StepResult

type pipelineStep struct {
	step Step
	run  stepFunc
	// terminal steps stop the remaining steps of the entry on failure
	terminal bool
}

func (o *Orchestrator) pipeline() []pipelineStep {
	return []pipelineStep{
		{StepCreateApplication, o.createApplication, true},
		{StepLinkSource, o.linkSource, false},
		{StepAssignDomain, o.assignDomain, false},
		{StepInjectEnv, o.injectEnv, false},
		{StepTriggerDeploy, o.triggerDeploy, false},
	}
}

func (o *Orchestrator) provision(ctx context.Context, pc ProjectContext, entry monorepo.Entry) AppOutcome {
	out := AppOutcome{
		Entry: entry,
		Host:  Host(pc.ProjectName, entry.Name, pc.Domain, pc.MultiApp),
	}

	steps := o.pipeline()
	for i, s := range steps {
		r := s.run(ctx, pc, &out)
		r.Step = s.step
		out.Steps = append(out.Steps, r)

		if r.Status == StatusFailed && s.terminal {
			for _, rest := range steps[i+1:] {
				out.Steps = append(out.Steps, StepResult{
					Step:   rest.step,
					Status: StatusSkipped,
					Detail: fmt.Sprintf("%s failed", s.step),
				})
			}
			break
		}
	}

	switch out.Status() {
	case OutcomeSucceeded:
		o.ui.Success("%s provisioned: https://%s", entry.Name, out.Host)
	case OutcomePartial:
		o.ui.Warning("%s provisioned with errors: https://%s", entry.Name, out.Host)
	default:
		o.ui.Error("%s was not provisioned", entry.Name)
	}
	return out
}

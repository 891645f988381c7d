package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/dokploy-deploy/internal/dokploy"
	"github.com/joescharf/dokploy-deploy/internal/envfile"
)

func stepFailed(err error, detail string) StepResult {
	return StepResult{Status: StatusFailed, Detail: detail, Err: err}
}

func stepSkipped(detail string) StepResult {
	return StepResult{Status: StatusSkipped, Detail: detail}
}

func stepOK(detail string) StepResult {
	return StepResult{Status: StatusOK, Detail: detail}
}

func (o *Orchestrator) createApplication(ctx context.Context, pc ProjectContext, out *AppOutcome) StepResult {
	req := dokploy.CreateApplicationRequest{
		Name:        out.Entry.Name,
		AppName:     out.Entry.Name,
		ProjectID:   pc.ProjectID,
		Description: "Application for " + out.Entry.Name,
		ServerID:    pc.ServerID,
	}
	if !pc.MultiApp {
		req.Name = "app"
		req.AppName = pc.ProjectName
		req.Description = "Main application"
	}

	app, err := o.client.CreateApplication(ctx, req)
	if err != nil {
		o.ui.Warning("Could not create application %s: %v", out.Entry.Name, err)
		return stepFailed(err, err.Error())
	}
	out.ApplicationID = app.ApplicationID
	o.ui.VerboseLog("Application %s created with ID: %s", req.Name, app.ApplicationID)
	return stepOK(app.ApplicationID)
}

func (o *Orchestrator) linkSource(ctx context.Context, pc ProjectContext, out *AppOutcome) StepResult {
	if pc.GitHubID == "" {
		return stepSkipped("no GitHub integration")
	}
	if pc.RemoteURL == "" {
		return stepSkipped("no remote repository")
	}

	err := o.client.SaveGitHubProvider(ctx, dokploy.GitHubProviderRequest{
		ApplicationID: out.ApplicationID,
		Repository:    pc.Remote.Repository,
		Owner:         pc.Remote.Owner,
		Branch:        pc.Branch,
		BuildPath:     out.Entry.BuildPath,
		GitHubID:      pc.GitHubID,
	})
	if err != nil {
		var apiErr *dokploy.APIError
		if errors.As(err, &apiErr) && apiErr.MentionsField("githubId") {
			o.ui.Warning("GitHub repository configuration requires GitHub App integration")
			o.ui.Detail("Set up GitHub integration (requires GitHub App) in the application settings")
		} else {
			o.ui.Warning("Could not configure GitHub repository automatically: %v", err)
		}
		o.ui.Detail("Please configure manually in Dokploy dashboard:")
		o.ui.Detail("- Repository: %s", pc.RemoteURL)
		o.ui.Detail("- Build path: %s", out.Entry.BuildPath)
		o.ui.Detail("- Branch: %s", pc.Branch)
		return stepFailed(err, err.Error())
	}
	return stepOK(fmt.Sprintf("%s@%s:%s", pc.Remote.FullName(), pc.Branch, out.Entry.BuildPath))
}

func (o *Orchestrator) assignDomain(ctx context.Context, pc ProjectContext, out *AppOutcome) StepResult {
	err := o.client.CreateDomain(ctx, dokploy.DomainRequest{
		Host:            out.Host,
		Path:            "/",
		Port:            pc.Port,
		HTTPS:           true,
		ApplicationID:   out.ApplicationID,
		CertificateType: pc.CertificateType,
		DomainType:      "application",
	})
	if err != nil {
		o.ui.Warning("Could not create domain automatically: %v", err)
		o.ui.Detail("Please create domain manually in Dokploy dashboard:")
		o.ui.Detail("- Host: %s", out.Host)
		o.ui.Detail("- Port: %d", pc.Port)
		o.ui.Detail("- HTTPS: enabled")
		o.ui.Detail("- Certificate: %s", pc.CertificateType)
		return stepFailed(err, out.Host)
	}
	return stepOK(out.Host)
}

func (o *Orchestrator) injectEnv(ctx context.Context, pc ProjectContext, out *AppOutcome) StepResult {
	f, shared, found := envfile.LocateFor(pc.RootDir, out.Entry.BuildPath)
	if !found {
		o.ui.VerboseLog("No environment files found for %s", out.Entry.Name)
		return stepSkipped("no env file")
	}
	out.EnvFile = f.Name
	out.SharedEnv = shared

	content, err := envfile.Read(f.Path)
	if err != nil {
		o.ui.Warning("Could not read %s: %v", f.Path, err)
		return stepFailed(err, f.Name)
	}
	if content == "" {
		return stepSkipped(f.Name + " is empty")
	}
	o.ui.VerboseLog("Found %d environment variables in %s", envfile.CountVars(content), f.Path)

	err = o.client.SaveEnvironment(ctx, dokploy.EnvironmentRequest{
		ApplicationID: out.ApplicationID,
		Env:           content,
		BuildArgs:     "",
	})
	if err != nil {
		o.ui.Warning("Could not configure environment variables for %s: %v", out.Entry.Name, err)
		o.ui.Detail("Please configure manually in Dokploy dashboard")
		return stepFailed(err, f.Name)
	}

	if shared {
		o.ui.Warning("Environment variables configured for %s from root %s", out.Entry.Name, f.Name)
		return stepOK("root " + f.Name)
	}
	o.ui.Success("Environment variables configured for %s from %s", out.Entry.Name, f.Name)
	return stepOK(f.Name)
}

func (o *Orchestrator) triggerDeploy(ctx context.Context, _ ProjectContext, out *AppOutcome) StepResult {
	if err := o.client.Deploy(ctx, out.ApplicationID); err != nil {
		o.ui.Warning("Could not deploy %s automatically: %v", out.Entry.Name, err)
		o.ui.Detail("Please deploy manually in Dokploy dashboard")
		return stepFailed(err, err.Error())
	}
	return stepOK("queued")
}

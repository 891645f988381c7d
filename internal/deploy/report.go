package deploy

import (
	"github.com/joescharf/dokploy-deploy/internal/models"
	"github.com/joescharf/dokploy-deploy/internal/monorepo"
)

// Step names one provisioning step.
type Step string

const (
	StepCreateApplication Step = "create_application"
	StepLinkSource        Step = "link_source"
	StepAssignDomain      Step = "assign_domain"
	StepInjectEnv         Step = "inject_env"
	StepTriggerDeploy     Step = "trigger_deploy"
)

// StepStatus is the result of one step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusSkipped StepStatus = "skipped"
	StatusFailed  StepStatus = "failed"
)

// StepResult records what happened in one step.
type StepResult struct {
	Step   Step       `json:"step"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
	Err    error      `json:"-"`
}

// Outcome summarizes an application or a whole run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

// AppOutcome is the provisioning record of one application entry.
type AppOutcome struct {
	Entry         monorepo.Entry `json:"entry"`
	ApplicationID string         `json:"application_id,omitempty"`
	Host          string         `json:"host"`
	EnvFile       string         `json:"env_file,omitempty"`
	SharedEnv     bool           `json:"shared_env,omitempty"`
	Steps         []StepResult   `json:"steps"`
}

// Result returns the recorded result of step, if it ran.
func (a AppOutcome) Result(step Step) (StepResult, bool) {
	for _, s := range a.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

// Status is failed when the application was not created, partial when a
// later step failed, and succeeded otherwise.
func (a AppOutcome) Status() Outcome {
	if a.ApplicationID == "" {
		return OutcomeFailed
	}
	for _, s := range a.Steps {
		if s.Status == StatusFailed {
			return OutcomePartial
		}
	}
	return OutcomeSucceeded
}

// Report is the outcome of a run.
type Report struct {
	ProjectName string       `json:"project_name"`
	ProjectID   string       `json:"project_id"`
	RemoteURL   string       `json:"remote_url"`
	ServerID    string       `json:"server_id,omitempty"`
	GitHubID    string       `json:"github_id,omitempty"`
	MultiApp    bool         `json:"multi_app"`
	Apps        []AppOutcome `json:"apps"`
}

// Counts returns how many applications ended in each outcome.
func (r Report) Counts() (succeeded, partial, failed int) {
	for _, a := range r.Apps {
		switch a.Status() {
		case OutcomeSucceeded:
			succeeded++
		case OutcomePartial:
			partial++
		case OutcomeFailed:
			failed++
		}
	}
	return succeeded, partial, failed
}

// Status is succeeded when every application succeeded, failed when none
// was created, and partial otherwise.
func (r Report) Status() Outcome {
	succeeded, _, failed := r.Counts()
	switch {
	case len(r.Apps) > 0 && failed == len(r.Apps):
		return OutcomeFailed
	case succeeded == len(r.Apps):
		return OutcomeSucceeded
	default:
		return OutcomePartial
	}
}

// Record converts the report into its run journal form.
func (r Report) Record(rootPath string) *models.Run {
	run := &models.Run{
		ProjectName: r.ProjectName,
		ProjectID:   r.ProjectID,
		RootPath:    rootPath,
		RemoteURL:   r.RemoteURL,
		MultiApp:    r.MultiApp,
		Status:      models.RunStatus(r.Status()),
	}
	for _, a := range r.Apps {
		app := &models.RunApp{
			Name:          a.Entry.Name,
			BuildPath:     a.Entry.BuildPath,
			ApplicationID: a.ApplicationID,
			Host:          a.Host,
			EnvFile:       a.EnvFile,
			SharedEnv:     a.SharedEnv,
			Status:        models.RunStatus(a.Status()),
		}
		for _, s := range a.Steps {
			app.Steps = append(app.Steps, models.StepRecord{
				Step:   string(s.Step),
				Status: string(s.Status),
				Detail: s.Detail,
			})
		}
		run.Apps = append(run.Apps, app)
	}
	return run
}

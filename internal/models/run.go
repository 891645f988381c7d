package models

import "time"

// RunStatus summarizes a recorded deploy run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded invocation of the deploy flow.
type Run struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	ProjectID   string    `json:"project_id"`
	RootPath    string    `json:"root_path"`
	RemoteURL   string    `json:"remote_url"`
	MultiApp    bool      `json:"multi_app"`
	Status      RunStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Apps        []*RunApp `json:"apps,omitempty"`
}

// RunApp is the recorded outcome of one application within a run.
type RunApp struct {
	ID            string       `json:"id"`
	RunID         string       `json:"run_id"`
	Position      int          `json:"position"`
	Name          string       `json:"name"`
	BuildPath     string       `json:"build_path"`
	ApplicationID string       `json:"application_id,omitempty"`
	Host          string       `json:"host"`
	EnvFile       string       `json:"env_file,omitempty"`
	SharedEnv     bool         `json:"shared_env,omitempty"`
	Status        RunStatus    `json:"status"`
	Steps         []StepRecord `json:"steps"`
}

// StepRecord is the stored form of one provisioning step.
type StepRecord struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

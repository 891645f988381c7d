// Package deploy provisions classified applications on the platform: one
// project, then for each application the create, link, domain, env and
// deploy steps in order.
package deploy

import (
	"fmt"

	"github.com/joescharf/dokploy-deploy/internal/git"
)

// Settings are the per-application defaults sent to the platform.
type Settings struct {
	Domain          string
	Branch          string
	Port            int
	CertificateType string
}

// ProjectContext is resolved once per run and passed by value to every
// application step. It is never modified after resolution.
type ProjectContext struct {
	ProjectName string
	ProjectID   string
	RootDir     string
	RemoteURL   string
	Remote      git.Remote
	ServerID    string // empty when no server was found
	GitHubID    string // empty when no GitHub integration was found
	MultiApp    bool
	Settings
}

// Host returns the public host name for an application.
// A single application gets {project}.{domain}; an application of a
// multi-app repository gets {project}-{app}.{domain}.
func Host(project, app, domain string, multiApp bool) string {
	if multiApp {
		return fmt.Sprintf("%s-%s.%s", project, app, domain)
	}
	return fmt.Sprintf("%s.%s", project, domain)
}

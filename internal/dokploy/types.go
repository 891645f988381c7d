package dokploy

// Project is the response of project.create.
type Project struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server is one entry of server.withSSHKey.
type Server struct {
	ServerID string `json:"serverId"`
	ID       string `json:"id"`
	Name     string `json:"name"`
}

// Identifier returns serverId, or id for older platform versions.
func (s Server) Identifier() string {
	if s.ServerID != "" {
		return s.ServerID
	}
	return s.ID
}

// GitHubProvider is one entry of github.githubProviders.
type GitHubProvider struct {
	GitHubID string `json:"githubId"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
}

// Identifier returns githubId, or id for older platform versions.
func (g GitHubProvider) Identifier() string {
	if g.GitHubID != "" {
		return g.GitHubID
	}
	return g.ID
}

// Application is the response of application.create.
type Application struct {
	ApplicationID string `json:"applicationId"`
	Name          string `json:"name"`
	AppName       string `json:"appName"`
}

// CreateApplicationRequest is the body of application.create.
type CreateApplicationRequest struct {
	Name        string `json:"name"`
	AppName     string `json:"appName"`
	ProjectID   string `json:"projectId"`
	Description string `json:"description"`
	ServerID    string `json:"serverId,omitempty"`
}

// GitHubProviderRequest is the body of application.saveGithubProvider.
type GitHubProviderRequest struct {
	ApplicationID string `json:"applicationId"`
	Repository    string `json:"repository"`
	Owner         string `json:"owner"`
	Branch        string `json:"branch"`
	BuildPath     string `json:"buildPath"`
	GitHubID      string `json:"githubId"`
}

// DomainRequest is the body of domain.create.
type DomainRequest struct {
	Host            string `json:"host"`
	Path            string `json:"path"`
	Port            int    `json:"port"`
	HTTPS           bool   `json:"https"`
	ApplicationID   string `json:"applicationId"`
	CertificateType string `json:"certificateType"`
	DomainType      string `json:"domainType"`
}

// EnvironmentRequest is the body of application.saveEnvironment.
type EnvironmentRequest struct {
	ApplicationID string `json:"applicationId"`
	Env           string `json:"env"`
	BuildArgs     string `json:"buildArgs"`
}

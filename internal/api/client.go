package api

import (
	"context"
	"net/http"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client defines the GitLab operations available for one configured instance.
// Consumers depend on this interface, not on the concrete GitLab client,
// so the dispatch layer can be tested against mocks.
type Client interface {
	// UploadPackageFile uploads a local file to the project's generic package registry.
	UploadPackageFile(ctx context.Context, req domain.PackageUploadRequest) (domain.UploadResult, error)

	// SearchProjects returns projects the token's user is a member of, optionally filtered by query.
	SearchProjects(ctx context.Context, query string) ([]domain.ProjectSummary, error)

	// ListVariables returns the CI/CD variables of a project.
	ListVariables(ctx context.Context, projectID string) ([]domain.CIVariable, error)

	// CreateVariable creates a CI/CD variable and returns the stored representation.
	CreateVariable(ctx context.Context, projectID string, variable domain.CIVariable) (domain.CIVariable, error)

	// UpdateVariable replaces the variable identified by key and the variable's environment scope.
	UpdateVariable(ctx context.Context, projectID, key string, variable domain.CIVariable) (domain.CIVariable, error)

	// DeleteVariable removes the variable identified by key and environment scope.
	DeleteVariable(ctx context.Context, projectID, key, environmentScope string) error
}

// Factory builds a Client bound to one instance profile.
type Factory func(profile domain.InstanceProfile) (Client, error)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

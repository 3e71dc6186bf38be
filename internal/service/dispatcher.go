package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vilaca/gitlab-desk/internal/api"
	"github.com/vilaca/gitlab-desk/internal/domain"
	"github.com/vilaca/gitlab-desk/internal/registry"
)

// InstanceSource provides the configured instances.
// *registry.Registry satisfies it.
type InstanceSource interface {
	GetInstances() ([]domain.InstanceProfile, error)
}

// Response is the uniform result handed back to the caller: either Data or
// a single descriptive Error string. Err keeps the typed error for callers
// that need its category.
type Response[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// OK reports whether the operation succeeded.
func (r Response[T]) OK() bool {
	return r.Err == nil
}

// Dispatcher runs one GitLab operation per call against the instance the
// caller names. A new client is built for every call, so profile edits take
// effect immediately.
type Dispatcher struct {
	instances InstanceSource
	newClient api.Factory
	logger    *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(instances InstanceSource, newClient api.Factory, logger *zap.SugaredLogger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		instances: instances,
		newClient: newClient,
		logger:    logger,
	}
}

// UploadPackage uploads a local file to the generic package registry.
func (d *Dispatcher) UploadPackage(ctx context.Context, req domain.PackageUploadRequest) Response[domain.UploadResult] {
	return dispatch(d, req.InstanceID, "Upload failed", func(c api.Client) (domain.UploadResult, error) {
		return c.UploadPackageFile(ctx, req)
	})
}

// SearchProjects searches the projects the instance user is a member of.
func (d *Dispatcher) SearchProjects(ctx context.Context, instanceID, query string) Response[[]domain.ProjectSummary] {
	return dispatch(d, instanceID, "Search failed", func(c api.Client) ([]domain.ProjectSummary, error) {
		return c.SearchProjects(ctx, query)
	})
}

// ListVariables lists the CI/CD variables of a project.
func (d *Dispatcher) ListVariables(ctx context.Context, instanceID, projectID string) Response[[]domain.CIVariable] {
	return dispatch(d, instanceID, "Failed to list variables", func(c api.Client) ([]domain.CIVariable, error) {
		return c.ListVariables(ctx, projectID)
	})
}

// CreateVariable creates a CI/CD variable.
func (d *Dispatcher) CreateVariable(ctx context.Context, instanceID, projectID string, variable domain.CIVariable) Response[domain.CIVariable] {
	return dispatch(d, instanceID, "Failed to create variable", func(c api.Client) (domain.CIVariable, error) {
		return c.CreateVariable(ctx, projectID, variable)
	})
}

// UpdateVariable updates the variable stored under key in the variable's scope.
func (d *Dispatcher) UpdateVariable(ctx context.Context, instanceID, projectID, key string, variable domain.CIVariable) Response[domain.CIVariable] {
	return dispatch(d, instanceID, "Failed to update variable", func(c api.Client) (domain.CIVariable, error) {
		return c.UpdateVariable(ctx, projectID, key, variable)
	})
}

// DeleteVariable deletes the variable identified by key and environment scope.
func (d *Dispatcher) DeleteVariable(ctx context.Context, instanceID, projectID, key, environmentScope string) Response[struct{}] {
	return dispatch(d, instanceID, "Failed to delete variable", func(c api.Client) (struct{}, error) {
		return struct{}{}, c.DeleteVariable(ctx, projectID, key, environmentScope)
	})
}

// dispatch resolves the instance, builds a client and runs call once.
// Every failure, including an unknown instance, is reported as label: cause.
func dispatch[T any](d *Dispatcher, instanceID, label string, call func(api.Client) (T, error)) Response[T] {
	log := d.logger.With("instance", instanceID)
	log.Debugw("Dispatching", "operation", label)

	client, err := d.client(instanceID)
	if err == nil {
		var data T
		data, err = call(client)
		if err == nil {
			return Response[T]{Data: data}
		}
	}

	err = fmt.Errorf("%s: %w", label, err)
	log.Warnw("Operation failed", "category", api.CategoryOf(err), "error", err)
	return Response[T]{Error: err.Error(), Err: err}
}

func (d *Dispatcher) client(instanceID string) (api.Client, error) {
	instances, err := d.instances.GetInstances()
	if err != nil {
		return nil, api.NewConfigurationError("load instances", err)
	}
	profile, ok := registry.FindInstance(instances, instanceID)
	if !ok {
		return nil, registry.InstanceNotFound(instanceID)
	}
	return d.newClient(profile)
}

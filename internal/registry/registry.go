// Package registry persists the configured GitLab instances and the saved
// projects of each instance.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vilaca/gitlab-desk/internal/api"
	"github.com/vilaca/gitlab-desk/internal/domain"
)

// ErrNotFound is wrapped by lookups of unknown instances and projects.
var ErrNotFound = errors.New("not found")

// Registry manages instance profiles and saved projects on top of a Store.
// It is passed explicitly to the components that need it; there is no
// package-level registry.
type Registry struct {
	store   Store
	secrets SecretStore
	logger  *zap.SugaredLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithSecrets moves instance tokens out of the registry file into s.
func WithSecrets(s SecretStore) Option {
	return func(r *Registry) {
		r.secrets = s
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry backed by store.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetInstances returns every configured instance with its token populated.
func (r *Registry) GetInstances() ([]domain.InstanceProfile, error) {
	state, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	instances := make([]domain.InstanceProfile, len(state.Instances))
	copy(instances, state.Instances)
	if r.secrets == nil {
		return instances, nil
	}
	for i := range instances {
		if instances[i].Token != "" {
			continue
		}
		token, err := r.secrets.Get(instances[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read token for instance %s: %w", instances[i].ID, err)
		}
		instances[i].Token = token
	}
	return instances, nil
}

// SaveInstances replaces the full instance list.
func (r *Registry) SaveInstances(instances []domain.InstanceProfile) error {
	return r.store.Update(func(state *State) error {
		previous := state.Instances
		stored, err := r.storeTokens(instances)
		if err != nil {
			return err
		}
		state.Instances = stored
		r.forgetTokens(previous, instances)
		return nil
	})
}

// Instance returns the profile with the given ID.
// An unknown ID is a ConfigurationError.
func (r *Registry) Instance(id string) (domain.InstanceProfile, error) {
	instances, err := r.GetInstances()
	if err != nil {
		return domain.InstanceProfile{}, err
	}
	if p, ok := FindInstance(instances, id); ok {
		return p, nil
	}
	return domain.InstanceProfile{}, InstanceNotFound(id)
}

// FindInstance looks up id in a loaded instance list.
func FindInstance(instances []domain.InstanceProfile, id string) (domain.InstanceProfile, bool) {
	for _, p := range instances {
		if p.ID == id {
			return p, true
		}
	}
	return domain.InstanceProfile{}, false
}

// InstanceNotFound returns the ConfigurationError reported for an unknown instance.
func InstanceNotFound(id string) error {
	return api.NewConfigurationError("resolve instance", fmt.Errorf("instance with ID %s %w", id, ErrNotFound))
}

// AddInstance registers a new instance. Fields are trimmed and the ID is generated.
func (r *Registry) AddInstance(name, url, username, token string) (domain.InstanceProfile, error) {
	profile := domain.InstanceProfile{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		URL:      strings.TrimSpace(url),
		Username: strings.TrimSpace(username),
		Token:    strings.TrimSpace(token),
	}
	if err := validateInstance(profile); err != nil {
		return domain.InstanceProfile{}, err
	}

	err := r.store.Update(func(state *State) error {
		stored, err := r.storeTokens([]domain.InstanceProfile{profile})
		if err != nil {
			return err
		}
		state.Instances = append(state.Instances, stored...)
		return nil
	})
	if err != nil {
		return domain.InstanceProfile{}, err
	}

	r.logger.Infow("Added instance", "id", profile.ID, "name", profile.Name, "url", profile.BaseURL())
	return profile, nil
}

// UpdateInstance replaces the stored profile with the same ID.
// An empty token keeps the stored one.
func (r *Registry) UpdateInstance(profile domain.InstanceProfile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.URL = strings.TrimSpace(profile.URL)
	profile.Username = strings.TrimSpace(profile.Username)
	profile.Token = strings.TrimSpace(profile.Token)
	if err := validateInstance(profile); err != nil {
		return err
	}

	return r.store.Update(func(state *State) error {
		for i := range state.Instances {
			if state.Instances[i].ID != profile.ID {
				continue
			}
			if profile.Token == "" {
				// The file copy is blank when the token lives in the secret store,
				// which is left untouched.
				profile.Token = state.Instances[i].Token
				state.Instances[i] = profile
				return nil
			}
			stored, err := r.storeTokens([]domain.InstanceProfile{profile})
			if err != nil {
				return err
			}
			state.Instances[i] = stored[0]
			return nil
		}
		return InstanceNotFound(profile.ID)
	})
}

// RemoveInstance deletes an instance and every project saved for it.
func (r *Registry) RemoveInstance(id string) error {
	err := r.store.Update(func(state *State) error {
		if _, ok := FindInstance(state.Instances, id); !ok {
			return InstanceNotFound(id)
		}

		instances := make([]domain.InstanceProfile, 0, len(state.Instances))
		for _, p := range state.Instances {
			if p.ID != id {
				instances = append(instances, p)
			}
		}
		state.Instances = instances

		projects := make([]domain.ProjectSummary, 0, len(state.Projects))
		for _, p := range state.Projects {
			if p.InstanceID != id {
				projects = append(projects, p)
			}
		}
		state.Projects = projects
		return nil
	})
	if err != nil {
		return err
	}

	if r.secrets != nil {
		if err := r.secrets.Delete(id); err != nil {
			r.logger.Warnw("Failed to delete instance token", "id", id, "error", err)
		}
	}
	r.logger.Infow("Removed instance", "id", id)
	return nil
}

// GetProjects returns every saved project.
func (r *Registry) GetProjects() ([]domain.ProjectSummary, error) {
	state, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	projects := make([]domain.ProjectSummary, len(state.Projects))
	copy(projects, state.Projects)
	return projects, nil
}

// SaveProject stores a project. A project without an ID gets a new one;
// a project whose ID exists replaces the stored entry.
func (r *Registry) SaveProject(project domain.ProjectSummary) (domain.ProjectSummary, error) {
	project.ExternalProjectID = strings.TrimSpace(project.ExternalProjectID)
	project.DisplayName = strings.TrimSpace(project.DisplayName)
	if project.ExternalProjectID == "" {
		return domain.ProjectSummary{}, errors.New("project ID is required")
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	err := r.store.Update(func(state *State) error {
		if _, ok := FindInstance(state.Instances, project.InstanceID); !ok {
			return InstanceNotFound(project.InstanceID)
		}
		for i := range state.Projects {
			if state.Projects[i].ID == project.ID {
				state.Projects[i] = project
				return nil
			}
		}
		state.Projects = append(state.Projects, project)
		return nil
	})
	if err != nil {
		return domain.ProjectSummary{}, err
	}
	return project, nil
}

// RemoveProject deletes a saved project.
func (r *Registry) RemoveProject(id string) error {
	return r.store.Update(func(state *State) error {
		for i := range state.Projects {
			if state.Projects[i].ID == id {
				state.Projects = append(state.Projects[:i], state.Projects[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("project with ID %s %w", id, ErrNotFound)
	})
}

func validateInstance(p domain.InstanceProfile) error {
	if p.Name == "" {
		return api.NewConfigurationError("save instance", errors.New("instance name is required"))
	}
	if p.BaseURL() == "" {
		return api.NewConfigurationError("save instance", errors.New("instance URL is required"))
	}
	return nil
}

// storeTokens returns the profiles to write to the file. With a SecretStore
// configured, tokens go to the secret store and are blanked in the file.
func (r *Registry) storeTokens(instances []domain.InstanceProfile) ([]domain.InstanceProfile, error) {
	stored := append([]domain.InstanceProfile(nil), instances...)
	if r.secrets == nil {
		return stored, nil
	}
	for i := range stored {
		if stored[i].Token == "" {
			continue
		}
		if err := r.secrets.Set(stored[i].ID, stored[i].Token); err != nil {
			return nil, fmt.Errorf("failed to store token for instance %s: %w", stored[i].ID, err)
		}
		stored[i].Token = ""
	}
	return stored, nil
}

// forgetTokens deletes secrets of instances that are no longer configured.
func (r *Registry) forgetTokens(previous, current []domain.InstanceProfile) {
	if r.secrets == nil {
		return
	}
	for _, p := range previous {
		if _, ok := FindInstance(current, p.ID); ok {
			continue
		}
		if err := r.secrets.Delete(p.ID); err != nil {
			r.logger.Warnw("Failed to delete instance token", "id", p.ID, "error", err)
		}
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

// Change is an edit of a variable that already exists on the server.
type Change struct {
	Variable domain.CIVariable
	// OriginalKey and OriginalScope identify the variable on the server.
	// Empty values mean unchanged.
	OriginalKey   string
	OriginalScope string
	// MaskedOnServer is set when the server copy is masked. Some GitLab
	// versions reject updates of masked variables; those are replaced instead.
	MaskedOnServer bool
}

func (c Change) original() domain.VariableIdentity {
	id := c.Variable.Identity()
	if c.OriginalKey != "" {
		id.Key = c.OriginalKey
	}
	if c.OriginalScope != "" {
		id.EnvironmentScope = c.OriginalScope
	}
	return id
}

// renamed reports whether the change moves the variable to another key or scope,
// which the update endpoint cannot do.
func (c Change) renamed() bool {
	return c.original() != c.Variable.Identity()
}

// Plan is a batch of variable edits for one project.
type Plan struct {
	InstanceID string
	ProjectID  string
	Deletes    []domain.VariableIdentity
	Updates    []Change
	Creates    []domain.CIVariable
}

// Empty reports whether the plan has nothing to apply.
func (p Plan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Updates) == 0 && len(p.Creates) == 0
}

// Validate checks that every kept or created variable has a key and that no
// two of them share a key and environment scope.
func (p Plan) Validate() error {
	var result *multierror.Error
	seen := make(map[domain.VariableIdentity]bool)

	check := func(v domain.CIVariable) {
		if strings.TrimSpace(v.Key) == "" {
			result = multierror.Append(result, errors.New("key is required"))
			return
		}
		id := v.Identity()
		if seen[id] {
			result = multierror.Append(result, fmt.Errorf("duplicate key %q in scope %q", id.Key, id.EnvironmentScope))
		}
		seen[id] = true
	}
	for _, c := range p.Updates {
		check(c.Variable)
	}
	for _, v := range p.Creates {
		check(v)
	}
	return result.ErrorOrNil()
}

// PlanResult counts the applied changes and lists one message per failure.
type PlanResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors,omitempty"`
}

// ApplyPlan applies deletions, then updates, then creations. Each change is a
// separate call; a failure is recorded and the remaining changes still run.
// The returned error aggregates every failure and is nil when all succeeded.
func (d *Dispatcher) ApplyPlan(ctx context.Context, plan Plan) (PlanResult, error) {
	var result PlanResult
	if err := plan.Validate(); err != nil {
		return result, err
	}

	var errs *multierror.Error
	fail := func(format string, args ...any) {
		err := fmt.Errorf(format, args...)
		result.Errors = append(result.Errors, err.Error())
		errs = multierror.Append(errs, err)
	}

	for _, id := range plan.Deletes {
		resp := d.DeleteVariable(ctx, plan.InstanceID, plan.ProjectID, id.Key, id.EnvironmentScope)
		if !resp.OK() {
			fail("Delete '%s': %w", id.Key, resp.Err)
			continue
		}
		result.Deleted++
	}

	for _, c := range plan.Updates {
		if c.renamed() {
			if err := d.replace(ctx, plan, c); err != nil {
				fail("Update '%s': %w", c.Variable.Key, err)
				continue
			}
			result.Updated++
			continue
		}

		resp := d.UpdateVariable(ctx, plan.InstanceID, plan.ProjectID, c.Variable.Key, c.Variable)
		if resp.OK() {
			result.Updated++
			continue
		}
		if !c.MaskedOnServer {
			fail("Update '%s': %w", c.Variable.Key, resp.Err)
			continue
		}

		d.logger.Infow("Update of masked variable failed, replacing it", "key", c.Variable.Key, "error", resp.Err)
		if err := d.replace(ctx, plan, c); err != nil {
			fail("Update '%s' (masked fallback): %w", c.Variable.Key, err)
			continue
		}
		result.Updated++
	}

	for _, v := range plan.Creates {
		resp := d.CreateVariable(ctx, plan.InstanceID, plan.ProjectID, v)
		if !resp.OK() {
			fail("Create '%s': %w", v.Key, resp.Err)
			continue
		}
		result.Created++
	}

	d.logger.Infow("Applied variable changes",
		"instance", plan.InstanceID, "project", plan.ProjectID,
		"created", result.Created, "updated", result.Updated, "deleted", result.Deleted,
		"failed", len(result.Errors))

	return result, errs.ErrorOrNil()
}

// replace deletes the server copy of a changed variable and creates the new one.
func (d *Dispatcher) replace(ctx context.Context, plan Plan, c Change) error {
	orig := c.original()
	if resp := d.DeleteVariable(ctx, plan.InstanceID, plan.ProjectID, orig.Key, orig.EnvironmentScope); !resp.OK() {
		return resp.Err
	}
	if resp := d.CreateVariable(ctx, plan.InstanceID, plan.ProjectID, c.Variable); !resp.OK() {
		d.logger.Warnw("Variable deleted but not recreated", "key", orig.Key, "scope", orig.EnvironmentScope, "error", resp.Err)
		return fmt.Errorf("variable was deleted and not recreated: %w", resp.Err)
	}
	return nil
}

package gitlab

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/vilaca/gitlab-desk/internal/api"
	"github.com/vilaca/gitlab-desk/internal/domain"
)

// GitLab API versions differ in which variable fields they return, so every
// field is read individually and falls back to a default when it is missing
// or has an unexpected JSON type.

// parseVariables converts a JSON array of variables.
func parseVariables(op string, body []byte) ([]domain.CIVariable, error) {
	root, err := parseRoot(op, body, gjson.JSON)
	if err != nil {
		return nil, err
	}
	if !root.IsArray() {
		return nil, parseError(op, "expected a JSON array")
	}

	items := root.Array()
	variables := make([]domain.CIVariable, 0, len(items))
	for _, item := range items {
		variables = append(variables, convertVariable(item))
	}
	return variables, nil
}

// parseVariable converts a single JSON variable object.
func parseVariable(op string, body []byte) (domain.CIVariable, error) {
	root, err := parseRoot(op, body, gjson.JSON)
	if err != nil {
		return domain.CIVariable{}, err
	}
	if !root.IsObject() {
		return domain.CIVariable{}, parseError(op, "expected a JSON object")
	}
	return convertVariable(root), nil
}

// convertVariable converts a GitLab variable to the domain model.
func convertVariable(v gjson.Result) domain.CIVariable {
	return domain.CIVariable{
		Key:              stringField(v, "key", ""),
		Value:            stringField(v, "value", ""),
		VariableType:     stringField(v, "variable_type", domain.VariableTypeEnvVar),
		Protected:        boolField(v, "protected", false),
		Masked:           boolField(v, "masked", false),
		EnvironmentScope: stringField(v, "environment_scope", domain.ScopeAll),
		Description:      stringField(v, "description", ""),
	}
}

// parseProjects converts the project search response.
func parseProjects(op string, body []byte, instanceID string) ([]domain.ProjectSummary, error) {
	root, err := parseRoot(op, body, gjson.JSON)
	if err != nil {
		return nil, err
	}
	if !root.IsArray() {
		return nil, parseError(op, "expected a JSON array")
	}

	items := root.Array()
	projects := make([]domain.ProjectSummary, 0, len(items))
	for _, item := range items {
		projects = append(projects, domain.ProjectSummary{
			InstanceID:        instanceID,
			ExternalProjectID: idField(item, "id"),
			DisplayName:       stringField(item, "name_with_namespace", ""),
		})
	}
	return projects, nil
}

func parseRoot(op string, body []byte, want gjson.Type) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, parseError(op, "response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if root.Type != want {
		return gjson.Result{}, parseError(op, fmt.Sprintf("unexpected JSON %s", root.Type))
	}
	return root, nil
}

func parseError(op, msg string) *api.OperationError {
	return &api.OperationError{Category: api.ParseError, Op: op, Err: fmt.Errorf("%s", msg)}
}

func stringField(v gjson.Result, name, def string) string {
	f := v.Get(name)
	if f.Type != gjson.String {
		return def
	}
	return f.Str
}

func boolField(v gjson.Result, name string, def bool) bool {
	switch v.Get(name).Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return def
	}
}

// idField returns a numeric ID in its literal JSON form so large IDs are not
// rounded through float64.
func idField(v gjson.Result, name string) string {
	f := v.Get(name)
	switch f.Type {
	case gjson.Number:
		return f.Raw
	case gjson.String:
		return f.Str
	default:
		return ""
	}
}

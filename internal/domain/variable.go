package domain

// CIVariable is a project-level GitLab CI/CD variable.
// A variable is uniquely identified within a project by (Key, EnvironmentScope).
type CIVariable struct {
	Key              string `json:"key" yaml:"key"`
	Value            string `json:"value" yaml:"value"`
	VariableType     string `json:"variable_type" yaml:"variable_type"`
	Protected        bool   `json:"protected" yaml:"protected"`
	Masked           bool   `json:"masked" yaml:"masked"`
	EnvironmentScope string `json:"environment_scope" yaml:"environment_scope"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewVariable returns an env_var variable visible to every environment.
func NewVariable(key, value string) CIVariable {
	return CIVariable{
		Key:              key,
		Value:            value,
		VariableType:     VariableTypeEnvVar,
		EnvironmentScope: ScopeAll,
	}
}

// WithDefaults fills the fields GitLab treats as optional.
func (v CIVariable) WithDefaults() CIVariable {
	if v.VariableType == "" {
		v.VariableType = VariableTypeEnvVar
	}
	if v.EnvironmentScope == "" {
		v.EnvironmentScope = ScopeAll
	}
	return v
}

// Identity returns the (key, scope) pair that identifies the variable in a project.
func (v CIVariable) Identity() VariableIdentity {
	scope := v.EnvironmentScope
	if scope == "" {
		scope = ScopeAll
	}
	return VariableIdentity{Key: v.Key, EnvironmentScope: scope}
}

// VariableIdentity is the unique key of a CI variable inside one project.
type VariableIdentity struct {
	Key              string
	EnvironmentScope string
}

// ScopeFilter returns the environment scope to send as a filter, or "" when
// the scope is the wildcard and must be omitted.
func ScopeFilter(scope string) string {
	if scope == "" || scope == ScopeAll {
		return ""
	}
	return scope
}

package domain

// DefaultInstanceURL is used when a new instance is added without a URL
const DefaultInstanceURL = "https://gitlab.com"

// CI variable constants
const (
	// VariableTypeEnvVar is a plain environment variable
	VariableTypeEnvVar = "env_var"
	// VariableTypeFile is written to a temporary file whose path is exposed to the job
	VariableTypeFile = "file"
	// ScopeAll is the wildcard environment scope matching every environment
	ScopeAll = "*"
)

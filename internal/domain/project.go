package domain

// ProjectSummary is a GitLab project discovered through search or saved by the user.
// ID stays empty until the project is persisted by the instance registry.
type ProjectSummary struct {
	ID                string `yaml:"id" json:"id"`
	InstanceID        string `yaml:"instance_id" json:"instance_id"`
	ExternalProjectID string `yaml:"project_id" json:"project_id"`
	DisplayName       string `yaml:"name" json:"name"`
}

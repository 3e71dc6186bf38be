package domain

import (
	"fmt"
	"strings"
)

// InstanceProfile describes one configured GitLab deployment (SaaS or self-hosted).
// The Token is a secret and must never be printed or logged.
type InstanceProfile struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Token    string `yaml:"token,omitempty" json:"-"`
}

// BaseURL returns the instance URL trimmed of whitespace and trailing slashes.
func (p InstanceProfile) BaseURL() string {
	return NormalizeBaseURL(p.URL)
}

// String implements fmt.Stringer without exposing the token.
func (p InstanceProfile) String() string {
	return fmt.Sprintf("%s (%s) %s", p.Name, p.ID, p.BaseURL())
}

// NormalizeBaseURL trims surrounding whitespace and every trailing "/".
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

package gitlab

import (
	"fmt"
	"net/url"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

const apiPrefix = "/api/v4"

// encodeSegment percent-encodes a value for use as exactly one URL path segment.
// Numeric project IDs pass through unchanged; "group/project" becomes "group%2Fproject".
func encodeSegment(s string) string {
	return url.PathEscape(s)
}

// projectURL returns {base}/api/v4/projects/{encodedProjectID}.
func (c *Client) projectURL(projectID string) string {
	return fmt.Sprintf("%s%s/projects/%s", c.baseURL, apiPrefix, encodeSegment(projectID))
}

// packageFileURL returns the generic package registry URL for one file.
func (c *Client) packageFileURL(req domain.PackageUploadRequest) string {
	return fmt.Sprintf("%s/packages/generic/%s/%s/%s",
		c.projectURL(req.ProjectID),
		encodeSegment(req.PackageName),
		encodeSegment(req.PackageVersion),
		encodeSegment(req.FileName),
	)
}

// searchProjectsURL returns the membership project listing, filtered by query when non-empty.
func (c *Client) searchProjectsURL(query string) string {
	u := fmt.Sprintf("%s%s/projects?membership=true&simple=true", c.baseURL, apiPrefix)
	if query != "" {
		u += "&search=" + url.QueryEscape(query)
	}
	return u
}

// variablesURL returns the CI variable collection of a project.
func (c *Client) variablesURL(projectID string) string {
	return c.projectURL(projectID) + "/variables"
}

// variableURL returns the URL of one variable. GitLab allows the same key in
// several environment scopes, so any scope other than "*" is sent as a filter.
func (c *Client) variableURL(projectID, key, environmentScope string) string {
	u := c.variablesURL(projectID) + "/" + encodeSegment(key)
	if scope := domain.ScopeFilter(environmentScope); scope != "" {
		u += "?filter[environment_scope]=" + url.QueryEscape(scope)
	}
	return u
}

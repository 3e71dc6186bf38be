package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/package-url/packageurl-go"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/vilaca/gitlab-desk/internal/api"
	"github.com/vilaca/gitlab-desk/internal/domain"
)

// UserAgent is sent with every request.
const UserAgent = "gitlab-desk/1.0"

// Client implements api.Client for one GitLab instance.
// It holds no mutable state after construction and is safe for concurrent use.
type Client struct {
	baseURL    string
	instanceID string
	headers    http.Header
	httpClient api.HTTPClient
	logger     *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers.Set("User-Agent", ua)
		}
	}
}

// NewClient creates a GitLab client bound to the profile's base URL and token.
// If httpClient is nil, NewHTTPClient(DefaultTimeout) is used.
//
// The token is sent both as PRIVATE-TOKEN and as an Authorization bearer
// token: personal, project, group and job tokens are accepted by different
// GitLab deployments under one header or the other.
func NewClient(profile domain.InstanceProfile, httpClient api.HTTPClient, opts ...Option) (*Client, error) {
	const op = "create GitLab client"

	token := strings.TrimSpace(profile.Token)
	if !validToken(token) {
		return nil, api.NewConfigurationError(op, errors.New("invalid token format: token contains characters not allowed in an HTTP header"))
	}

	baseURL := profile.BaseURL()
	if err := validateBaseURL(baseURL); err != nil {
		return nil, api.NewConfigurationError(op, err)
	}

	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}

	headers := http.Header{}
	headers.Set("PRIVATE-TOKEN", token)
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", UserAgent)

	c := &Client{
		baseURL:    baseURL,
		instanceID: profile.ID,
		headers:    headers,
		httpClient: httpClient,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFactory returns an api.Factory that builds clients sharing httpClient.
func NewFactory(httpClient api.HTTPClient, opts ...Option) api.Factory {
	return func(profile domain.InstanceProfile) (api.Client, error) {
		return NewClient(profile, httpClient, opts...)
	}
}

// validToken accepts visible ASCII, spaces and tabs only.
func validToken(token string) bool {
	if !httpguts.ValidHeaderFieldValue(token) {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return errors.New("instance URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid instance URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid instance URL %q: scheme must be http or https", baseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid instance URL %q: missing host", baseURL)
	}
	return nil
}

// BaseURL returns the normalized instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// String implements fmt.Stringer. The token is never included.
func (c *Client) String() string {
	return fmt.Sprintf("gitlab.Client{baseURL: %s, token: [REDACTED]}", c.baseURL)
}

// UploadPackageFile uploads a local file to the generic package registry.
// The file is read fully before any request is made.
func (c *Client) UploadPackageFile(ctx context.Context, req domain.PackageUploadRequest) (domain.UploadResult, error) {
	const op = "upload package"

	content, err := os.ReadFile(req.LocalFilePath)
	if err != nil {
		return domain.UploadResult{}, &api.OperationError{
			Category: api.FileReadError,
			Op:       op,
			Path:     req.LocalFilePath,
			Err:      err,
		}
	}

	target := c.packageFileURL(req)
	if _, err := c.doRequest(ctx, op, http.MethodPut, target, bytes.NewReader(content), ""); err != nil {
		return domain.UploadResult{}, err
	}

	return domain.UploadResult{
		Message: fmt.Sprintf("Successfully uploaded %s to %s", req.FileName, target),
		URL:     target,
		PURL:    packagePURL(req, target),
		Size:    len(content),
	}, nil
}

// SearchProjects lists projects the user is a member of. An empty query lists all of them.
func (c *Client) SearchProjects(ctx context.Context, query string) ([]domain.ProjectSummary, error) {
	const op = "search projects"

	body, err := c.doRequest(ctx, op, http.MethodGet, c.searchProjectsURL(query), nil, "")
	if err != nil {
		return nil, err
	}
	return parseProjects(op, body, c.instanceID)
}

// ListVariables retrieves the CI/CD variables of a project.
func (c *Client) ListVariables(ctx context.Context, projectID string) ([]domain.CIVariable, error) {
	const op = "list variables"

	body, err := c.doRequest(ctx, op, http.MethodGet, c.variablesURL(projectID), nil, "")
	if err != nil {
		return nil, err
	}
	return parseVariables(op, body)
}

// CreateVariable creates a CI/CD variable. The returned variable is the
// server's stored representation, not the input.
func (c *Client) CreateVariable(ctx context.Context, projectID string, variable domain.CIVariable) (domain.CIVariable, error) {
	const op = "create variable"

	variable = variable.WithDefaults()
	payload, err := json.Marshal(createVariableRequest{
		Key:              variable.Key,
		Value:            variable.Value,
		VariableType:     variable.VariableType,
		Protected:        variable.Protected,
		Masked:           variable.Masked,
		EnvironmentScope: variable.EnvironmentScope,
		Description:      variable.Description,
	})
	if err != nil {
		return domain.CIVariable{}, fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	body, err := c.doRequest(ctx, op, http.MethodPost, c.variablesURL(projectID), bytes.NewReader(payload), "application/json")
	if err != nil {
		return domain.CIVariable{}, err
	}
	return parseVariable(op, body)
}

// UpdateVariable updates the variable stored under key. The variable's
// environment scope is both sent in the body and, unless it is "*", used to
// select which of the same-key variables is updated.
func (c *Client) UpdateVariable(ctx context.Context, projectID, key string, variable domain.CIVariable) (domain.CIVariable, error) {
	const op = "update variable"

	if key == "" {
		key = variable.Key
	}
	variable = variable.WithDefaults()
	payload, err := json.Marshal(updateVariableRequest{
		Value:            variable.Value,
		VariableType:     variable.VariableType,
		Protected:        variable.Protected,
		Masked:           variable.Masked,
		EnvironmentScope: variable.EnvironmentScope,
		Description:      variable.Description,
	})
	if err != nil {
		return domain.CIVariable{}, fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	target := c.variableURL(projectID, key, variable.EnvironmentScope)
	body, err := c.doRequest(ctx, op, http.MethodPut, target, bytes.NewReader(payload), "application/json")
	if err != nil {
		return domain.CIVariable{}, err
	}
	return parseVariable(op, body)
}

// DeleteVariable deletes the variable identified by key and environment scope.
func (c *Client) DeleteVariable(ctx context.Context, projectID, key, environmentScope string) error {
	const op = "delete variable"

	_, err := c.doRequest(ctx, op, http.MethodDelete, c.variableURL(projectID, key, environmentScope), nil, "")
	return err
}

// doRequest performs exactly one HTTP request and returns the body of a 2xx response.
// Non-2xx responses become RemoteError with the raw body; network failures
// become TransportError before any parsing is attempted.
func (c *Client) doRequest(ctx context.Context, op, method, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, api.NewConfigurationError(op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header = c.headers.Clone()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debugw("GitLab request", "op", op, "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &api.OperationError{Category: api.TransportError, Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			data = nil
		}
		c.logger.Debugw("GitLab request failed", "op", op, "status", resp.StatusCode)
		return nil, api.NewRemoteError(op, resp.StatusCode, string(data))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.OperationError{Category: api.TransportError, Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return data, nil
}

// packagePURL describes the uploaded file as a generic package URL.
func packagePURL(req domain.PackageUploadRequest, downloadURL string) string {
	qualifiers := packageurl.QualifiersFromMap(map[string]string{"download_url": downloadURL})
	return packageurl.NewPackageURL(packageurl.TypeGeneric, "", req.PackageName, req.PackageVersion, qualifiers, req.FileName).ToString()
}

// GitLab API request types
type createVariableRequest struct {
	Key              string `json:"key"`
	Value            string `json:"value"`
	VariableType     string `json:"variable_type"`
	Protected        bool   `json:"protected"`
	Masked           bool   `json:"masked"`
	EnvironmentScope string `json:"environment_scope"`
	Description      string `json:"description,omitempty"`
}

type updateVariableRequest struct {
	Value            string `json:"value"`
	VariableType     string `json:"variable_type"`
	Protected        bool   `json:"protected"`
	Masked           bool   `json:"masked"`
	EnvironmentScope string `json:"environment_scope"`
	Description      string `json:"description,omitempty"`
}

package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vilaca/gitlab-desk/internal/api"
	"github.com/vilaca/gitlab-desk/internal/api/mocks"
	"github.com/vilaca/gitlab-desk/internal/domain"
)

// mockHTTPClient is a test double for api.HTTPClient.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
	calls  int
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, baseURL string, httpClient api.HTTPClient) *Client {
	t.Helper()
	client, err := NewClient(domain.InstanceProfile{
		ID:    "inst-1",
		Name:  "test",
		URL:   baseURL,
		Token: "test-token",
	}, httpClient)
	require.NoError(t, err)
	return client
}

// TestNewClient_AuthHeaders tests that both auth headers carry exactly the trimmed token.
func TestNewClient_AuthHeaders(t *testing.T) {
	tokens := []string{"glpat-abc123", "a b c", "~!@#$%^&*()_+{}|:<>?", "  padded-token  "}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			// Arrange
			var got *http.Request
			mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
				got = req
				return jsonResponse(http.StatusOK, `[]`), nil
			}}

			client, err := NewClient(domain.InstanceProfile{URL: "https://gitlab.com", Token: token}, mockHTTP)
			require.NoError(t, err)

			// Act
			_, err = client.ListVariables(context.Background(), "1")

			// Assert
			require.NoError(t, err)
			want := strings.TrimSpace(token)
			assert.Equal(t, want, got.Header.Get("PRIVATE-TOKEN"))
			assert.Equal(t, "Bearer "+want, got.Header.Get("Authorization"))
		})
	}
}

// TestNewClient_InvalidToken tests that header-illegal tokens fail before any request.
func TestNewClient_InvalidToken(t *testing.T) {
	for _, token := range []string{"abc\ndef", "abc\x00def", "tok\x7fen", "a\rb", "glpat-tökén", "tok\x80en"} {
		client, err := NewClient(domain.InstanceProfile{URL: "https://gitlab.com", Token: token}, &mockHTTPClient{})

		assert.Nil(t, client)
		assert.True(t, api.IsCategory(err, api.ConfigurationError), "token %q: got %v", token, err)
	}
}

// TestNewClient_InvalidURL tests base URL validation.
func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "gitlab.com", "ftp://gitlab.com", "https://"} {
		_, err := NewClient(domain.InstanceProfile{URL: raw, Token: "t"}, &mockHTTPClient{})

		assert.True(t, api.IsCategory(err, api.ConfigurationError), "url %q: got %v", raw, err)
	}
}

// TestNewClient_NormalizesBaseURL tests that whitespace and trailing slashes are stripped once.
func TestNewClient_NormalizesBaseURL(t *testing.T) {
	client := newTestClient(t, "  https://gitlab.example.com//  ", &mockHTTPClient{})

	assert.Equal(t, "https://gitlab.example.com", client.BaseURL())
	assert.NotContains(t, client.String(), "test-token")
}

// TestProjectIDEncoding tests project identifier path encoding.
func TestProjectIDEncoding(t *testing.T) {
	tests := []struct {
		projectID string
		expected  string
	}{
		{"42", "https://gitlab.com/api/v4/projects/42/variables"},
		{"group/project", "https://gitlab.com/api/v4/projects/group%2Fproject/variables"},
		{"group/sub/project", "https://gitlab.com/api/v4/projects/group%2Fsub%2Fproject/variables"},
	}

	for _, tt := range tests {
		t.Run(tt.projectID, func(t *testing.T) {
			// Arrange
			var gotURL string
			mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
				gotURL = req.URL.String()
				return jsonResponse(http.StatusOK, `[]`), nil
			}}
			client := newTestClient(t, "https://gitlab.com", mockHTTP)

			// Act
			_, err := client.ListVariables(context.Background(), tt.projectID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, gotURL)
		})
	}
}

// TestVariableURL_ScopeFilter tests that "*" never produces a scope filter.
func TestVariableURL_ScopeFilter(t *testing.T) {
	tests := []struct {
		name          string
		scope         string
		expectedQuery string
	}{
		{"wildcard", "*", ""},
		{"empty treated as wildcard", "", ""},
		{"production", "production", "filter[environment_scope]=production"},
		{"glob", "review/*", "filter[environment_scope]=review%2F%2A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var gotQuery []string
			mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
				gotQuery = append(gotQuery, req.URL.RawQuery)
				if req.Method == http.MethodDelete {
					return jsonResponse(http.StatusNoContent, ""), nil
				}
				return jsonResponse(http.StatusOK, `{"key":"FOO"}`), nil
			}}
			client := newTestClient(t, "https://gitlab.com", mockHTTP)
			variable := domain.CIVariable{Key: "FOO", Value: "bar", EnvironmentScope: tt.scope}

			// Act
			_, updateErr := client.UpdateVariable(context.Background(), "1", "FOO", variable)
			deleteErr := client.DeleteVariable(context.Background(), "1", "FOO", tt.scope)

			// Assert
			require.NoError(t, updateErr)
			require.NoError(t, deleteErr)
			require.Len(t, gotQuery, 2)
			for _, q := range gotQuery {
				assert.Equal(t, tt.expectedQuery, q)
				if tt.expectedQuery == "" {
					assert.NotContains(t, q, "filter")
				} else {
					assert.Equal(t, 1, strings.Count(q, "filter[environment_scope]="))
				}
			}
		})
	}
}

// TestCreateVariable_RoundTrip tests that an echoing server yields the input variable.
func TestCreateVariable_RoundTrip(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v4/projects/group%2Fproject/variables", r.URL.EscapedPath())
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		assert.NoError(t, json.Unmarshal(body, &payload))
		assert.Len(t, payload, 6, "description is omitted when empty")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())
	input := domain.CIVariable{
		Key:              "FOO",
		Value:            "bar",
		VariableType:     "env_var",
		Protected:        false,
		Masked:           false,
		EnvironmentScope: "*",
	}

	// Act
	created, err := client.CreateVariable(context.Background(), "group/project", input)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, input, created)
}

// TestCreateVariable_ServerIsAuthoritative tests that the response, not the input, is returned.
func TestCreateVariable_ServerIsAuthoritative(t *testing.T) {
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, `{"key":"FOO","value":"bar","protected":true,"environment_scope":"production","description":null}`), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	created, err := client.CreateVariable(context.Background(), "1", domain.NewVariable("FOO", "bar"))

	require.NoError(t, err)
	assert.True(t, created.Protected)
	assert.Equal(t, "production", created.EnvironmentScope)
	assert.Equal(t, domain.VariableTypeEnvVar, created.VariableType)
	assert.Equal(t, "", created.Description)
}

// TestCreateVariable_Duplicate tests that remote rejections surface unchanged.
func TestCreateVariable_Duplicate(t *testing.T) {
	body := `{"message":{"key":["(FOO) has already been taken"]}}`
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, body), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	_, err := client.CreateVariable(context.Background(), "1", domain.NewVariable("FOO", "bar"))

	var opErr *api.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, api.RemoteError, opErr.Category)
	assert.Equal(t, http.StatusBadRequest, opErr.StatusCode)
	assert.Equal(t, body, opErr.Body)
}

// TestUpdateVariable_Request tests the update URL, method and payload.
func TestUpdateVariable_Request(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v4/projects/7/variables/DB_PASSWORD", r.URL.EscapedPath())
		assert.Equal(t, "staging", r.URL.Query().Get("filter[environment_scope]"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "key")
		assert.Equal(t, "s3cret", payload["value"])
		assert.Equal(t, "file", payload["variable_type"])
		assert.Equal(t, true, payload["masked"])
		assert.Equal(t, "staging", payload["environment_scope"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"key":"DB_PASSWORD","value":"s3cret","variable_type":"file","protected":false,"masked":true,"environment_scope":"staging"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())

	// Act
	updated, err := client.UpdateVariable(context.Background(), "7", "DB_PASSWORD", domain.CIVariable{
		Value:            "s3cret",
		VariableType:     "file",
		Masked:           true,
		EnvironmentScope: "staging",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "DB_PASSWORD", updated.Key)
	assert.True(t, updated.Masked)
}

// TestDeleteVariable_NotFound tests that a 404 becomes a RemoteError with the raw body.
func TestDeleteVariable_NotFound(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 Not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())

	// Act
	err := client.DeleteVariable(context.Background(), "1", "MISSING", "*")

	// Assert
	var opErr *api.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, api.RemoteError, opErr.Category)
	assert.Equal(t, 404, opErr.StatusCode)
	assert.Equal(t, `{"message":"404 Not found"}`, opErr.Body)
	assert.True(t, opErr.IsNotFound())
}

// TestDeleteVariable_Success tests that any 2xx is success.
func TestDeleteVariable_Success(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted, http.StatusNoContent} {
		mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(status, ""), nil
		}}
		client := newTestClient(t, "https://gitlab.com", mockHTTP)

		assert.NoError(t, client.DeleteVariable(context.Background(), "1", "FOO", "*"))
	}
}

// TestListVariables_Defaults tests lenient per-field defaulting.
func TestListVariables_Defaults(t *testing.T) {
	// Arrange
	responseBody := `[
		{"key": "FOO", "value": "bar", "variable_type": "env_var", "protected": true},
		{"key": "CERT", "value": "---", "variable_type": "file", "masked": true, "environment_scope": "production", "description": "tls"},
		{}
	]`
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		return jsonResponse(http.StatusOK, responseBody), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	// Act
	variables, err := client.ListVariables(context.Background(), "1")

	// Assert
	require.NoError(t, err)
	require.Len(t, variables, 3)

	assert.Equal(t, domain.CIVariable{Key: "FOO", Value: "bar", VariableType: "env_var", Protected: true, EnvironmentScope: "*"}, variables[0])
	assert.Equal(t, domain.CIVariable{Key: "CERT", Value: "---", VariableType: "file", Masked: true, EnvironmentScope: "production", Description: "tls"}, variables[1])
	assert.Equal(t, domain.CIVariable{VariableType: "env_var", EnvironmentScope: "*"}, variables[2])
}

// TestListVariables_APIError tests error handling when API returns error.
func TestListVariables_APIError(t *testing.T) {
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"message":"401 Unauthorized"}`), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	variables, err := client.ListVariables(context.Background(), "1")

	assert.Nil(t, variables)
	assert.True(t, api.IsCategory(err, api.RemoteError))
	assert.Contains(t, err.Error(), "401")
}

// TestListVariables_ParseError tests that a non-array payload is a ParseError.
func TestListVariables_ParseError(t *testing.T) {
	for _, body := range []string{`{"key":"FOO"}`, `not json`, `"text"`} {
		mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		}}
		client := newTestClient(t, "https://gitlab.com", mockHTTP)

		_, err := client.ListVariables(context.Background(), "1")

		assert.True(t, api.IsCategory(err, api.ParseError), "body %q: got %v", body, err)
	}
}

// TestTransportError tests that network failures short-circuit before parsing.
func TestTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockHTTP := mocks.NewMockHTTPClient(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).Return(nil, errors.New("dial tcp: connection refused")).Times(1)
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	_, err := client.SearchProjects(context.Background(), "")

	assert.True(t, api.IsCategory(err, api.TransportError))
	assert.Contains(t, err.Error(), "connection refused")
}

// TestSearchProjects_Query tests search with an encoded query (scenario B).
func TestSearchProjects_Query(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("membership"))
		assert.Equal(t, "true", r.URL.Query().Get("simple"))
		assert.Equal(t, "my project", r.URL.Query().Get("search"))
		assert.NotContains(t, r.URL.RawQuery, " ")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":42,"name_with_namespace":"G / P"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.Client())

	// Act
	projects, err := client.SearchProjects(context.Background(), "my project")

	// Assert
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, domain.ProjectSummary{
		ID:                "",
		InstanceID:        "inst-1",
		ExternalProjectID: "42",
		DisplayName:       "G / P",
	}, projects[0])
}

// TestSearchProjects_SpecialCharacters tests that & and # cannot break the query string.
func TestSearchProjects_SpecialCharacters(t *testing.T) {
	var gotURL string
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `[{"id":1}]`), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	projects, err := client.SearchProjects(context.Background(), "a&b#c")

	require.NoError(t, err)
	assert.Equal(t, "https://gitlab.com/api/v4/projects?membership=true&simple=true&search=a%26b%23c", gotURL)
	assert.Equal(t, "", projects[0].DisplayName)
}

// TestSearchProjects_NoQuery tests that an empty query omits the search parameter.
func TestSearchProjects_NoQuery(t *testing.T) {
	var gotURL string
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `[]`), nil
	}}
	client := newTestClient(t, "https://gitlab.com/", mockHTTP)

	projects, err := client.SearchProjects(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, "https://gitlab.com/api/v4/projects?membership=true&simple=true", gotURL)
}

// TestUploadPackageFile_MissingFile tests that a missing file fails before any request (scenario A).
func TestUploadPackageFile_MissingFile(t *testing.T) {
	// Arrange
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)
	missing := filepath.Join(t.TempDir(), "does-not-exist.tar.gz")

	// Act
	_, err := client.UploadPackageFile(context.Background(), domain.PackageUploadRequest{
		ProjectID:      "1",
		PackageName:    "pkg",
		PackageVersion: "1.0.0",
		FileName:       "does-not-exist.tar.gz",
		LocalFilePath:  missing,
	})

	// Assert
	var opErr *api.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, api.FileReadError, opErr.Category)
	assert.Equal(t, missing, opErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, mockHTTP.calls)
}

// TestUploadPackageFile_Success tests the PUT URL, raw body and confirmation.
func TestUploadPackageFile_Success(t *testing.T) {
	// Arrange
	content := []byte("binary\x00content")
	path := filepath.Join(t.TempDir(), "app.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v4/projects/group%2Fproject/packages/generic/my-app/1.2.3/app.tar.gz", r.URL.EscapedPath())
		assert.Equal(t, "test-token", r.Header.Get("PRIVATE-TOKEN"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, content, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"201 Created"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/", server.Client())

	// Act
	result, err := client.UploadPackageFile(context.Background(), domain.PackageUploadRequest{
		ProjectID:      "group/project",
		PackageName:    "my-app",
		PackageVersion: "1.2.3",
		FileName:       "app.tar.gz",
		LocalFilePath:  path,
	})

	// Assert
	require.NoError(t, err)
	expectedURL := server.URL + "/api/v4/projects/group%2Fproject/packages/generic/my-app/1.2.3/app.tar.gz"
	assert.Equal(t, expectedURL, result.URL)
	assert.Equal(t, "Successfully uploaded app.tar.gz to "+expectedURL, result.Message)
	assert.Equal(t, len(content), result.Size)
	assert.True(t, strings.HasPrefix(result.PURL, "pkg:generic/my-app@1.2.3"), result.PURL)
}

// TestUploadPackageFile_RemoteError tests upload failure reporting.
func TestUploadPackageFile_RemoteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	mockHTTP := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"message":"403 Forbidden"}`), nil
	}}
	client := newTestClient(t, "https://gitlab.com", mockHTTP)

	_, err := client.UploadPackageFile(context.Background(), domain.PackageUploadRequest{
		ProjectID: "1", PackageName: "p", PackageVersion: "1", FileName: "f.bin", LocalFilePath: path,
	})

	assert.EqualError(t, err, `upload package: HTTP 403: {"message":"403 Forbidden"}`)
	assert.Equal(t, 1, mockHTTP.calls)
}

// TestNewFactory tests that the factory builds working clients.
func TestNewFactory(t *testing.T) {
	factory := NewFactory(&mockHTTPClient{})

	client, err := factory(domain.InstanceProfile{URL: "https://gitlab.com", Token: "t"})
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = factory(domain.InstanceProfile{URL: "https://gitlab.com", Token: "bad\ntoken"})
	assert.True(t, api.IsCategory(err, api.ConfigurationError))
}

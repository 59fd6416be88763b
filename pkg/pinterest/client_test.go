package pinterest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/auth"
	"pinscraper/pkg/errors"
	"pinscraper/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(5*time.Second, logger.NewNopLogger())
	client.SetBaseURL(server.URL)
	return client, server
}

func TestNewClient(t *testing.T) {
	client := NewClient(5*time.Second, logger.NewNopLogger())

	assert.NotNil(t, client)
	assert.Equal(t, BaseURL, client.GetBaseURL())
	assert.NotEmpty(t, client.headers["User-Agent"])
}

func TestSetAccount(t *testing.T) {
	client := NewClient(5*time.Second, logger.NewNopLogger())
	client.SetAccount(&auth.Account{
		Username:      "alice",
		SessionCookie: "sess-value",
		CSRFToken:     "csrf-value",
		UserAgent:     "CustomAgent/1.0",
	})

	assert.Equal(t, "_pinterest_sess=sess-value; csrftoken=csrf-value", client.headers["Cookie"])
	assert.Equal(t, "csrf-value", client.headers["X-CSRFToken"])
	assert.Equal(t, "CustomAgent/1.0", client.headers["User-Agent"])
}

func TestSetCookieJar(t *testing.T) {
	client := NewClient(5*time.Second, logger.NewNopLogger())
	client.SetCookieJar(&auth.CookieJar{Cookies: []auth.Cookie{
		{Name: "_pinterest_sess", Value: "abc"},
		{Name: "csrftoken", Value: "def"},
		{Name: "_routing_id", Value: "xyz"},
	}})

	assert.Equal(t, "_pinterest_sess=abc; csrftoken=def; _routing_id=xyz", client.headers["Cookie"])
	assert.Equal(t, "def", client.headers["X-CSRFToken"])
}

func TestClientSendsHeaders(t *testing.T) {
	var gotCookie, gotAgent string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("{}"))
	}))
	client.SetAccount(&auth.Account{SessionCookie: "sess"})

	var out map[string]interface{}
	require.NoError(t, client.GetJSON(context.Background(), client.GetBaseURL()+"/x", &out))

	assert.Equal(t, "_pinterest_sess=sess", gotCookie)
	assert.NotEmpty(t, gotAgent)
}

func TestGetJSONStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType errors.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrorTypeAuth},
		{"forbidden", http.StatusForbidden, errors.ErrorTypeAuth},
		{"not found", http.StatusNotFound, errors.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{"server error", http.StatusInternalServerError, errors.ErrorTypeServerError},
		{"teapot", http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			var out map[string]interface{}
			err := client.GetJSON(context.Background(), client.GetBaseURL()+"/x", &out)
			require.Error(t, err)

			scrapeErr, ok := err.(*errors.Error)
			require.True(t, ok, "expected typed error, got %T", err)
			assert.Equal(t, tt.wantType, scrapeErr.Type)
			assert.Equal(t, tt.status, scrapeErr.Code)
		})
	}
}

func TestGetJSONParsingError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), client.GetBaseURL()+"/x", &out)
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeParsing, scrapeErr.Type)
}

func TestGetNetworkError(t *testing.T) {
	client := NewClient(time.Second, logger.NewNopLogger())

	_, err := client.Get(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNetwork, scrapeErr.Type)
}

func TestVerifySession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserResourceEndpoint, r.URL.Path)
		w.Write([]byte(`{"resource_response": {"data": {"id": "42", "username": "alice"}}}`))
	}))

	user, err := client.VerifySession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestVerifySessionInvalid(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resource_response": {"data": {}}}`))
	}))

	_, err := client.VerifySession(context.Background())
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAuth, scrapeErr.Type)
}

func TestVerifySessionUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.VerifySession(context.Background())
	require.Error(t, err)

	scrapeErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAuth, scrapeErr.Type)
}

func TestSearchResourceError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resource_response": {"error": {"message": "something broke"}}}`))
	}))

	_, err := client.Search(context.Background(), "coffee", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}

func TestSearchSendsKeyword(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SearchResourceEndpoint, r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("data"), `"query":"coffee"`)
		w.Write([]byte(`{"resource_response": {"bookmark": "next", "data": {"results": [{"id": "1", "type": "pin"}]}}}`))
	}))

	page, err := client.Search(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Equal(t, "next", page.ResourceResponse.Bookmark)
	require.Len(t, page.ResourceResponse.Data.Results, 1)
	assert.Equal(t, "1", page.ResourceResponse.Data.Results[0].ID)
}

func TestSearchSendsPageSize(t *testing.T) {
	var gotData string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotData = r.URL.Query().Get("data")
		w.Write([]byte(`{"resource_response": {"bookmark": "-end-", "data": {"results": []}}}`))
	}))

	_, err := client.Search(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Contains(t, gotData, `"page_size":25`)

	client.SetPageSize(50)
	_, err = client.Search(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Contains(t, gotData, `"page_size":50`)
}

func TestGetDocument(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div id="x">hello</div></body></html>`))
	}))

	doc, err := client.GetDocument(context.Background(), client.GetBaseURL()+"/page")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("#x").Text())
}

func TestFetchPinPageRebasesURL(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("<html></html>"))
	}))

	_, err := client.FetchPinPage(context.Background(), "https://www.pinterest.com/pin/12345/")
	require.NoError(t, err)
	assert.Equal(t, "/pin/12345/", gotPath)
}

package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/models"
)

// newTestClient points a Client at a fake engine API served over TCP.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/_ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("API-Version", "1.44")
		w.Header().Set("OSType", "linux")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(strings.Replace(srv.URL, "http://", "tcp://", 1), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestListContainersMapsRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/containers/json"))
		assert.Equal(t, "1", r.URL.Query().Get("all"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"Id": "aaaa1111bbbb2222",
				"Names": ["/core-api-1"],
				"Image": "registry.local:5000/api:v3",
				"State": "running",
				"Status": "Up 2 hours",
				"Labels": {"com.docker.compose.project": "core"},
				"Ports": [{"PrivatePort": 80, "PublicPort": 8080, "Type": "tcp"}]
			},
			{
				"Id": "cccc3333dddd4444",
				"Names": ["/core-proxy-1"],
				"Image": "nginx:1.27",
				"State": "weird-new-state",
				"Status": "",
				"Ports": [{"PrivatePort": 9090, "Type": "TCP"}, {"PrivatePort": 5060, "Type": "SCTP"}]
			}
		]`))
	})

	records, err := client.ListContainers(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "aaaa1111bbbb2222", records[0].ID)
	assert.Equal(t, "core-api-1", records[0].Name())
	assert.Equal(t, models.StateRunning, records[0].State)
	assert.Equal(t, "core", records[0].Labels["com.docker.compose.project"])
	require.Len(t, records[0].Ports, 1)
	assert.Equal(t, models.Port{HostPort: 8080, ContainerPort: 80, Protocol: "tcp"}, records[0].Ports[0])

	// Unrecognized states collapse to unknown; protocols normalize and no
	// port mapping is dropped.
	assert.Equal(t, models.StateUnknown, records[1].State)
	require.Len(t, records[1].Ports, 2)
	assert.Equal(t, models.Port{HostPort: 0, ContainerPort: 9090, Protocol: "tcp"}, records[1].Ports[0])
	assert.Equal(t, models.Port{HostPort: 0, ContainerPort: 5060, Protocol: "sctp"}, records[1].Ports[1])
}

func TestListContainersRequestError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "engine exploded"}`))
	})

	_, err := client.ListContainers(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "engine exploded")
}

func TestListContainersMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"garbage body", "not really json"},
		{"truncated body", `[{"Id": "aaaa1111`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ListContainers(context.Background())
			assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
		})
	}
}

func TestRequestTimeoutBoundsCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/_ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("API-Version", "1.44")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(strings.Replace(srv.URL, "http://", "tcp://", 1), 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.ListContainers(context.Background())
	assert.Error(t, err)
}

func TestStartContainerAccepted(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.StartContainer(context.Background(), "aaaa1111")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gotPath, "/containers/aaaa1111/start"))
}

func TestMissingSocketUnavailable(t *testing.T) {
	client, err := New("/nonexistent/fleetdeck-test.sock", 0)
	require.NoError(t, err)
	defer client.Close()

	assert.False(t, client.Available(context.Background()))

	_, err = client.ListContainers(context.Background())
	assert.True(t, IsUnavailable(err))
}

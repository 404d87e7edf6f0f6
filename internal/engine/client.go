// Package engine translates container lifecycle primitives to and from the
// local container engine's control socket. It knows nothing about stacks or
// business grouping; it exposes list/start/stop/restart/pull primitives and
// raw container records.
//
// Mutating calls are fire-and-confirm: success means the engine accepted
// the request, not that the container reached the target state. Callers
// must re-query to observe the result. No retries happen at this layer.
package engine

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs/pkg/errhttp"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/fleetdeck/fleetdeck/models"
)

const defaultSocket = "/var/run/docker.sock"

// Client issues requests against one engine control socket.
type Client struct {
	docker     *dockerclient.Client
	socketPath string // empty for non-unix hosts
}

// New creates a client for the given engine host. A bare path is treated
// as a unix socket; an empty host falls back to the default socket. A
// positive requestTimeout bounds each engine call at the transport level;
// zero leaves the transport's own behavior in place.
func New(host string, requestTimeout time.Duration) (*Client, error) {
	if host == "" {
		host = defaultSocket
	}

	socketPath := ""
	if !strings.Contains(host, "://") {
		socketPath = host
		host = "unix://" + host
	} else if strings.HasPrefix(host, "unix://") {
		socketPath = strings.TrimPrefix(host, "unix://")
	}

	opts := []dockerclient.Opt{
		dockerclient.WithHost(host),
		dockerclient.WithAPIVersionNegotiation(),
	}
	if requestTimeout > 0 {
		opts = append(opts, dockerclient.WithTimeout(requestTimeout))
	}

	docker, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{docker: docker, socketPath: socketPath}, nil
}

// Available reports whether the configured control socket exists and
// answers a ping. It lets callers fail fast with ErrUnavailable instead of
// surfacing a generic network error mid-operation.
func (c *Client) Available(ctx context.Context) bool {
	if c.socketPath != "" {
		if _, err := os.Stat(c.socketPath); err != nil {
			return false
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.docker.Ping(pingCtx)
	return err == nil
}

// ListContainers returns a snapshot of all containers, including stopped
// ones. The records are never cached; every call hits the engine.
func (c *Client) ListContainers(ctx context.Context) ([]models.ContainerRecord, error) {
	summaries, err := c.docker.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, c.translate(err)
	}

	records := make([]models.ContainerRecord, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, models.ContainerRecord{
			ID:     s.ID,
			Names:  s.Names,
			Image:  s.Image,
			State:  models.ParseContainerState(string(s.State)),
			Status: s.Status,
			Labels: s.Labels,
			Ports:  mapPorts(s.Ports),
		})
	}
	return records, nil
}

// StartContainer asks the engine to start a container.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	return c.translate(c.docker.ContainerStart(ctx, id, container.StartOptions{}))
}

// StopContainer asks the engine to stop a container using the engine's
// default stop timeout.
func (c *Client) StopContainer(ctx context.Context, id string) error {
	return c.translate(c.docker.ContainerStop(ctx, id, container.StopOptions{}))
}

// RestartContainer asks the engine to restart a container.
func (c *Client) RestartContainer(ctx context.Context, id string) error {
	return c.translate(c.docker.ContainerRestart(ctx, id, container.StopOptions{}))
}

// PullImage pulls a repository[:tag] reference, defaulting the tag to
// "latest" when absent. The pull stream is drained because the engine only
// completes the pull as the response body is consumed.
func (c *Client) PullImage(ctx context.Context, ref string) error {
	repo, tag := SplitImageRef(ref)

	rd, err := c.docker.ImagePull(ctx, repo+":"+tag, image.PullOptions{})
	if err != nil {
		return c.translate(err)
	}
	defer rd.Close()

	if _, err := io.Copy(io.Discard, rd); err != nil {
		return c.translate(err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.docker.Close()
}

// translate maps SDK errors onto the engine error kinds.
func (c *Client) translate(err error) error {
	if err == nil {
		return nil
	}
	if dockerclient.IsErrConnectionFailed(err) {
		return ErrUnavailable
	}
	if isDecodeError(err) {
		return ErrMalformedResponse
	}
	return &RequestError{
		StatusCode: errhttp.ToHTTP(err),
		Body:       strings.TrimSpace(err.Error()),
	}
}

// mapPorts converts engine port summaries into domain port mappings,
// normalizing the protocol through nat so "TCP" and "tcp" collapse.
func mapPorts(ports []container.Port) []models.Port {
	if len(ports) == 0 {
		return nil
	}

	mapped := make([]models.Port, 0, len(ports))
	for _, p := range ports {
		proto := strings.ToLower(p.Type)
		if proto == "" {
			proto = "tcp"
		}
		port, err := nat.NewPort(proto, strconv.Itoa(int(p.PrivatePort)))
		if err != nil {
			// Keep the raw values rather than dropping the mapping.
			log.Printf("engine: unparseable port %d/%s: %v", p.PrivatePort, proto, err)
			mapped = append(mapped, models.Port{
				HostPort:      int(p.PublicPort),
				ContainerPort: int(p.PrivatePort),
				Protocol:      proto,
			})
			continue
		}
		mapped = append(mapped, models.Port{
			HostPort:      int(p.PublicPort),
			ContainerPort: port.Int(),
			Protocol:      port.Proto(),
		})
	}
	return mapped
}

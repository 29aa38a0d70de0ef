package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// NewClient builds a Docker API client from the environment (DOCKER_HOST
// and friends) and pings the daemon before returning it. Every lab command
// obtains its client here, so a stopped daemon surfaces immediately with a
// hint rather than mid-run.
func NewClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		return nil, daemonUnreachable(err)
	}

	return cli, nil
}

func daemonUnreachable(cause error) error {
	return fmt.Errorf(`Docker daemon not accessible: %w

Labs run in Docker containers. Ensure Docker is running:
  • macOS: Docker Desktop
  • Linux: sudo systemctl start docker`, cause)
}

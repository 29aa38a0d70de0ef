package lab

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	dockerpkg "github.com/dyluth/lore/internal/docker"
)

// ScanUsedPorts returns the host ports already claimed by lab containers,
// read from their port labels. Stopped containers count too: their ports
// are reclaimed only when the lab is removed.
func ScanUsedPorts(ctx context.Context, cli *client.Client) (map[int]bool, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query Docker containers: %w", err)
	}

	used := make(map[int]bool)
	for _, c := range containers {
		if portStr, ok := c.Labels[dockerpkg.LabelHostPort]; ok {
			if port, err := strconv.Atoi(portStr); err == nil {
				used[port] = true
			}
		}
	}
	return used, nil
}

// Allocator hands out host ports from the configured range, skipping ports
// claimed by other labs and ports that cannot be bound on the host.
type Allocator struct {
	lo, hi int
	taken  map[int]bool
}

// NewAllocator creates an allocator over [lo, hi] that treats every port in
// taken as unavailable.
func NewAllocator(lo, hi int, taken map[int]bool) *Allocator {
	a := &Allocator{lo: lo, hi: hi, taken: make(map[int]bool, len(taken))}
	for port := range taken {
		a.taken[port] = true
	}
	return a
}

// Next returns the next free port and marks it as taken.
func (a *Allocator) Next() (int, error) {
	for port := a.lo; port <= a.hi; port++ {
		if a.taken[port] {
			continue
		}
		if !isPortBindable(port) {
			continue
		}
		a.taken[port] = true
		return port, nil
	}
	return 0, fmt.Errorf("no available lab ports (range %d-%d exhausted)", a.lo, a.hi)
}

// isPortBindable reports whether the port is free on localhost right now.
func isPortBindable(port int) bool {
	addr := fmt.Sprintf("localhost:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

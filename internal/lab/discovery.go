package lab

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	dockerpkg "github.com/dyluth/lore/internal/docker"
)

// ServiceInfo describes one lab service container.
type ServiceInfo struct {
	Name      string `json:"name"`
	Container string `json:"container"`
	Image     string `json:"image"`
	State     string `json:"state"`
	HostPort  int    `json:"host_port,omitempty"`
}

// Info describes a lab environment discovered from container labels.
type Info struct {
	Level    string        `json:"level"`
	Slug     string        `json:"slug"`
	RunID    string        `json:"run_id"`
	Status   Status        `json:"status"`
	Services []ServiceInfo `json:"services"`
}

// Ref returns the lab's lesson reference, level/slug.
func (i Info) Ref() string {
	return i.Level + "/" + i.Slug
}

// Service returns the named service, if present.
func (i Info) Service(name string) (ServiceInfo, bool) {
	for _, svc := range i.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceInfo{}, false
}

// FindAll returns every lab on this host, discovered from container labels.
func FindAll(ctx context.Context, cli *client.Client) ([]Info, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lab containers: %w", err)
	}

	return groupLabs(containers), nil
}

// Find returns the lab for a lesson slug, or nil when none exists.
func Find(ctx context.Context, cli *client.Client, slug string) (*Info, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=%s", dockerpkg.LabelLessonSlug, slug))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lab containers: %w", err)
	}
	if len(containers) == 0 {
		return nil, nil
	}

	labs := groupLabs(containers)
	return &labs[0], nil
}

// groupLabs turns a flat container list into one Info per lab.
func groupLabs(containers []types.Container) []Info {
	byRef := make(map[string]*Info)
	raw := make(map[string][]types.Container)

	for _, c := range containers {
		level := c.Labels[dockerpkg.LabelLessonLevel]
		slug := c.Labels[dockerpkg.LabelLessonSlug]
		key := level + "/" + slug

		info, ok := byRef[key]
		if !ok {
			info = &Info{Level: level, Slug: slug}
			byRef[key] = info
		}
		if info.RunID == "" {
			info.RunID = c.Labels[dockerpkg.LabelRunID]
		}

		svc := ServiceInfo{
			Name:  c.Labels[dockerpkg.LabelComponent],
			Image: c.Image,
			State: c.State,
		}
		if len(c.Names) > 0 {
			svc.Container = strings.TrimPrefix(c.Names[0], "/")
		}
		if portStr, ok := c.Labels[dockerpkg.LabelHostPort]; ok {
			if port, err := strconv.Atoi(portStr); err == nil {
				svc.HostPort = port
			}
		}

		info.Services = append(info.Services, svc)
		raw[key] = append(raw[key], c)
	}

	labs := make([]Info, 0, len(byRef))
	for key, info := range byRef {
		info.Status = DetermineStatus(raw[key])
		sort.Slice(info.Services, func(i, k int) bool {
			return info.Services[i].Name < info.Services[k].Name
		})
		labs = append(labs, *info)
	}
	sort.Slice(labs, func(i, k int) bool { return labs[i].Ref() < labs[k].Ref() })
	return labs
}

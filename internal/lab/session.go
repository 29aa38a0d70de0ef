package lab

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/dyluth/lore/internal/config"
	dockerpkg "github.com/dyluth/lore/internal/docker"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/printer"
)

// Manager provisions and tears down lab environments.
type Manager struct {
	cli *client.Client
	cfg *config.Config

	// WaitTimeout bounds each readiness probe during Up.
	WaitTimeout time.Duration
}

// NewManager creates a lab manager.
func NewManager(cli *client.Client, cfg *config.Config) *Manager {
	return &Manager{cli: cli, cfg: cfg, WaitTimeout: ReadyTimeout}
}

// Up provisions the lesson's lab: the shared network, one container per
// service, then readiness probes. On failure everything created so far is
// rolled back so a retry starts clean.
func (m *Manager) Up(ctx context.Context, l *lesson.Lesson) (*Info, error) {
	manifest, err := ReadManifest(filepath.Join(l.Dir, lesson.LabFile))
	if err != nil {
		return nil, err
	}

	existing, err := Find(ctx, m.cli, l.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("lab for lesson '%s' already exists (status: %s)", l.Slug, existing.Status)
	}

	runID := dockerpkg.GenerateRunID()

	if err := m.createLab(ctx, l, manifest, runID); err != nil {
		printer.Printf("\nLab creation failed. Rolling back...\n")
		if rollbackErr := m.removeLab(ctx, l.Slug); rollbackErr != nil {
			printer.Warning("rollback encountered errors: %v", rollbackErr)
		}
		return nil, fmt.Errorf("failed to start lab: %w", err)
	}

	return Find(ctx, m.cli, l.Slug)
}

func (m *Manager) createLab(ctx context.Context, l *lesson.Lesson, manifest *Manifest, runID string) error {
	if err := m.ensureNetwork(ctx); err != nil {
		return err
	}

	used, err := ScanUsedPorts(ctx, m.cli)
	if err != nil {
		return err
	}
	alloc := NewAllocator(m.cfg.Lab.PortRange[0], m.cfg.Lab.PortRange[1], used)

	type pendingProbe struct {
		service  string
		ready    *ReadyConfig
		hostPort int
	}
	var probes []pendingProbe

	// Start every service before probing any: services may depend on each
	// other over the shared network.
	for _, name := range manifest.ServiceNames() {
		svc := manifest.Services[name]

		// Interactive services are one-shot clients, started by `lore lab run`.
		if svc.Interactive {
			continue
		}

		hostPort := 0
		if svc.Port != 0 {
			hostPort, err = alloc.Next()
			if err != nil {
				return err
			}
		}

		if err := m.startService(ctx, l, runID, name, svc, hostPort); err != nil {
			return err
		}

		if hostPort != 0 {
			printer.Step("Started %s (port %d)\n", dockerpkg.ContainerName(l.Slug, name), hostPort)
		} else {
			printer.Step("Started %s\n", dockerpkg.ContainerName(l.Slug, name))
		}

		if svc.Ready != nil {
			probes = append(probes, pendingProbe{service: name, ready: svc.Ready, hostPort: hostPort})
		}
	}

	for _, p := range probes {
		printer.Step("Waiting for %s to become ready...\n", p.service)
		if err := WaitReady(ctx, p.ready, p.hostPort, m.WaitTimeout); err != nil {
			return fmt.Errorf("service '%s' failed its readiness probe: %w", p.service, err)
		}
		printer.Success("%s is ready\n", p.service)
	}

	return nil
}

// ensureNetwork creates the shared lab network if it does not exist.
// The network outlives individual labs; DownAll removes it.
func (m *Manager) ensureNetwork(ctx context.Context) error {
	name := m.cfg.Lab.Network

	networks, err := m.cli.NetworkList(ctx, types.NetworkListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range networks {
		if n.Name == name {
			return nil
		}
	}

	_, err = m.cli.NetworkCreate(ctx, name, types.NetworkCreate{
		Driver: "bridge",
		Labels: map[string]string{dockerpkg.LabelProject: "true"},
	})
	if err != nil {
		return fmt.Errorf("failed to create network '%s': %w", name, err)
	}

	printer.Step("Created network: %s\n", name)
	return nil
}

func (m *Manager) startService(ctx context.Context, l *lesson.Lesson, runID, name string, svc Service, hostPort int) error {
	containerName := dockerpkg.ContainerName(l.Slug, name)

	labels := dockerpkg.BuildLabels(string(l.Level), l.Slug, runID, name)
	if hostPort != 0 {
		labels[dockerpkg.LabelHostPort] = strconv.Itoa(hostPort)
	}

	if err := m.ensureImage(ctx, svc.Image); err != nil {
		return err
	}

	containerCfg := &container.Config{
		Image:  svc.Image,
		Labels: labels,
		Env:    envSlice(svc.Env),
		Cmd:    svc.Command,
	}

	hostCfg := &container.HostConfig{
		NetworkMode: container.NetworkMode(m.cfg.Lab.Network),
	}

	if hostPort != 0 {
		port := nat.Port(fmt.Sprintf("%d/tcp", svc.Port))
		containerCfg.ExposedPorts = nat.PortSet{port: struct{}{}}
		hostCfg.PortBindings = nat.PortMap{
			port: []nat.PortBinding{
				{
					HostIP:   "127.0.0.1",
					HostPort: strconv.Itoa(hostPort),
				},
			},
		}
	}

	if svc.MountLab {
		hostCfg.Binds = []string{
			fmt.Sprintf("%s:/lab:ro", filepath.Join(l.Dir, lesson.LabDir)),
		}
	}

	resp, err := m.cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return fmt.Errorf("failed to create container '%s': %w", containerName, err)
	}

	if err := m.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container '%s': %w", containerName, err)
	}

	return nil
}

// ensureImage pulls the service image if it is not present locally.
func (m *Manager) ensureImage(ctx context.Context, image string) error {
	_, _, err := m.cli.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect image '%s': %w", image, err)
	}

	printer.Step("Pulling image %s...\n", image)
	reader, err := m.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image '%s': %w", image, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("error reading pull output: %w", err)
	}
	return nil
}

// Down stops and removes the lesson's lab containers.
func (m *Manager) Down(ctx context.Context, slug string) error {
	info, err := Find(ctx, m.cli, slug)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("no lab found for lesson '%s'", slug)
	}

	if err := m.removeLab(ctx, slug); err != nil {
		return err
	}

	printer.Success("\nLab for '%s' removed\n", slug)
	return nil
}

// DownAll removes every lab and the shared network. Returns how many labs
// were removed.
func (m *Manager) DownAll(ctx context.Context) (int, error) {
	labs, err := FindAll(ctx, m.cli)
	if err != nil {
		return 0, err
	}

	for _, l := range labs {
		if err := m.removeLab(ctx, l.Slug); err != nil {
			return 0, err
		}
	}

	networks, err := m.cli.NetworkList(ctx, types.NetworkListOptions{
		Filters: filters.NewArgs(
			filters.Arg("label", fmt.Sprintf("%s=true", dockerpkg.LabelProject)),
		),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range networks {
		printer.Step("Removing network %s...\n", n.Name)
		if err := m.cli.NetworkRemove(ctx, n.ID); err != nil {
			printer.Warning("failed to remove network %s: %v", n.Name, err)
		}
	}

	return len(labs), nil
}

// removeLab force-removes every container labeled with the lesson slug.
func (m *Manager) removeLab(ctx context.Context, slug string) error {
	timeout := 10

	containers, err := m.cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", fmt.Sprintf("%s=%s", dockerpkg.LabelLessonSlug, slug)),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		name := containerDisplayName(c)
		printer.Step("Stopping %s...\n", name)
		_ = m.cli.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout})

		printer.Step("Removing %s...\n", name)
		if err := m.cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil {
			printer.Warning("failed to remove %s: %v", name, err)
		}
	}

	return nil
}

func containerDisplayName(c types.Container) string {
	if len(c.Names) > 0 {
		name := c.Names[0]
		if len(name) > 0 && name[0] == '/' {
			return name[1:]
		}
		return name
	}
	if len(c.ID) >= 12 {
		return c.ID[:12]
	}
	return c.ID
}

// envSlice flattens an env map into sorted KEY=VALUE form.
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

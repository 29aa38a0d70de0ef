package lab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"

	dockerpkg "github.com/dyluth/lore/internal/docker"
	"github.com/dyluth/lore/internal/lesson"
)

// Run starts the named service's command with the caller's streams attached
// and returns its exit code. An interactive service runs as a fresh one-shot
// container joined to the lab network and removed on exit. For a daemon
// service the command is executed inside the already-running container, so
// `lore lab run <lesson> redis redis-cli` gets a shell into the live service.
func (m *Manager) Run(ctx context.Context, l *lesson.Lesson, service string, cmdOverride []string, in io.Reader, out io.Writer) (int, error) {
	manifest, err := ReadManifest(filepath.Join(l.Dir, lesson.LabFile))
	if err != nil {
		return 0, err
	}

	svc, ok := manifest.Services[service]
	if !ok {
		return 0, fmt.Errorf("lab for '%s' has no service '%s' (available: %s)",
			l.Slug, service, strings.Join(manifest.ServiceNames(), ", "))
	}

	info, err := Find(ctx, m.cli, l.Slug)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, fmt.Errorf("no lab running for lesson '%s' (start it with 'lore lab up %s')", l.Slug, l.Slug)
	}

	if svc.Interactive {
		return m.runOneShot(ctx, l, info.RunID, service, svc, cmdOverride, in, out)
	}
	return m.execInService(ctx, info, service, cmdOverride, in, out)
}

// runOneShot creates, attaches and starts a transient container for an
// interactive service, then waits for it to exit. The container carries the
// session's labels so teardown sweeps up anything left behind.
func (m *Manager) runOneShot(ctx context.Context, l *lesson.Lesson, runID, name string, svc Service, cmdOverride []string, in io.Reader, out io.Writer) (int, error) {
	cmd := cmdOverride
	if len(cmd) == 0 {
		cmd = svc.Command
	}

	if err := m.ensureImage(ctx, svc.Image); err != nil {
		return 0, err
	}

	containerCfg := &container.Config{
		Image:        svc.Image,
		Labels:       dockerpkg.BuildLabels(string(l.Level), l.Slug, runID, name),
		Env:          envSlice(svc.Env),
		Cmd:          cmd,
		Tty:          true,
		OpenStdin:    in != nil,
		StdinOnce:    in != nil,
		AttachStdin:  in != nil,
		AttachStdout: true,
		AttachStderr: true,
	}
	hostCfg := &container.HostConfig{
		NetworkMode: container.NetworkMode(m.cfg.Lab.Network),
	}
	if svc.MountLab {
		hostCfg.Binds = []string{fmt.Sprintf("%s:/lab:ro", filepath.Join(l.Dir, lesson.LabDir))}
	}

	containerName := fmt.Sprintf("%s-%s", dockerpkg.ContainerName(l.Slug, name), dockerpkg.GenerateRunID()[:8])
	resp, err := m.cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return 0, fmt.Errorf("failed to create container '%s': %w", containerName, err)
	}
	defer func() {
		// Removal must survive ctx cancellation; Ctrl-C is the usual exit.
		rmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = m.cli.ContainerRemove(rmCtx, resp.ID, container.RemoveOptions{Force: true})
	}()

	attach, err := m.cli.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdin:  in != nil,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to attach to '%s': %w", containerName, err)
	}
	defer attach.Close()

	if err := m.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return 0, fmt.Errorf("failed to start container '%s': %w", containerName, err)
	}

	if in != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, in)
			_ = attach.CloseWrite()
		}()
	}
	outDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(out, attach.Reader)
		close(outDone)
	}()

	waitCh, errCh := m.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case err := <-errCh:
		return 0, fmt.Errorf("failed waiting for '%s': %w", containerName, err)
	case status := <-waitCh:
		// Drain remaining output; the hijacked stream closes on exit
		<-outDone
		if status.Error != nil {
			return 0, fmt.Errorf("container '%s': %s", containerName, status.Error.Message)
		}
		return int(status.StatusCode), nil
	}
}

// execInService runs a command inside an already-running daemon service.
func (m *Manager) execInService(ctx context.Context, info *Info, service string, cmd []string, in io.Reader, out io.Writer) (int, error) {
	svc, ok := info.Service(service)
	if !ok {
		return 0, fmt.Errorf("lab for '%s' has no container for service '%s'", info.Slug, service)
	}
	if svc.State != "running" {
		return 0, fmt.Errorf("service '%s' is %s, not running", service, svc.State)
	}
	if len(cmd) == 0 {
		return 0, fmt.Errorf("service '%s' is already running; pass a command to execute, e.g. 'lore lab run %s %s redis-cli'",
			service, info.Slug, service)
	}

	execResp, err := m.cli.ContainerExecCreate(ctx, svc.Container, types.ExecConfig{
		AttachStdin:  in != nil,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          true,
		Cmd:          cmd,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create exec in '%s': %w", svc.Container, err)
	}

	attach, err := m.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{Tty: true})
	if err != nil {
		return 0, fmt.Errorf("failed to attach to '%s': %w", svc.Container, err)
	}
	defer attach.Close()

	outDone := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(out, attach.Reader)
		outDone <- copyErr
	}()

	if in != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, in)
			_ = attach.CloseWrite()
		}()
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case copyErr := <-outDone:
		if copyErr != nil && !errors.Is(copyErr, io.EOF) {
			return 0, fmt.Errorf("stream error: %w", copyErr)
		}
	}

	inspect, err := m.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect exec: %w", err)
	}

	return inspect.ExitCode, nil
}

// Package lab provisions and tears down the Docker environments that
// accompany lessons. A lesson declares its lab in a lab.yml manifest; lab
// sessions are tracked entirely through Docker labels so that `lore lab`
// commands can discover running sessions without local state.
package lab

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/lore/internal/lesson"
)

// Manifest represents a lesson's lab.yml file
type Manifest struct {
	Version  string             `yaml:"version"`
	Title    string             `yaml:"title,omitempty"`
	Services map[string]Service `yaml:"services"`
}

// Service describes one container in the lab environment
type Service struct {
	Image       string            `yaml:"image"`                 // Required: image to run, e.g. redis:7-alpine
	Port        int               `yaml:"port,omitempty"`        // Container port published on an allocated host port
	Env         map[string]string `yaml:"env,omitempty"`         // Environment variables
	Command     []string          `yaml:"command,omitempty"`     // Override the image's default command
	Ready       *ReadyConfig      `yaml:"ready,omitempty"`       // Readiness probe, requires port
	MountLab    bool              `yaml:"mount_lab,omitempty"`   // Mount the lesson's lab/ dir read-only at /lab
	Interactive bool              `yaml:"interactive,omitempty"` // Eligible for `lore lab run`
}

// ReadyConfig describes how to decide a service is ready for use
type ReadyConfig struct {
	Type     ReadyType `yaml:"type"`
	Path     string    `yaml:"path,omitempty"`     // http: request path, default /
	User     string    `yaml:"user,omitempty"`     // postgres: login user, default postgres
	Password string    `yaml:"password,omitempty"` // postgres: login password
	Database string    `yaml:"database,omitempty"` // postgres: database name, default user
}

// ReadyType defines which probe is used to wait for a service.
type ReadyType string

const (
	// ReadyRedis sends PING until the server answers PONG
	ReadyRedis ReadyType = "redis"

	// ReadyPostgres connects and pings until the server accepts the session
	ReadyPostgres ReadyType = "postgres"

	// ReadyHTTP polls a path until it returns a 2xx status
	ReadyHTTP ReadyType = "http"

	// ReadyTCP dials the port until the connection is accepted
	ReadyTCP ReadyType = "tcp"
)

// Validate checks if the ReadyType is a valid enum value.
func (rt ReadyType) Validate() error {
	switch rt {
	case ReadyRedis, ReadyPostgres, ReadyHTTP, ReadyTCP:
		return nil
	default:
		return fmt.Errorf("unknown ready type: %q (must be 'redis', 'postgres', 'http' or 'tcp')", rt)
	}
}

// Validate performs strict validation on the manifest
func (m *Manifest) Validate() error {
	// Required: version
	if m.Version != "1" {
		return fmt.Errorf("unsupported version: %s (expected: 1)", m.Version)
	}

	// Required: at least one service
	if len(m.Services) == 0 {
		return fmt.Errorf("no services defined")
	}

	for name, svc := range m.Services {
		if err := lesson.ValidateSlug(name); err != nil {
			return fmt.Errorf("invalid service name '%s': %w", name, err)
		}
		if err := svc.Validate(name); err != nil {
			return err
		}
	}

	return nil
}

// Validate performs validation on a single service configuration
func (s *Service) Validate(name string) error {
	// Required: image
	if s.Image == "" {
		return fmt.Errorf("service '%s': image is required", name)
	}

	if s.Port != 0 && (s.Port < 1 || s.Port > 65535) {
		return fmt.Errorf("service '%s': invalid port %d", name, s.Port)
	}

	// Probes dial the published host port, so a probe needs a port
	if s.Ready != nil {
		if err := s.Ready.Type.Validate(); err != nil {
			return fmt.Errorf("service '%s': %w", name, err)
		}
		if s.Port == 0 {
			return fmt.Errorf("service '%s': ready probe requires a port", name)
		}
	}

	return nil
}

// ServiceNames returns the manifest's service names in sorted order for
// deterministic provisioning.
func (m *Manifest) ServiceNames() []string {
	names := make([]string, 0, len(m.Services))
	for name := range m.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadManifest reads and validates a lab.yml from the specified path
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lab manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse lab manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lab manifest: %w", err)
	}

	return &manifest, nil
}

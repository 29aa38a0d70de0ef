package docker

import (
	"fmt"

	"github.com/google/uuid"
)

// Label keys attached to every lab resource. Discovery and teardown work
// entirely through these labels, so manually created containers are never
// touched.
const (
	LabelProject     = "lore.project"
	LabelLessonLevel = "lore.lesson.level"
	LabelLessonSlug  = "lore.lesson.slug"
	LabelRunID       = "lore.session.run_id"
	LabelComponent   = "lore.component"
	LabelHostPort    = "lore.host.port"
)

// BuildLabels creates the standard label set for a lab resource.
// component names the service within the lab and may be empty for
// resources that span the whole lab, such as the network.
func BuildLabels(level, slug, runID, component string) map[string]string {
	labels := map[string]string{
		LabelProject:     "true",
		LabelLessonLevel: level,
		LabelLessonSlug:  slug,
		LabelRunID:       runID,
	}

	if component != "" {
		labels[LabelComponent] = component
	}

	return labels
}

// GenerateRunID creates a new UUID for a lab session.
// Each invocation of `lore lab up` gets a unique run ID.
func GenerateRunID() string {
	return uuid.New().String()
}

// ContainerName returns the container name for a lab service.
func ContainerName(slug, service string) string {
	return fmt.Sprintf("lore-lab-%s-%s", slug, service)
}

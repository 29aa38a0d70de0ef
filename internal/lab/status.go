package lab

import "github.com/docker/docker/api/types"

// Status summarises the container states of one lab session.
type Status string

const (
	// StatusRunning means every service container is up.
	StatusRunning Status = "Running"

	// StatusDegraded means the lab is partially up. Some services run while
	// others have exited, usually after a crash or a manual docker stop.
	StatusDegraded Status = "Degraded"

	// StatusStopped means no service container is running.
	StatusStopped Status = "Stopped"
)

// DetermineStatus folds the states of a lab's containers into one Status.
// An empty slice counts as stopped.
func DetermineStatus(containers []types.Container) Status {
	var up int
	for _, c := range containers {
		if c.State == "running" {
			up++
		}
	}

	switch {
	case up == 0:
		return StatusStopped
	case up == len(containers):
		return StatusRunning
	default:
		return StatusDegraded
	}
}

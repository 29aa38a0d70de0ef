package lab

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
)

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   Status
	}{
		{"no containers", nil, StatusStopped},
		{"single running service", []string{"running"}, StatusRunning},
		{"all services running", []string{"running", "running", "running"}, StatusRunning},
		{"all services exited", []string{"exited", "exited"}, StatusStopped},
		{"one service crashed", []string{"running", "exited"}, StatusDegraded},
		{"one service still up", []string{"exited", "exited", "running"}, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var containers []types.Container
			for _, state := range tt.states {
				containers = append(containers, types.Container{State: state})
			}
			assert.Equal(t, tt.want, DetermineStatus(containers))
		})
	}
}

package mermaid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fenceOf(kind Kind, body ...string) Fence {
	return Fence{Kind: kind, Body: body, Closed: true}
}

func TestConvertState(t *testing.T) {
	f := fenceOf(KindStateV2,
		"stateDiagram-v2",
		"    [*] --> Still",
		"    Still --> [*]",
		"    Still --> Moving : push",
		"    Moving --> Crash : obstacle",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"| From | To | Trigger |",
		"| --- | --- | --- |",
		"| (start/end) | Still |  |",
		"| Still | (start/end) |  |",
		"| Still | Moving | push |",
		"| Moving | Crash | obstacle |",
	}, lines)
}

func TestConvertState_SkipsNotesAndDeclarations(t *testing.T) {
	f := fenceOf(KindState,
		"stateDiagram",
		"    direction LR",
		"    state \"Waiting for input\" as w",
		"    note right of w",
		"        This note spans",
		"        two lines",
		"    end note",
		"    w --> Done : submit",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Contains(t, lines, "| w | Done | submit |")
	assert.Len(t, lines, 3)
}

func TestConvertState_NoTransitions(t *testing.T) {
	f := fenceOf(KindStateV2, "stateDiagram-v2", "    direction LR")
	_, err := Convert(f)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no state transitions")
}

func TestConvertGantt(t *testing.T) {
	f := fenceOf(KindGantt,
		"gantt",
		"    title Release plan",
		"    dateFormat YYYY-MM-DD",
		"    section Build",
		"        Write code :a1, 2026-08-01, 10d",
		"        Review :crit, after a1, 3d",
		"    section Ship",
		"        Deploy :2026-08-15, 1d",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"| Section | Task | Start | Duration |",
		"| --- | --- | --- | --- |",
		"| Build | Write code | 2026-08-01 | 10d |",
		"| Build | Review | after a1 | 3d |",
		"| Ship | Deploy | 2026-08-15 | 1d |",
	}, lines)
}

func TestConvertGantt_EndDateInsteadOfDuration(t *testing.T) {
	f := fenceOf(KindGantt,
		"gantt",
		"    Long task :2026-08-01, 2026-08-20",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Contains(t, lines, "|  | Long task | 2026-08-01 | until 2026-08-20 |")
}

func TestConvertTimeline(t *testing.T) {
	f := fenceOf(KindTimeline,
		"timeline",
		"    title Release history",
		"    2024 : v1 released",
		"    2025 : v2 released : v2.1 hotfix",
		"         : v2.2",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"| Period | Event |",
		"| --- | --- |",
		"| 2024 | v1 released |",
		"| 2025 | v2 released |",
		"| 2025 | v2.1 hotfix |",
		"| 2025 | v2.2 |",
	}, lines)
}

func TestConvertER(t *testing.T) {
	f := fenceOf(KindERDiagram,
		"erDiagram",
		"    CUSTOMER ||--o{ ORDER : places",
		"    ORDER ||--|{ LINE-ITEM : \"contains\"",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"| Entity | Relationship | Entity | Cardinality |",
		"| --- | --- | --- | --- |",
		"| CUSTOMER | places | ORDER | exactly one to zero or more |",
		"| ORDER | contains | LINE-ITEM | exactly one to one or more |",
	}, lines)
}

func TestConvertER_SkipsAttributeBlocks(t *testing.T) {
	f := fenceOf(KindERDiagram,
		"erDiagram",
		"    CUSTOMER {",
		"        string name",
		"        string email",
		"    }",
		"    CUSTOMER ||--o{ ORDER : places",
	)

	lines, err := Convert(f)
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "CUSTOMER")
}

func TestConvert_UnsupportedKind(t *testing.T) {
	f := fenceOf(KindFlowchart, "flowchart LR", "A --> B")
	_, err := Convert(f)
	assert.Error(t, err)
}

func TestDecodeCardinality(t *testing.T) {
	tests := []struct {
		connector string
		expected  string
	}{
		{connector: "||--o{", expected: "exactly one to zero or more"},
		{connector: "||--||", expected: "exactly one to exactly one"},
		{connector: "}|..|{", expected: "one or more to one or more"},
		{connector: "|o--o|", expected: "zero or one to zero or one"},
		{connector: "weird", expected: "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.connector, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeCardinality(tt.connector))
		})
	}
}

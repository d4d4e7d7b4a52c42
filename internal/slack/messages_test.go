package slack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/pkg/models"
)

func TestQuestionBlocks(t *testing.T) {
	graph := flowchart.New()
	blocks := QuestionBlocks(graph.Start())

	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0].Text.Text, "What type of OWASP resource")

	buttons := blocks[1].Elements
	require.Len(t, buttons, 4)
	assert.Equal(t, "flowchart_start_tool", buttons[0].ActionID)

	value, err := DecodeButtonValue(buttons[0].Value)
	require.NoError(t, err)
	assert.Equal(t, ButtonValue{Current: "start", Selected: "tool"}, value)
}

func TestResultBlocks_TruncatesToMax(t *testing.T) {
	projects := make([]models.ProjectRecord, 8)
	for i := range projects {
		projects[i] = models.ProjectRecord{Title: "P", URL: "https://owasp.org/p/", Pitch: "x"}
	}

	blocks := ResultBlocks(projects, 5)

	// header + divider + 5 projects + divider + actions
	assert.Len(t, blocks, 9)
	assert.Contains(t, blocks[0].Text.Text, "Found 8 project(s)")
}

func TestResultBlocks_TrimsLongPitch(t *testing.T) {
	long := strings.Repeat("a", 500)
	blocks := ResultBlocks([]models.ProjectRecord{{Title: "P", Pitch: long}}, 5)

	// The project section is after the header and divider.
	assert.LessOrEqual(t, len(blocks[2].Text.Text), len("📦 *<#|P>*\n")+pitchPreviewLen)
}

func TestNoResultBlocks(t *testing.T) {
	blocks := NoResultBlocks()

	require.Len(t, blocks, 3)
	buttons := blocks[2].Elements
	require.Len(t, buttons, 2)
	assert.Equal(t, ActionStartOver, buttons[0].ActionID)
	assert.NotEmpty(t, buttons[1].URL)
}

func TestLevelEmoji(t *testing.T) {
	assert.Equal(t, "🏆", LevelEmoji(4))
	assert.Equal(t, "🥇", LevelEmoji(3))
	assert.Equal(t, "🥈", LevelEmoji(2))
	assert.Equal(t, "🥉", LevelEmoji(1))
	assert.Equal(t, "📦", LevelEmoji(0))
	assert.Equal(t, "📦", LevelEmoji(9))
}

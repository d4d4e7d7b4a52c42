package slack

import (
	"fmt"

	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/pkg/models"
)

// Block Kit element types used by the bot.
const (
	blockTypeHeader  = "header"
	blockTypeSection = "section"
	blockTypeActions = "actions"
	blockTypeDivider = "divider"

	textTypePlain    = "plain_text"
	textTypeMarkdown = "mrkdwn"
)

// pitchPreviewLen caps how much of a pitch a result block shows.
const pitchPreviewLen = 200

// TextObject is a Block Kit text composition object.
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Button is a Block Kit button element.
type Button struct {
	Type     string     `json:"type"`
	Text     TextObject `json:"text"`
	ActionID string     `json:"action_id,omitempty"`
	Value    string     `json:"value,omitempty"`
	Style    string     `json:"style,omitempty"`
	URL      string     `json:"url,omitempty"`
}

// Block is a Block Kit layout block.
type Block struct {
	Type     string      `json:"type"`
	Text     *TextObject `json:"text,omitempty"`
	Elements []Button    `json:"elements,omitempty"`
}

func plainText(text string) TextObject {
	return TextObject{Type: textTypePlain, Text: text, Emoji: true}
}

func markdownSection(text string) Block {
	return Block{Type: blockTypeSection, Text: &TextObject{Type: textTypeMarkdown, Text: text}}
}

func button(text, actionID, value string) Button {
	return Button{Type: "button", Text: plainText(text), ActionID: actionID, Value: value}
}

// WelcomeBlocks greets a newly joined user and offers to start.
func WelcomeBlocks() []Block {
	findButton := button("🔍 Find a Project", ActionStartFlowchart, "start")
	findButton.Style = "primary"

	return []Block{
		{Type: blockTypeHeader, Text: func() *TextObject { t := plainText("🥬 Welcome to OWASP!"); return &t }()},
		markdownSection("Hello and welcome to the *OWASP* community! I'm the OWASP Project Finder Bot, and I'm here to help you discover the perfect OWASP project for your needs."),
		markdownSection("Would you like me to help you find an OWASP project? I'll ask you a few questions to understand what you're looking for."),
		{Type: blockTypeActions, Elements: []Button{
			findButton,
			button("📖 Learn More", ActionLearnMore, "learn"),
		}},
	}
}

// QuestionBlocks renders one flowchart node as a question with its
// option buttons. Each button carries the (node, selection) pair; the
// next node is resolved server-side on click.
func QuestionBlocks(node *flowchart.Node) []Block {
	buttons := make([]Button, 0, len(node.Options))
	for _, opt := range node.Options {
		value := EncodeButtonValue(ButtonValue{Current: string(node.Key), Selected: opt.Value})
		actionID := fmt.Sprintf("%s%s_%s", ActionFlowchartPrefix, node.Key, opt.Value)
		buttons = append(buttons, button(opt.Text, actionID, value))
	}

	return []Block{
		markdownSection("*" + node.Question + "*"),
		{Type: blockTypeActions, Elements: buttons},
	}
}

// LearnMoreBlocks describes OWASP and links further reading.
func LearnMoreBlocks() []Block {
	findButton := button("🔍 Find a Project", ActionStartFlowchart, "start")
	findButton.Style = "primary"

	return []Block{
		markdownSection("*About OWASP*\n\nThe Open Worldwide Application Security Project (OWASP) is a nonprofit foundation that works to improve the security of software."),
		markdownSection("*Useful Links:*\n• <https://owasp.org|OWASP Website>\n• <https://owasp.org/projects/|All Projects>\n• <https://owasp.org/chapters/|Local Chapters>\n• <https://owasp.org/www-project-top-ten/|OWASP Top 10>"),
		{Type: blockTypeActions, Elements: []Button{findButton}},
	}
}

// ResultBlocks renders matching projects, truncated to the configured
// maximum by catalog order.
func ResultBlocks(projects []models.ProjectRecord, max int) []Block {
	blocks := []Block{
		markdownSection(fmt.Sprintf("🎉 *Found %d project(s) matching your criteria!*", len(projects))),
		{Type: blockTypeDivider},
	}

	shown := projects
	if len(shown) > max {
		shown = shown[:max]
	}
	for _, project := range shown {
		title := project.Title
		if title == "" {
			title = "Unknown Project"
		}
		pitch := project.Pitch
		if pitch == "" {
			pitch = "No description available."
		}
		if runes := []rune(pitch); len(runes) > pitchPreviewLen {
			pitch = string(runes[:pitchPreviewLen])
		}
		url := project.URL
		if url == "" {
			url = "#"
		}
		blocks = append(blocks, markdownSection(fmt.Sprintf("%s *<%s|%s>*\n%s", LevelEmoji(project.Level), url, title, pitch)))
	}

	blocks = append(blocks,
		Block{Type: blockTypeDivider},
		Block{Type: blockTypeActions, Elements: []Button{
			button("🔄 Search Again", ActionStartOver, "start"),
		}},
	)
	return blocks
}

// NoResultBlocks is shown when nothing matched.
func NoResultBlocks() []Block {
	startOver := button("🔄 Start Over", ActionStartOver, "start")
	startOver.Style = "primary"

	newProject := Button{
		Type:     "button",
		Text:     plainText("🚀 Start a Project"),
		ActionID: "new_project",
		URL:      "https://owasp.org/www-policy/operational/project-create",
	}

	return []Block{
		markdownSection("😕 *No projects found matching your criteria.*\n\nDon't worry! OWASP has many other great projects."),
		markdownSection("Would you like to try a different search, or learn how to start your own OWASP project?"),
		{Type: blockTypeActions, Elements: []Button{startOver, newProject}},
	}
}

// LevelEmoji maps a project maturity level to its badge.
func LevelEmoji(level int) string {
	switch level {
	case 4:
		return "🏆" // flagship
	case 3:
		return "🥇" // lab
	case 2:
		return "🥈" // incubator
	case 1:
		return "🥉" // production
	default:
		return "📦"
	}
}

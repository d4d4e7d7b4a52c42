package worker

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/owasp-blt/lettuce/internal/flowchart"
	"github.com/owasp-blt/lettuce/internal/matcher"
	"github.com/owasp-blt/lettuce/internal/slack"
)

// startConversation sends the first flowchart question.
func (s *Service) startConversation(ctx context.Context, userID string) {
	s.sendQuestion(ctx, userID, s.graph.Start())
}

// handleAction routes one button click.
func (s *Service) handleAction(ctx context.Context, userID, actionID, value string) {
	switch {
	case actionID == slack.ActionStartFlowchart, actionID == slack.ActionStartOver:
		s.startConversation(ctx, userID)
	case actionID == slack.ActionLearnMore:
		s.send(ctx, userID, slack.LearnMoreBlocks(), "About OWASP")
	case strings.HasPrefix(actionID, slack.ActionFlowchartPrefix):
		s.advanceFlowchart(ctx, userID, value)
	}
}

// advanceFlowchart resolves a flowchart selection, persists the answer,
// and either asks the next question or shows results. Any malformed or
// stale click resets the user to the start node instead of guessing.
func (s *Service) advanceFlowchart(ctx context.Context, userID, raw string) {
	value, err := slack.DecodeButtonValue(raw)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Bad flowchart button value, restarting conversation")
		s.startConversation(ctx, userID)
		return
	}

	result, err := s.graph.Resolve(flowchart.NodeKey(value.Current), value.Selected)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Unresolvable selection, restarting conversation")
		s.startConversation(ctx, userID)
		return
	}

	if err := s.conversations.RecordAnswer(ctx, userID, flowchart.NodeKey(value.Current), value.Selected); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to persist answer, aborting event")
		return
	}

	if result.Terminal {
		s.showMatches(ctx, userID, result.Tag)
		return
	}

	node, ok := s.graph.Node(result.Next)
	if !ok {
		// Validate() makes this unreachable for the static graph.
		log.Error().Str("node", string(result.Next)).Msg("Resolved to missing node")
		return
	}
	s.sendQuestion(ctx, userID, node)
}

// showMatches filters the current catalog by the classification tag,
// replies with the top matches, and counts the search.
func (s *Service) showMatches(ctx context.Context, userID, tag string) {
	projects, err := s.cache.GetCurrent(ctx)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Catalog unavailable, aborting event")
		return
	}

	matching := matcher.Filter(projects, tag)

	var blocks []slack.Block
	if len(matching) == 0 {
		blocks = slack.NoResultBlocks()
	} else {
		blocks = slack.ResultBlocks(matching, matcher.MaxInteractiveResults)
	}
	s.send(ctx, userID, blocks, "Project search results")

	if err := s.statsRecorder.Record(ctx, tag); err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("Failed to record search stats")
	}
	log.Info().Str("user", userID).Str("tag", tag).Int("matches", len(matching)).Msg("Search completed")
}

func (s *Service) sendQuestion(ctx context.Context, userID string, node *flowchart.Node) {
	s.send(ctx, userID, slack.QuestionBlocks(node), node.Question)
}

// send delivers a DM. Failures are logged and never retried.
func (s *Service) send(ctx context.Context, userID string, blocks []slack.Block, fallback string) {
	if err := s.sender.SendDM(ctx, userID, blocks, fallback); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("Failed to send message")
	}
}

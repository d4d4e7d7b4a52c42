package worker

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/owasp-blt/lettuce/internal/slack"
	"github.com/owasp-blt/lettuce/pkg/models"
)

const (
	headerSlackTimestamp = "X-Slack-Request-Timestamp"
	headerSlackSignature = "X-Slack-Signature"
)

// handleSlackEvents serves the Slack Events API: the URL verification
// challenge, team_join welcomes, and conversation-starting DMs.
func (s *Service) handleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	envelope, err := slack.ParseEventBody(body)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unparseable event body")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case slack.EventTypeURLVerification:
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, envelope.Challenge)
		return
	case slack.EventTypeCallback:
		s.dispatchEvent(r, &envelope.Event)
	}

	_, _ = io.WriteString(w, "OK")
}

// dispatchEvent routes one event_callback inner event.
func (s *Service) dispatchEvent(r *http.Request, event *slack.InnerEvent) {
	ctx := r.Context()

	switch event.Type {
	case slack.InnerEventTeamJoin:
		userID := event.UserID()
		if userID == "" {
			return
		}
		s.send(ctx, userID, slack.WelcomeBlocks(), "Welcome to OWASP!")

	case slack.InnerEventMessage:
		// Only direct messages, and never the bot's own, to avoid loops.
		if event.ChannelType != "im" || event.BotID != "" {
			return
		}
		if userID := event.UserID(); userID != "" && slack.IsTriggerText(event.Text) {
			s.startConversation(ctx, userID)
		}
	}
}

// handleSlackInteractivity serves button clicks from the flowchart.
func (s *Service) handleSlackInteractivity(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	payload, err := slack.ParseInteractionBody(body)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unparseable interaction payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if payload.Type == slack.InteractionBlockActions && payload.User.ID != "" && len(payload.Actions) > 0 {
		action := payload.Actions[0]
		s.handleAction(r.Context(), payload.User.ID, action.ActionID, action.Value)
	}

	w.WriteHeader(http.StatusOK)
}

// verifiedBody reads the request body and rejects the request unless
// its Slack signature checks out. Verification happens before anything
// else touches the payload.
func (s *Service) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, false
	}

	if !s.verifier.Verify(r.Header.Get(headerSlackTimestamp), r.Header.Get(headerSlackSignature), body) {
		log.Warn().Str("path", r.URL.Path).Msg("Rejected request with invalid signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

// handleGetStats serves the dashboard's search statistics.
func (s *Service) handleGetStats(w http.ResponseWriter, r *http.Request) {
	searchStats, err := s.statsRecorder.Get(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load search stats")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, searchStats)
}

// handleGetProjects serves the current catalog.
func (s *Service) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.cache.GetCurrent(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load project catalog")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []models.ProjectRecord{}
	}
	writeJSON(w, projects)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

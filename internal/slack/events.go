package slack

import (
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// Event envelope types.
const (
	EventTypeURLVerification = "url_verification"
	EventTypeCallback        = "event_callback"
)

// Inner event types.
const (
	InnerEventTeamJoin = "team_join"
	InnerEventMessage  = "message"
)

// Interaction payload type for button clicks.
const InteractionBlockActions = "block_actions"

// Action ids the bot responds to.
const (
	ActionStartFlowchart  = "start_flowchart"
	ActionLearnMore       = "learn_more"
	ActionStartOver       = "start_over"
	ActionFlowchartPrefix = "flowchart_"
)

// triggerWords are DM texts that start a conversation.
var triggerWords = map[string]bool{
	"start":        true,
	"help":         true,
	"find project": true,
	"projects":     true,
}

// IsTriggerText reports whether a DM text asks to start the finder.
func IsTriggerText(text string) bool {
	return triggerWords[strings.ToLower(strings.TrimSpace(text))]
}

// EventEnvelope is the outer Events API payload.
type EventEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge,omitempty"`
	Event     InnerEvent `json:"event,omitempty"`
}

// InnerEvent is the event inside an event_callback envelope. The user
// field is a bare id string for message events but an object for
// team_join, so it is kept raw and decoded on demand.
type InnerEvent struct {
	Type        string          `json:"type"`
	ChannelType string          `json:"channel_type,omitempty"`
	User        json.RawMessage `json:"user,omitempty"`
	Text        string          `json:"text,omitempty"`
	BotID       string          `json:"bot_id,omitempty"`
}

// UserID extracts the user id from either encoding of the user field.
func (e *InnerEvent) UserID() string {
	if len(e.User) == 0 {
		return ""
	}

	var id string
	if err := json.Unmarshal(e.User, &id); err == nil {
		return id
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.User, &obj); err == nil {
		return obj.ID
	}
	return ""
}

// ParseEventBody decodes an Events API request body.
func ParseEventBody(body []byte) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode event body: %w", err)
	}
	return &envelope, nil
}

// InteractionPayload is the interactivity payload for block actions.
type InteractionPayload struct {
	Type string `json:"type"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	Actions []Action `json:"actions"`
}

// Action is one interactive component action.
type Action struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
}

// ParseInteractionBody decodes an interactivity request body. Slack
// posts it form-encoded as payload=<urlencoded json>; a bare JSON body
// is accepted too.
func ParseInteractionBody(body []byte) (*InteractionPayload, error) {
	text := string(body)
	if rest, ok := strings.CutPrefix(text, "payload="); ok {
		decoded, err := url.QueryUnescape(rest)
		if err != nil {
			return nil, fmt.Errorf("decode interaction payload: %w", err)
		}
		text = decoded
	}

	var payload InteractionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode interaction payload: %w", err)
	}
	return &payload, nil
}

// ButtonValue is the state carried inside a flowchart button. Only the
// current node and the selection are trusted from the client; the next
// node is always resolved against the server-side graph.
type ButtonValue struct {
	Current  string `json:"current"`
	Selected string `json:"selected"`
}

// EncodeButtonValue serializes a ButtonValue for embedding in a button.
func EncodeButtonValue(v ButtonValue) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// DecodeButtonValue parses a flowchart button value.
func DecodeButtonValue(raw string) (ButtonValue, error) {
	var v ButtonValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ButtonValue{}, fmt.Errorf("decode button value: %w", err)
	}
	return v, nil
}

package models

// ConversationState is the in-progress flowchart conversation for one
// user. It is keyed by user id in the store, so the id is not repeated
// in the serialized record. Revisiting a question overwrites the prior
// answer for that node.
type ConversationState struct {
	Selections  map[string]string `json:"selections"`
	LastUpdated int64             `json:"last_updated"`
}

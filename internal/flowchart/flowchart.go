// Package flowchart defines the static question graph that drives the
// project finder conversation and resolves user selections to either
// the next question or a terminal classification tag.
package flowchart

import (
	"errors"
	"fmt"
)

// NodeKey identifies a question node in the graph.
type NodeKey string

// Question nodes. Terminal is the absorbing sentinel: an option whose
// Next is Terminal ends the conversation and its Value becomes the
// classification tag handed to the matcher.
const (
	NodeStart        NodeKey = "start"
	NodeToolType     NodeKey = "tool_type"
	NodeDocType      NodeKey = "doc_type"
	NodeTrainingType NodeKey = "training_type"
	NodeVulnAppType  NodeKey = "vuln_app_type"
	Terminal         NodeKey = "end"
)

var (
	// ErrUnknownNode means the node key is not in the graph. Callers
	// should reset the user to the start node.
	ErrUnknownNode = errors.New("flowchart: unknown node")

	// ErrInvalidSelection means the selection value is not one of the
	// node's declared options. Callers should reset rather than guess.
	ErrInvalidSelection = errors.New("flowchart: invalid selection")
)

// Option is one multiple-choice answer on a question node. The "go
// back" choice is an ordinary option whose Next points at the start
// node; no separate back stack exists.
type Option struct {
	Text  string
	Value string
	Next  NodeKey
}

// Node is one question with its ordered options.
type Node struct {
	Key      NodeKey
	Question string
	Options  []Option
}

// Result is the outcome of resolving one selection.
type Result struct {
	// Next is the node to ask next. Meaningless when Terminal is true.
	Next NodeKey

	// Terminal reports that the conversation reached a classification.
	Terminal bool

	// Tag is the classification tag; set only when Terminal is true.
	Tag string
}

// Graph is the immutable flowchart. Build it once with New and share it
// across requests; Resolve has no side effects.
type Graph struct {
	nodes map[NodeKey]*Node
	start NodeKey
}

// New builds the OWASP project finder graph.
func New() *Graph {
	nodes := []*Node{
		{
			Key:      NodeStart,
			Question: "What type of OWASP resource are you looking for?",
			Options: []Option{
				{Text: "🛠️ Security Tool", Value: "tool", Next: NodeToolType},
				{Text: "📚 Documentation/Guide", Value: "documentation", Next: NodeDocType},
				{Text: "🎓 Training/Education", Value: "training", Next: NodeTrainingType},
				{Text: "🔬 Vulnerable Application (for testing)", Value: "vulnerable_app", Next: NodeVulnAppType},
			},
		},
		{
			Key:      NodeToolType,
			Question: "What kind of security tool are you looking for?",
			Options: []Option{
				{Text: "🔍 Code Analysis/SAST", Value: "code_analysis", Next: Terminal},
				{Text: "🌐 Web Application Testing", Value: "web_testing", Next: Terminal},
				{Text: "🔐 Authentication/Authorization", Value: "auth", Next: Terminal},
				{Text: "📊 Security Monitoring", Value: "monitoring", Next: Terminal},
				{Text: "🔙 Go Back", Value: "back", Next: NodeStart},
			},
		},
		{
			Key:      NodeDocType,
			Question: "What documentation are you interested in?",
			Options: []Option{
				{Text: "📋 Security Standards/Checklists", Value: "standards", Next: Terminal},
				{Text: "🏗️ Secure Development Guide", Value: "secure_dev", Next: Terminal},
				{Text: "📖 Security Testing Guide", Value: "testing_guide", Next: Terminal},
				{Text: "⚡ Quick Reference", Value: "cheatsheet", Next: Terminal},
				{Text: "🔙 Go Back", Value: "back", Next: NodeStart},
			},
		},
		{
			Key:      NodeTrainingType,
			Question: "What kind of training are you looking for?",
			Options: []Option{
				{Text: "🎮 Hands-on Labs/CTF", Value: "labs", Next: Terminal},
				{Text: "📺 Presentations/Slides", Value: "presentations", Next: Terminal},
				{Text: "🎓 Courses/Curriculum", Value: "courses", Next: Terminal},
				{Text: "🔙 Go Back", Value: "back", Next: NodeStart},
			},
		},
		{
			Key:      NodeVulnAppType,
			Question: "What type of vulnerable application do you need?",
			Options: []Option{
				{Text: "🌐 Web Application", Value: "vuln_web", Next: Terminal},
				{Text: "📱 Mobile Application", Value: "vuln_mobile", Next: Terminal},
				{Text: "🔌 API Security", Value: "vuln_api", Next: Terminal},
				{Text: "🔙 Go Back", Value: "back", Next: NodeStart},
			},
		},
	}

	byKey := make(map[NodeKey]*Node, len(nodes))
	for _, n := range nodes {
		byKey[n.Key] = n
	}
	return &Graph{nodes: byKey, start: NodeStart}
}

// Start returns the entry node.
func (g *Graph) Start() *Node {
	return g.nodes[g.start]
}

// Node returns the node for key, or false when the key is not in the
// graph.
func (g *Graph) Node(key NodeKey) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Resolve advances the state machine by one selection. It is a pure
// lookup over the static graph.
func (g *Graph) Resolve(key NodeKey, value string) (Result, error) {
	node, ok := g.nodes[key]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownNode, key)
	}
	for _, opt := range node.Options {
		if opt.Value != value {
			continue
		}
		if opt.Next == Terminal {
			return Result{Terminal: true, Tag: opt.Value}, nil
		}
		return Result{Next: opt.Next}, nil
	}
	return Result{}, fmt.Errorf("%w: %q on node %q", ErrInvalidSelection, value, key)
}

// Validate checks graph closure and reachability: every option's Next
// must be Terminal or an existing node, and every node must be reachable
// from the start node. Run at startup so a broken edge fails the process
// instead of a request.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.start]; !ok {
		return fmt.Errorf("flowchart: start node %q missing", g.start)
	}

	for key, node := range g.nodes {
		if len(node.Options) == 0 {
			return fmt.Errorf("flowchart: node %q has no options", key)
		}
		for _, opt := range node.Options {
			if opt.Next == Terminal {
				continue
			}
			if _, ok := g.nodes[opt.Next]; !ok {
				return fmt.Errorf("flowchart: node %q option %q references unknown node %q", key, opt.Value, opt.Next)
			}
		}
	}

	reached := map[NodeKey]bool{g.start: true}
	queue := []NodeKey{g.start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, opt := range g.nodes[current].Options {
			if opt.Next == Terminal || reached[opt.Next] {
				continue
			}
			reached[opt.Next] = true
			queue = append(queue, opt.Next)
		}
	}
	for key := range g.nodes {
		if !reached[key] {
			return fmt.Errorf("flowchart: node %q unreachable from start", key)
		}
	}
	return nil
}

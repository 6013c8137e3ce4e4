package models

// ToolCall is a single tool invocation the planner wants executed. A
// required call failing forces a clarifier; an optional one may fail
// silently and simply leaves its fact absent.
type ToolCall struct {
	Name     string                 `json:"name"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Required bool                   `json:"required"`
}

// Plan describes how a reply should be produced: ordered tool calls to
// gather facts, plus grounding constraints. Deterministic and hybrid modes
// emit plans for diagnostics only; flagship executes them.
type Plan struct {
	Goal        string                 `json:"goal"`
	Tools       []ToolCall             `json:"tools"`
	Constraints map[string]interface{} `json:"constraints,omitempty"`
}

// NeedsClarification reports whether the planner gave up and asked for
// missing information instead of proposing tools.
func (p Plan) NeedsClarification() bool {
	v, ok := p.Constraints["needs_clarification"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

package models

// Channel is the inbound message source.
type Channel string

const (
	ChannelWeb       Channel = "web"
	ChannelMessaging Channel = "messaging"
)

// TurnRequest is one inbound customer message.
type TurnRequest struct {
	Text      string                 `json:"text"`
	SessionID string                 `json:"sessionId"`
	Channel   Channel                `json:"channel"`
	Tenant    string                 `json:"tenant"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TurnResponse is the unified outbound payload for one turn.
type TurnResponse struct {
	Reply    string                 `json:"reply"`
	Mode     string                 `json:"mode"`
	Intent   string                 `json:"intent"`
	Entities map[string]interface{} `json:"entities"`
	Facts    map[string]interface{} `json:"facts"`
}

// SessionSnapshot is the per-conversation state read at the start of a turn.
// Empty strings mean the key is absent or expired.
type SessionSnapshot struct {
	Postcode        string `json:"postcode,omitempty"`
	NearestBranchID string `json:"nearest_branch_id,omitempty"`
	LastCategory    string `json:"last_category,omitempty"`
	LastSKU         string `json:"last_sku,omitempty"`
	LastIntent      string `json:"last_intent,omitempty"`
}

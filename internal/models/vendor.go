package models

// Vendor is a remote vending point. Secret authenticates its agent callbacks.
type Vendor struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	AgentURL string `json:"agent_url"`
	Secret   string `json:"-"`
}

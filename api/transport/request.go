package transport

// LoginRequest exchanges the shared API key for an operator session.
type LoginRequest struct {
	APIKey     string `json:"api_key"`
	OperatorID string `json:"operator_id"`
	TTL        int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// ImportRequest carries one already-tabular file upload: the header row plus
// the data rows, exactly as extracted client-side.
type ImportRequest struct {
	Source  string   `json:"source"`
	Mode    string   `json:"mode"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// ResolveRequest supplies the decision for the conflict currently presented.
type ResolveRequest struct {
	Decision         string `json:"decision"`
	ApplyToRemaining bool   `json:"apply_to_remaining"`
}

type ThresholdsRequest struct {
	ActiveWithinDays int `json:"active_within_days"`
	AtRiskWithinDays int `json:"at_risk_within_days"`
}

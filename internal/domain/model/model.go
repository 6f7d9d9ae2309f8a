// Package model contains domain models passed between layers.
//
// All entities are server-owned; the client never assigns ids and compares
// them by equality only. Field tags mirror the scoring service's JSON wire
// shapes.
package model

// TeamSummary is a team as listed on the dashboard and team index.
type TeamSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url,omitempty"`
	TotalPoints int    `json:"total_points"`
}

// TeamDetail is a single team with its roster, as returned by GET /team/{id}.
type TeamDetail struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	LogoURL string   `json:"logo_url,omitempty"`
	Coach   string   `json:"coach"`
	Mentor  string   `json:"mentor"`
	Players []Player `json:"players"`
}

// Player is a roster member. Team membership is implied by the listing that
// returned it, never stored on the player itself.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Activity is a category of scoring event, e.g. "quiz" or "volunteering".
type Activity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BreakdownRow is one (activity, points) pair of a player's aggregate
// breakdown. The player's total is derived client-side, never reported.
type BreakdownRow struct {
	Activity string `json:"activity"`
	Points   int    `json:"points"`
}

// PointEntry is the write payload for recording a scoring event. Entries are
// append-only: once created they are never edited or deleted.
type PointEntry struct {
	PlayerID   string `json:"player_id"`
	ActivityID string `json:"activity_id"`
	Points     int    `json:"points"`
}

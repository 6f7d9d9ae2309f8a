// Package allocation implements the point-allocation form: a cascading
// selection across Team -> Player -> Activity -> Points, its validation
// rules, and the authenticated submission of the composed entry.
//
// The form is append-only by construction: there is no path that edits or
// deletes a recorded entry, only one that creates the next.
package allocation

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/levelup/internal/domain/model"
	"github.com/okian/levelup/pkg/logger"
	"github.com/okian/levelup/pkg/metrics"
)

// User-facing form messages. Wording is part of the UI contract.
const (
	MsgIncomplete = "Complete all fields!"
	MsgZeroPoints = "Points cannot be zero."
	MsgSaving     = "Saving..."
	MsgSuccess    = "Success! Reflected on dashboard!"
	MsgFailed     = "Error saving data, try again."
)

// Phase is the meaningful configuration of the form.
type Phase int

const (
	// PhaseEmpty: no team chosen; submission disabled.
	PhaseEmpty Phase = iota
	// PhaseTeamChosen: team set, roster fetch in flight; player disabled.
	PhaseTeamChosen
	// PhaseRosterLoaded: player options populated, draft not yet complete.
	PhaseRosterLoaded
	// PhaseReady: team, player, activity set and points non-zero.
	PhaseReady
	// PhaseSubmitting: one mutation in flight; resubmission disabled.
	PhaseSubmitting
	// PhaseSubmitted: last attempt succeeded; fields retained for repeat entry.
	PhaseSubmitted
	// PhaseFailed: last attempt failed; fields retained for retry.
	PhaseFailed
)

// String returns the phase name for logs and tests.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseTeamChosen:
		return "team_chosen"
	case PhaseRosterLoaded:
		return "roster_loaded"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RosterLister fetches the player options scoped to one team.
type RosterLister interface {
	ListPlayersForTeam(ctx context.Context, teamID string) ([]model.Player, error)
}

// EntryCreator records one point allocation against the remote service.
type EntryCreator interface {
	CreatePointEntry(ctx context.Context, playerID, activityID string, points int) error
}

// outcome tracks the result of the last submission attempt.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeSubmitted
	outcomeFailed
)

// Machine governs the dependent-dropdown flow for composing a point
// allocation. All methods are safe for concurrent use; its only writers in
// practice are the driving view and the roster-fetch goroutines it spawns.
type Machine struct {
	mu      sync.Mutex
	lister  RosterLister
	creator EntryCreator
	log     logger.Logger

	teamID     string
	playerID   string
	activityID string
	points     int

	roster     []model.Player
	activities []model.Activity

	// rosterGen tags the in-flight roster fetch. A delivery whose tag does
	// not match the current generation is stale and must be discarded.
	rosterGen     uint64
	rosterPending bool

	submitting bool
	last       outcome
	status     string
}

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithLogger sets a custom logger for the machine.
func WithLogger(log logger.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a form machine. lister fetches team rosters; creator performs
// the authenticated submission.
func New(lister RosterLister, creator EntryCreator, opts ...Option) *Machine {
	m := &Machine{
		lister:  lister,
		creator: creator,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetActivities installs the activity options. Activities are independent of
// the team cascade and are loaded once, eagerly, when the form is created.
func (m *Machine) SetActivities(activities []model.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = activities
}

// SelectTeam sets the team and starts the cascade: the player selection and
// roster are cleared and a fetch for the new team's roster begins. Activity
// and points are team-independent and survive. Passing "" returns the form
// to its empty state. The returned generation tags the fetch; deliveries
// carrying an older generation are discarded.
func (m *Machine) SelectTeam(ctx context.Context, teamID string) uint64 {
	m.mu.Lock()
	m.last = outcomeNone
	m.status = ""
	m.teamID = teamID
	m.playerID = ""
	m.roster = nil
	m.rosterGen++
	gen := m.rosterGen
	m.rosterPending = teamID != ""
	m.mu.Unlock()

	if teamID == "" || m.lister == nil {
		return gen
	}

	go func() {
		players, err := m.lister.ListPlayersForTeam(ctx, teamID)
		if err != nil {
			m.FailRoster(gen, err)
			return
		}
		m.DeliverRoster(gen, players)
	}()
	return gen
}

// DeliverRoster installs the player options fetched for generation gen.
// A mismatched generation means the team changed while the fetch was in
// flight: the response is stale and silently discarded.
func (m *Machine) DeliverRoster(gen uint64, players []model.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.rosterGen {
		metrics.RecordStaleRosterDiscarded()
		return
	}
	m.roster = players
	m.rosterPending = false
}

// FailRoster records a failed roster fetch for generation gen. The player
// options stay empty; the form remains usable and the team can be re-selected.
func (m *Machine) FailRoster(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.rosterGen {
		metrics.RecordStaleRosterDiscarded()
		return
	}
	m.roster = nil
	m.rosterPending = false
	if m.log != nil {
		m.log.Warn(context.Background(), "roster fetch failed",
			logger.String("team_id", m.teamID), logger.Error(err))
	}
}

// SelectPlayer sets the player. Only members of the currently loaded roster
// are accepted; "" clears the selection.
func (m *Machine) SelectPlayer(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = outcomeNone
	m.status = ""
	if playerID == "" {
		m.playerID = ""
		return nil
	}
	for _, p := range m.roster {
		if p.ID == playerID {
			m.playerID = playerID
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotInRoster, playerID)
}

// SelectActivity sets the activity. Only known activities are accepted;
// "" clears the selection.
func (m *Machine) SelectActivity(activityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = outcomeNone
	m.status = ""
	if activityID == "" {
		m.activityID = ""
		return nil
	}
	for _, a := range m.activities {
		if a.ID == activityID {
			m.activityID = activityID
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownActivity, activityID)
}

// SetPoints sets the point value by direct entry. Negative values are
// explicitly permitted; zero is rejected only at submission time.
func (m *Machine) SetPoints(points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = outcomeNone
	m.status = ""
	m.points = points
}

// IncrementPoints adjusts the point value by +1. It converges on the same
// field as direct entry; there is no separate validation path.
func (m *Machine) IncrementPoints() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = outcomeNone
	m.status = ""
	m.points++
}

// DecrementPoints adjusts the point value by -1.
func (m *Machine) DecrementPoints() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = outcomeNone
	m.status = ""
	m.points--
}

// Submit validates the draft and, when complete, issues one authenticated
// create-entry call. Validation failures never reach the network. The draft
// is retained on success (for repeated entry) and on failure (for retry).
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	if m.teamID == "" || m.playerID == "" || m.activityID == "" {
		m.status = MsgIncomplete
		m.mu.Unlock()
		metrics.RecordAllocation("rejected_local")
		return ErrIncomplete
	}
	if m.points == 0 {
		m.status = MsgZeroPoints
		m.mu.Unlock()
		metrics.RecordAllocation("rejected_local")
		return ErrZeroPoints
	}
	m.submitting = true
	m.last = outcomeNone
	m.status = MsgSaving
	playerID, activityID, points := m.playerID, m.activityID, m.points
	m.mu.Unlock()

	err := m.creator.CreatePointEntry(ctx, playerID, activityID, points)

	m.mu.Lock()
	m.submitting = false
	if err != nil {
		m.last = outcomeFailed
		m.status = MsgFailed
	} else {
		m.last = outcomeSubmitted
		m.status = MsgSuccess
	}
	m.mu.Unlock()

	if err != nil {
		metrics.RecordAllocation("failed")
		if m.log != nil {
			m.log.Warn(ctx, "allocation submit failed",
				logger.String("player_id", playerID),
				logger.String("activity_id", activityID),
				logger.Int("points", points),
				logger.Error(err))
		}
		return fmt.Errorf("submit allocation: %w", err)
	}
	metrics.RecordAllocation("submitted")
	return nil
}

// Phase reports the current meaningful configuration.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.submitting:
		return PhaseSubmitting
	case m.last == outcomeSubmitted:
		return PhaseSubmitted
	case m.last == outcomeFailed:
		return PhaseFailed
	case m.teamID == "":
		return PhaseEmpty
	case m.rosterPending:
		return PhaseTeamChosen
	case m.playerID != "" && m.activityID != "" && m.points != 0:
		return PhaseReady
	default:
		return PhaseRosterLoaded
	}
}

// Snapshot is an immutable copy of the form state for rendering.
type Snapshot struct {
	TeamID     string
	PlayerID   string
	ActivityID string
	Points     int
	Roster     []model.Player
	Activities []model.Activity
	Status     string
}

// Snapshot returns a copy of the current draft, options and status message.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		TeamID:     m.teamID,
		PlayerID:   m.playerID,
		ActivityID: m.activityID,
		Points:     m.points,
		Status:     m.status,
	}
	snap.Roster = append(snap.Roster, m.roster...)
	snap.Activities = append(snap.Activities, m.activities...)
	return snap
}

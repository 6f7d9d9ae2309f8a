// Package app wires the domain components into the user-facing flows:
// dashboard, team and player drill-down, authentication, and the
// point-allocation form.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/levelup/internal/adapters/gateway"
	"github.com/okian/levelup/internal/domain/aggregate"
	"github.com/okian/levelup/internal/domain/allocation"
	"github.com/okian/levelup/internal/domain/model"
	"github.com/okian/levelup/internal/domain/session"
	"github.com/okian/levelup/pkg/logger"
	"github.com/okian/levelup/pkg/metrics"
)

// User-facing messages. Wording is part of the UI contract.
const (
	MsgMissingCredentials = "Please enter username and password"
	MsgLoginFailed        = "Login failed"
	MsgMustLogin          = "Please log in as admin to access CRUD features."
)

// Gateway is the remote-service contract the views consume. The gateway
// client implements it; tests fabricate it.
type Gateway interface {
	ListTeams(ctx context.Context) ([]model.TeamSummary, error)
	ListTeamsWithTotals(ctx context.Context) ([]model.TeamSummary, error)
	GetTeamDetail(ctx context.Context, teamID string) (model.TeamDetail, error)
	GetPlayerBreakdown(ctx context.Context, playerID string) ([]model.BreakdownRow, error)
	ListActivities(ctx context.Context) ([]model.Activity, error)
	ListPlayersForTeam(ctx context.Context, teamID string) ([]model.Player, error)
	Login(ctx context.Context, username, password string) (session.Session, error)
	CreatePointEntry(ctx context.Context, playerID, activityID string, points int) error
}

// Service orchestrates the gateway, session holder and domain logic for the
// views.
type Service struct {
	gw     Gateway
	holder *session.Holder
	log    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the view service.
func New(gw Gateway, holder *session.Holder, opts ...Option) *Service {
	s := &Service{gw: gw, holder: holder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TeamCard is a team summary with its negative-styling flag, as rendered on
// the dashboard and team index.
type TeamCard struct {
	model.TeamSummary
	Negative bool
}

// Dashboard returns the aggregate standings. GET /dashboard.
func (s *Service) Dashboard(ctx context.Context) ([]TeamCard, error) {
	teams, err := s.gw.ListTeamsWithTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return cards(teams), nil
}

// Teams returns the team index for drill-down.
func (s *Service) Teams(ctx context.Context) ([]TeamCard, error) {
	teams, err := s.gw.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	return cards(teams), nil
}

func cards(teams []model.TeamSummary) []TeamCard {
	out := make([]TeamCard, len(teams))
	for i, t := range teams {
		out[i] = TeamCard{TeamSummary: t, Negative: t.TotalPoints < 0}
	}
	return out
}

// TeamDetail returns one team with its roster.
func (s *Service) TeamDetail(ctx context.Context, teamID string) (model.TeamDetail, error) {
	team, err := s.gw.GetTeamDetail(ctx, teamID)
	if err != nil {
		return model.TeamDetail{}, fmt.Errorf("load team %s: %w", teamID, err)
	}
	return team, nil
}

// PlayerView is a player's breakdown with the client-derived total.
type PlayerView struct {
	Rows  []model.BreakdownRow
	Total aggregate.Total
}

// PlayerDetail returns a player's activity breakdown. The total is always
// recomputed from the rows, never taken from elsewhere.
func (s *Service) PlayerDetail(ctx context.Context, playerID string) (PlayerView, error) {
	rows, err := s.gw.GetPlayerBreakdown(ctx, playerID)
	if err != nil {
		return PlayerView{}, fmt.Errorf("load player %s: %w", playerID, err)
	}
	return PlayerView{Rows: rows, Total: aggregate.SumBreakdown(rows)}, nil
}

// Login authenticates the operator. Empty inputs short-circuit locally with
// ErrMissingCredentials and touch neither the network nor an existing
// session. A failed attempt clears any session, active or persisted,
// unconditionally.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	sess, err := s.gw.Login(ctx, username, password)
	if err != nil {
		s.holder.Clear(ctx)
		metrics.RecordLogin("failure")
		if s.log != nil {
			s.log.Warn(ctx, "login failed", logger.String("username", username), logger.Error(err))
		}
		return err
	}

	if err := s.holder.Adopt(ctx, sess); err != nil {
		s.holder.Clear(ctx)
		metrics.RecordLogin("failure")
		return fmt.Errorf("adopt session: %w", err)
	}
	metrics.RecordLogin("success")
	if s.log != nil {
		s.log.Info(ctx, "logged in", logger.String("username", sess.Username))
	}
	return nil
}

// LoginMessage maps a login error to its user-facing message: the server's
// reported reason when one was given, a generic failure otherwise.
func LoginMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredentials):
		return MsgMissingCredentials
	case errors.Is(err, gateway.ErrLoginFailed):
		return err.Error()
	default:
		return MsgLoginFailed
	}
}

// Logout clears the session unconditionally and returns the application to
// its unauthenticated default view.
func (s *Service) Logout(ctx context.Context) {
	s.holder.Clear(ctx)
	if s.log != nil {
		s.log.Info(ctx, "logged out")
	}
}

// CurrentUser reports the authenticated operator, if any.
func (s *Service) CurrentUser() (string, bool) {
	sess, ok := s.holder.Current()
	return sess.Username, ok
}

// NewAllocationForm creates a wired allocation form for the authenticated
// operator. Without a session it returns ErrNotLoggedIn; the view renders
// MsgMustLogin instead of an empty form. Activities are loaded eagerly; if
// that load fails the form is still returned alongside the error, with empty
// activity options, and stays otherwise interactive.
func (s *Service) NewAllocationForm(ctx context.Context) (*allocation.Machine, error) {
	if _, ok := s.holder.Current(); !ok {
		return nil, ErrNotLoggedIn
	}

	opts := []allocation.Option{}
	if s.log != nil {
		opts = append(opts, allocation.WithLogger(s.log.Named("allocation")))
	}
	m := allocation.New(s.gw, s.gw, opts...)

	activities, err := s.gw.ListActivities(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Warn(ctx, "failed to load activities", logger.Error(err))
		}
		return m, fmt.Errorf("load activities: %w", err)
	}
	m.SetActivities(activities)
	return m, nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/levelup/internal/adapters/gateway"
	"github.com/okian/levelup/internal/adapters/sessionstore"
	"github.com/okian/levelup/internal/app"
	"github.com/okian/levelup/internal/config"
	"github.com/okian/levelup/internal/domain/allocation"
	"github.com/okian/levelup/internal/domain/session"
	"github.com/okian/levelup/pkg/logger"
	"github.com/okian/levelup/pkg/metrics"
)

// Metrics server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus exposition.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	// Session persistence and restore.
	store, err := sessionstore.Open(ctx, cfg.SessionDBPath)
	if err != nil {
		log.Error(ctx, "failed to open session store", logger.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	holder := session.NewHolder(store, session.WithLogger(log.Named("session")))
	holder.Restore(ctx)

	gw := gateway.New(cfg.APIBaseURL,
		gateway.WithTimeout(cfg.HTTPTimeout()),
		gateway.WithTokenSource(holder),
		gateway.WithLogger(log.Named("gateway")),
	)

	svc := app.New(gw, holder, app.WithLogger(log.Named("app")))

	r := &repl{svc: svc, out: os.Stdout, log: log}
	r.banner()
	r.run(ctx, os.Stdin)
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}

// repl drives the tabbed views of the scoring app over stdin/stdout.
type repl struct {
	svc  *app.Service
	form *allocation.Machine
	out  io.Writer
	log  logger.Logger
}

func (r *repl) banner() {
	fmt.Fprintln(r.out, "Level Up — team scoring")
	fmt.Fprintln(r.out, `Commands: dashboard | teams | team <id> | player <id> | login <user> <pass> | logout | alloc ... | quit`)
}

func (r *repl) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		if r.execute(ctx, scanner.Text()) {
			return
		}
	}
}

// execute runs one command line; it returns true when the loop should quit.
func (r *repl) execute(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "quit", "exit":
		return true
	case "dashboard":
		r.showDashboard(ctx)
	case "teams":
		r.showTeams(ctx)
	case "team":
		if len(args) < 2 {
			fmt.Fprintln(r.out, "usage: team <id>")
			return false
		}
		r.showTeam(ctx, args[1])
	case "player":
		if len(args) < 2 {
			fmt.Fprintln(r.out, "usage: player <id>")
			return false
		}
		r.showPlayer(ctx, args[1])
	case "login":
		user, pass := "", ""
		if len(args) > 1 {
			user = args[1]
		}
		if len(args) > 2 {
			pass = args[2]
		}
		if err := r.svc.Login(ctx, user, pass); err != nil {
			fmt.Fprintln(r.out, app.LoginMessage(err))
			r.form = nil
			return false
		}
		fmt.Fprintln(r.out, "Logged in.")
	case "logout":
		r.svc.Logout(ctx)
		r.form = nil
		fmt.Fprintln(r.out, "Logged out.")
	case "alloc":
		r.allocate(ctx, args[1:])
	default:
		fmt.Fprintf(r.out, "unknown command: %s\n", args[0])
	}
	return false
}

func (r *repl) showDashboard(ctx context.Context) {
	cards, err := r.svc.Dashboard(ctx)
	if err != nil {
		fmt.Fprintln(r.out, "Dashboard unavailable, try again.")
		return
	}
	fmt.Fprintln(r.out, "Dashboard")
	for _, c := range cards {
		fmt.Fprintf(r.out, "  %-20s %s\n", c.Name, formatPoints(c.TotalPoints, c.Negative))
	}
}

func (r *repl) showTeams(ctx context.Context) {
	cards, err := r.svc.Teams(ctx)
	if err != nil {
		fmt.Fprintln(r.out, "Teams unavailable, try again.")
		return
	}
	fmt.Fprintln(r.out, "Teams")
	for _, c := range cards {
		fmt.Fprintf(r.out, "  [%s] %-20s %s\n", c.ID, c.Name, formatPoints(c.TotalPoints, c.Negative))
	}
}

func (r *repl) showTeam(ctx context.Context, teamID string) {
	team, err := r.svc.TeamDetail(ctx, teamID)
	if err != nil {
		fmt.Fprintln(r.out, "Team unavailable, try again.")
		return
	}
	fmt.Fprintf(r.out, "%s\n  Coach: %s\n  Mentor: %s\n  Players:\n", team.Name, team.Coach, team.Mentor)
	for _, p := range team.Players {
		fmt.Fprintf(r.out, "    [%s] %s\n", p.ID, p.Name)
	}
}

func (r *repl) showPlayer(ctx context.Context, playerID string) {
	view, err := r.svc.PlayerDetail(ctx, playerID)
	if err != nil {
		fmt.Fprintln(r.out, "Player unavailable, try again.")
		return
	}
	fmt.Fprintln(r.out, "Activity breakdown")
	for _, row := range view.Rows {
		fmt.Fprintf(r.out, "  %-20s %d\n", row.Activity, row.Points)
	}
	fmt.Fprintf(r.out, "  Total Points: %s\n", formatPoints(view.Total.Points, view.Total.Negative))
}

// allocate drives the point-allocation form.
func (r *repl) allocate(ctx context.Context, args []string) {
	if r.form == nil {
		form, err := r.svc.NewAllocationForm(ctx)
		if err != nil {
			if form == nil {
				fmt.Fprintln(r.out, app.MsgMustLogin)
				return
			}
			// Form gated OK but activities failed to load; still usable.
			fmt.Fprintln(r.out, "Activities unavailable, try again.")
		}
		r.form = form
	}

	if len(args) == 0 {
		r.showForm()
		return
	}

	switch args[0] {
	case "team":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		r.form.SelectTeam(ctx, id)
	case "player":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		if err := r.form.SelectPlayer(id); err != nil {
			fmt.Fprintln(r.out, "Pick a player from the selected team.")
		}
	case "activity":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		if err := r.form.SelectActivity(id); err != nil {
			fmt.Fprintln(r.out, "Pick a listed activity.")
		}
	case "points":
		if len(args) < 2 {
			fmt.Fprintln(r.out, "usage: alloc points <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			// Fractional or non-numeric input is rejected, not rounded.
			fmt.Fprintln(r.out, "Points must be a whole number.")
			return
		}
		r.form.SetPoints(n)
	case "+":
		r.form.IncrementPoints()
	case "-":
		r.form.DecrementPoints()
	case "submit":
		_ = r.form.Submit(ctx)
		fmt.Fprintln(r.out, r.form.Snapshot().Status)
	case "show":
		r.showForm()
	default:
		fmt.Fprintf(r.out, "unknown alloc command: %s\n", args[0])
	}
}

func (r *repl) showForm() {
	snap := r.form.Snapshot()
	fmt.Fprintf(r.out, "Allocate Points  [team=%s player=%s activity=%s points=%d]\n",
		orDash(snap.TeamID), orDash(snap.PlayerID), orDash(snap.ActivityID), snap.Points)
	if len(snap.Roster) > 0 {
		fmt.Fprintln(r.out, "  Players:")
		for _, p := range snap.Roster {
			fmt.Fprintf(r.out, "    [%s] %s\n", p.ID, p.Name)
		}
	}
	if len(snap.Activities) > 0 {
		fmt.Fprintln(r.out, "  Activities:")
		for _, a := range snap.Activities {
			fmt.Fprintf(r.out, "    [%s] %s\n", a.ID, a.Name)
		}
	}
	if snap.Status != "" {
		fmt.Fprintln(r.out, "  "+snap.Status)
	}
}

// formatPoints renders a total with its negative marker.
func formatPoints(points int, negative bool) string {
	if negative {
		return fmt.Sprintf("%d (down)", points)
	}
	return strconv.Itoa(points)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

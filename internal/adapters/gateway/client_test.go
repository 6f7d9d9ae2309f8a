package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/okian/levelup/internal/adapters/gateway"
	. "github.com/smartystreets/goconvey/convey"
)

// staticTokens is a fabricated credential source.
type staticTokens struct {
	token string
}

func (s *staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

func TestClientReads(t *testing.T) {
	Convey("Given a scoring service with reference data", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		mux.HandleFunc("GET /teams", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"t1","name":"Blue","total_points":12},{"id":"t2","name":"Red","total_points":-4}]`))
		})
		mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"t1","name":"Blue","logo_url":"http://x/l.png","total_points":12}]`))
		})
		mux.HandleFunc("GET /team/t1", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"t1","name":"Blue","coach":"Ann","mentor":"Raj","players":[{"id":"p1","name":"Mira"}]}`))
		})
		mux.HandleFunc("GET /player/p1", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"activity":"quiz","points":5},{"activity":"helping","points":-8}]`))
		})
		mux.HandleFunc("GET /activities", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"a1","name":"quiz"}]`))
		})
		mux.HandleFunc("GET /players/team/t1", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id":"p1","name":"Mira"}]`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := gateway.New(srv.URL)

		Convey("When listing teams", func() {
			teams, err := client.ListTeams(ctx)

			Convey("Then all teams decode with signed totals", func() {
				So(err, ShouldBeNil)
				So(teams, ShouldHaveLength, 2)
				So(teams[0].Name, ShouldEqual, "Blue")
				So(teams[1].TotalPoints, ShouldEqual, -4)
			})
		})

		Convey("When fetching the dashboard", func() {
			teams, err := client.ListTeamsWithTotals(ctx)

			Convey("Then logo and totals come through", func() {
				So(err, ShouldBeNil)
				So(teams, ShouldHaveLength, 1)
				So(teams[0].LogoURL, ShouldEqual, "http://x/l.png")
			})
		})

		Convey("When drilling into a team", func() {
			team, err := client.GetTeamDetail(ctx, "t1")

			Convey("Then the roster is present", func() {
				So(err, ShouldBeNil)
				So(team.Coach, ShouldEqual, "Ann")
				So(team.Players, ShouldHaveLength, 1)
				So(team.Players[0].ID, ShouldEqual, "p1")
			})
		})

		Convey("When fetching a player breakdown", func() {
			rows, err := client.GetPlayerBreakdown(ctx, "p1")

			Convey("Then rows keep their server order", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Activity, ShouldEqual, "quiz")
				So(rows[1].Points, ShouldEqual, -8)
			})
		})

		Convey("When listing a team's players", func() {
			players, err := client.ListPlayersForTeam(ctx, "t1")

			Convey("Then the scoped roster is returned", func() {
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 1)
			})
		})
	})
}

func TestClientErrorClassification(t *testing.T) {
	Convey("Given a scoring service that fails", t, func() {
		ctx := context.Background()

		Convey("When the server returns 500", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			_, err := gateway.New(srv.URL).ListTeams(ctx)

			Convey("Then the error is a server error", func() {
				So(errors.Is(err, gateway.ErrServer), ShouldBeTrue)
			})
		})

		Convey("When the server is unreachable", func() {
			_, err := gateway.New("http://127.0.0.1:1").ListTeams(ctx)

			Convey("Then the error is a transport error", func() {
				So(errors.Is(err, gateway.ErrTransport), ShouldBeTrue)
			})
		})

		Convey("When the payload is not the expected JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"not":"a list"}`))
			}))
			defer srv.Close()

			_, err := gateway.New(srv.URL).ListTeams(ctx)

			Convey("Then the error is a server error", func() {
				So(errors.Is(err, gateway.ErrServer), ShouldBeTrue)
			})
		})
	})
}

func TestClientCreatePointEntry(t *testing.T) {
	Convey("Given an authenticated gateway client", t, func() {
		ctx := context.Background()
		var gotAuth atomic.Value
		var requests atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			gotAuth.Store(r.Header.Get("Authorization"))

			var entry struct {
				PlayerID   string `json:"player_id"`
				ActivityID string `json:"activity_id"`
				Points     int    `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"bad payload"}`))
				return
			}

			switch r.Header.Get("Authorization") {
			case "Bearer good-token":
				w.WriteHeader(http.StatusCreated)
			case "Bearer stale-token":
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"token expired"}`))
			default:
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"unknown player"}`))
			}
		}))
		defer srv.Close()

		Convey("When submitting with a valid session", func() {
			client := gateway.New(srv.URL, gateway.WithTokenSource(&staticTokens{token: "good-token"}))
			err := client.CreatePointEntry(ctx, "p1", "a1", -3)

			Convey("Then the bearer credential is attached and the call succeeds", func() {
				So(err, ShouldBeNil)
				So(gotAuth.Load(), ShouldEqual, "Bearer good-token")
			})
		})

		Convey("When the credential is rejected", func() {
			client := gateway.New(srv.URL, gateway.WithTokenSource(&staticTokens{token: "stale-token"}))
			err := client.CreatePointEntry(ctx, "p1", "a1", 3)

			Convey("Then the error is an authorization error", func() {
				So(errors.Is(err, gateway.ErrUnauthorized), ShouldBeTrue)
			})
		})

		Convey("When the server rejects the payload", func() {
			client := gateway.New(srv.URL, gateway.WithTokenSource(&staticTokens{token: "other"}))
			err := client.CreatePointEntry(ctx, "missing", "a1", 3)

			Convey("Then the error is a validation rejection carrying the reason", func() {
				So(errors.Is(err, gateway.ErrRejected), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "unknown player")
			})
		})

		Convey("When no session is present", func() {
			client := gateway.New(srv.URL, gateway.WithTokenSource(&staticTokens{}))
			err := client.CreatePointEntry(ctx, "p1", "a1", 3)

			Convey("Then it fails locally without contacting the server", func() {
				So(errors.Is(err, gateway.ErrUnauthorized), ShouldBeTrue)
				So(requests.Load(), ShouldEqual, 0)
			})
		})
	})
}

func TestClientLogin(t *testing.T) {
	Convey("Given the login endpoint", t, func() {
		ctx := context.Background()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var creds struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			if creds.Username == "admin" && creds.Password == "s3cret" {
				_, _ = w.Write([]byte(`{"username":"admin","token":"tok-9"}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
		}))
		defer srv.Close()

		client := gateway.New(srv.URL)

		Convey("When logging in with valid credentials", func() {
			sess, err := client.Login(ctx, "admin", "s3cret")

			Convey("Then a complete session is issued", func() {
				So(err, ShouldBeNil)
				So(sess.Username, ShouldEqual, "admin")
				So(sess.Token, ShouldEqual, "tok-9")
				So(sess.Valid(), ShouldBeTrue)
			})
		})

		Convey("When credentials are rejected", func() {
			_, err := client.Login(ctx, "admin", "wrong")

			Convey("Then the error carries the server-reported reason", func() {
				So(errors.Is(err, gateway.ErrLoginFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "invalid credentials")
			})
		})
	})
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/Base-InfoFi/Backend/internal/app"
	"github.com/Base-InfoFi/Backend/internal/adapters/repository"
	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// keywordOracle scores content by keyword so handler tests stay
// deterministic without a network oracle.
type keywordOracle struct{}

func (keywordOracle) Evaluate(ctx context.Context, req oracle.Request) (oracle.Verdict, error) {
	if strings.Contains(strings.ToLower(req.Content), "spam") {
		return oracle.Verdict{
			InformationScore: 1, RelevanceScore: 1, InsightScore: 1,
			SpamLikelihood: 0.95, Label: model.LabelShitposting,
			Reasons: []string{"engagement farming"},
		}, nil
	}
	return oracle.Verdict{
		InformationScore: 8, RelevanceScore: 7, InsightScore: 7,
		SpamLikelihood: 0.05, Label: model.LabelGood,
		Reasons: []string{"substantive analysis"},
	}, nil
}

func (keywordOracle) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	return "## Summary\nreport body\n", nil
}

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()

	svc := service.New(
		service.WithStore(repository.NewMemStore()),
		service.WithOracleClient(keywordOracle{}),
		service.WithWorkerCount(2),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	NewServer(svc).Register(context.Background(), mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, svc
}

func postJSON(ts *httptest.Server, path string, body any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, nil, err
	}
	return resp, buf.Bytes(), nil
}

func getJSON(ts *httptest.Server, path string) (*http.Response, []byte, error) {
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, nil, err
	}
	return resp, buf.Bytes(), nil
}

func TestProjectRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("When a project is created", func() {
			resp, body, err := postJSON(ts, "/projects", map[string]string{
				"name":           "Base Protocol",
				"contextSummary": "an Ethereum L2",
			})

			Convey("Then it is returned with a derived slug", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)

				var project model.Project
				So(json.Unmarshal(body, &project), ShouldBeNil)
				So(project.Slug, ShouldEqual, "base-protocol")
				So(project.ID, ShouldNotBeEmpty)
			})

			Convey("Then it appears in the listing and by slug", func() {
				So(err, ShouldBeNil)

				resp, body, err := getJSON(ts, "/projects")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var projects []model.Project
				So(json.Unmarshal(body, &projects), ShouldBeNil)
				So(len(projects), ShouldEqual, 1)

				resp, body, err = getJSON(ts, "/projects/base-protocol")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var project model.Project
				So(json.Unmarshal(body, &project), ShouldBeNil)
				So(project.Name, ShouldEqual, "Base Protocol")
			})

			Convey("Then a duplicate slug is rejected with 409", func() {
				So(err, ShouldBeNil)
				resp, _, err := postJSON(ts, "/projects", map[string]string{"name": "Base Protocol"})
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When a missing project is requested", func() {
			resp, _, err := getJSON(ts, "/projects/nope")

			Convey("Then the API answers 404", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the create payload is invalid", func() {
			resp, _, err := postJSON(ts, "/projects", map[string]string{"name": ""})

			Convey("Then the API answers 400", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When project info is generated", func() {
			resp, _, err := postJSON(ts, "/projects", map[string]string{"name": "Base", "slug": "base"})
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			resp, body, err := postJSON(ts, "/projects/base/generate-info", nil)

			Convey("Then the project comes back with an oracle-written summary", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var project model.Project
				So(json.Unmarshal(body, &project), ShouldBeNil)
				So(project.ContextSummary, ShouldContainSubstring, "report body")
			})

			Convey("Then a GET on the same path answers 404", func() {
				So(err, ShouldBeNil)
				resp, _, err := getJSON(ts, "/projects/base/generate-info")
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When info is generated for a missing project", func() {
			resp, _, err := postJSON(ts, "/projects/nope/generate-info", nil)

			Convey("Then the API answers 404", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPostRoutes(t *testing.T) {
	Convey("Given a server with one project", t, func() {
		ts, _ := newTestServer(t)
		resp, _, err := postJSON(ts, "/projects", map[string]string{"name": "Base", "slug": "base"})
		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusCreated)

		submit := map[string]any{
			"projectSlug": "base",
			"wallet":      "0xabc",
			"handle":      "alice",
			"content":     "thorough sequencer deep dive",
		}

		Convey("When a post is submitted synchronously", func() {
			resp, body, err := postJSON(ts, "/posts", submit)

			Convey("Then the evaluation comes back scored", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var ev service.Evaluation
				So(json.Unmarshal(body, &ev), ShouldBeNil)
				So(ev.Judgment.Label, ShouldEqual, model.LabelGood)
				So(ev.Judgment.Reward, ShouldBeGreaterThan, 0)
				So(ev.Ledger.NetScore, ShouldEqual, ev.Judgment.Reward)
			})

			Convey("Then the post is readable with its judgment", func() {
				So(err, ShouldBeNil)
				var ev service.Evaluation
				So(json.Unmarshal(body, &ev), ShouldBeNil)

				resp, body, err := getJSON(ts, "/posts/"+ev.Content.ID)
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var post postResponse
				So(json.Unmarshal(body, &post), ShouldBeNil)
				So(post.Judgment, ShouldNotBeNil)
				So(post.Judgment.ID, ShouldEqual, ev.Judgment.ID)
			})
		})

		Convey("When a post is submitted asynchronously", func() {
			resp, body, err := postJSON(ts, "/posts/async", submit)

			Convey("Then the API acknowledges with 202", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

				var ack asyncAckResponse
				So(json.Unmarshal(body, &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Content.ID, ShouldNotBeEmpty)
			})
		})

		Convey("When the submission misses required fields", func() {
			resp, _, err := postJSON(ts, "/posts", map[string]string{"projectSlug": "base"})

			Convey("Then the API answers 400", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the project is unknown", func() {
			bad := map[string]any{"projectSlug": "nope", "handle": "alice", "content": "hi"}
			resp, _, err := postJSON(ts, "/posts", bad)

			Convey("Then the API answers 404", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a missing post id is requested", func() {
			resp, _, err := getJSON(ts, "/posts/does-not-exist")

			Convey("Then the API answers 404", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestBatchAndLeaderboardRoutes(t *testing.T) {
	Convey("Given a server with judged and unjudged content", t, func() {
		ts, svc := newTestServer(t)
		ctx := context.Background()

		resp, _, err := postJSON(ts, "/projects", map[string]string{"name": "Base", "slug": "base"})
		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusCreated)

		for i, content := range []string{"alpha analysis", "spam giveaway", "beta analysis"} {
			_, _, err := postJSON(ts, "/posts", map[string]any{
				"projectSlug": "base",
				"handle":      fmt.Sprintf("user%d", i),
				"content":     content,
			})
			So(err, ShouldBeNil)
		}

		Convey("When the unjudged listing is read", func() {
			resp, body, err := getJSON(ts, "/posts?limit=10")

			Convey("Then nothing is pending", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var items []model.ContentItem
				So(json.Unmarshal(body, &items), ShouldBeNil)
				So(len(items), ShouldEqual, 0)
			})
		})

		Convey("When a batch run is triggered", func() {
			resp, body, err := postJSON(ts, "/batch", map[string]any{"maxItems": 10})

			Convey("Then it reports an empty scan", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var result service.BatchResult
				So(json.Unmarshal(body, &result), ShouldBeNil)
				So(result.Scanned, ShouldEqual, 0)
			})
		})

		Convey("When the project leaderboard is read", func() {
			resp, body, err := getJSON(ts, "/leaderboard?range=all")

			Convey("Then ranked projects come back", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rows []leaderboard.ProjectRow
				So(json.Unmarshal(body, &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].PostCount, ShouldEqual, 3)
			})
		})

		Convey("When the user leaderboard is read", func() {
			resp, body, err := getJSON(ts, "/projects/base/leaderboard?range=7d&limit=2")

			Convey("Then at most limit rows come back, ranked", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rows []leaderboard.UserRow
				So(json.Unmarshal(body, &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].NetScore, ShouldBeGreaterThanOrEqualTo, rows[1].NetScore)
			})
		})

		Convey("When an invalid range is requested", func() {
			resp, _, err := getJSON(ts, "/leaderboard?range=fortnight")

			Convey("Then the API answers 400", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a ledger entry is read", func() {
			rows, err := svc.UserLeaderboard(ctx, "base", leaderboard.RangeAll, 0)
			So(err, ShouldBeNil)
			So(len(rows), ShouldBeGreaterThan, 0)

			resp, body, err := getJSON(ts, "/projects/base/ledger/"+rows[0].UserID)

			Convey("Then it matches the leaderboard", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var entry model.LedgerEntry
				So(json.Unmarshal(body, &entry), ShouldBeNil)
				So(entry.NetScore, ShouldEqual, rows[0].NetScore)
			})
		})

		Convey("When a report is requested", func() {
			resp, body, err := getJSON(ts, "/projects/base/report")

			Convey("Then stats and narrative come back", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, "report body")
			})
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts, _ := newTestServer(t)

		Convey("When /stats is read", func() {
			resp, body, err := getJSON(ts, "/stats")

			Convey("Then service statistics come back", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var stats map[string]any
				So(json.Unmarshal(body, &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When /healthz is scraped", func() {
			resp, body, err := getJSON(ts, "/healthz")

			Convey("Then Prometheus metrics come back", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, "infofi_reputation")
			})
		})
	})
}

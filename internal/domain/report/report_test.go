package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/oracle"
	"github.com/Base-InfoFi/Backend/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type fakeClient struct {
	completion  string
	completeErr error

	gotSystem      string
	gotUser        string
	gotTemperature float64
	gotMaxTokens   int
}

func (f *fakeClient) Evaluate(ctx context.Context, req oracle.Request) (oracle.Verdict, error) {
	return oracle.Verdict{}, errors.New("not used")
}

func (f *fakeClient) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	f.gotSystem = system
	f.gotUser = user
	f.gotTemperature = temperature
	f.gotMaxTokens = maxTokens
	return f.completion, f.completeErr
}

func TestSummarize(t *testing.T) {
	Convey("Given a mixed set of judgments", t, func() {
		judgments := []model.Judgment{
			{Label: model.LabelGood, InformationScore: 8, InsightScore: 6, Reward: 7},
			{Label: model.LabelGood, InformationScore: 6, InsightScore: 4, Reward: 5},
			{Label: model.LabelShitposting, InformationScore: 1, InsightScore: 1, Slash: 9},
			{Label: model.LabelBorderline, InformationScore: 5, InsightScore: 5, Reward: 2, Slash: 1},
		}

		Convey("When summarized", func() {
			stats := Summarize(judgments)

			Convey("Then counts and averages are correct", func() {
				So(stats.Total, ShouldEqual, 4)
				So(stats.GoodCount, ShouldEqual, 2)
				So(stats.ShitpostCount, ShouldEqual, 1)
				So(stats.BorderlineCount, ShouldEqual, 1)
				So(stats.AvgInformation, ShouldEqual, 5.0)
				So(stats.AvgInsight, ShouldEqual, 4.0)
				So(stats.TotalReward, ShouldEqual, 14)
				So(stats.TotalSlash, ShouldEqual, 10)
			})
		})

		Convey("When the set is empty", func() {
			stats := Summarize(nil)

			Convey("Then everything is zero", func() {
				So(stats.Total, ShouldEqual, 0)
				So(stats.AvgInformation, ShouldEqual, 0.0)
			})
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator with a fake oracle", t, func() {
		ctx := context.Background()
		client := &fakeClient{completion: "## Summary\nhealthy discussion\n"}
		gen := NewGenerator(client)
		project := model.Project{ID: "p1", Name: "Base", Slug: "base", ContextSummary: "an L2"}
		judgments := []model.Judgment{
			{Label: model.LabelGood, InformationScore: 8, InsightScore: 7, Reward: 6,
				Reasons: []string{"detailed protocol analysis", "cites sources"}},
			{Label: model.LabelShitposting, InformationScore: 1, InsightScore: 1, Slash: 8,
				Reasons: []string{"pure engagement farming", "detailed protocol analysis"}},
		}

		Convey("When a report is generated", func() {
			rep, err := gen.Generate(ctx, project, judgments)

			Convey("Then stats and narrative are filled", func() {
				So(err, ShouldBeNil)
				So(rep.ProjectSlug, ShouldEqual, "base")
				So(rep.Stats.Total, ShouldEqual, 2)
				So(rep.Narrative, ShouldStartWith, "## Summary")
			})

			Convey("Then the oracle was called at the narrative temperature", func() {
				So(err, ShouldBeNil)
				So(client.gotTemperature, ShouldEqual, oracle.TemperatureNarrative)
				So(client.gotMaxTokens, ShouldEqual, narrativeMaxTokens)
			})

			Convey("Then the prompt carries the stats and deduplicated reasons", func() {
				So(err, ShouldBeNil)
				So(client.gotUser, ShouldContainSubstring, "Posts analyzed: 2")
				So(client.gotUser, ShouldContainSubstring, "an L2")
				So(client.gotUser, ShouldContainSubstring, "pure engagement farming")
				So(strings.Count(client.gotUser, "detailed protocol analysis"), ShouldEqual, 1)
			})
		})

		Convey("When no judgments exist", func() {
			_, err := gen.Generate(ctx, project, nil)

			Convey("Then ErrNoData is returned", func() {
				So(err, ShouldEqual, ErrNoData)
			})
		})

		Convey("When the oracle fails", func() {
			client.completeErr = errors.New("boom")
			_, err := gen.Generate(ctx, project, judgments)

			Convey("Then the error propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

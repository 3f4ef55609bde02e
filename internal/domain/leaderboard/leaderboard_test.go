package leaderboard_test

import (
	"testing"
	"time"

	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func post(project, user string, label model.Label, reward, slash int) leaderboard.JudgedPost {
	return leaderboard.JudgedPost{
		ProjectID:   project,
		ProjectSlug: project,
		ProjectName: project,
		UserID:      user,
		Label:       label,
		Reward:      reward,
		Slash:       slash,
		PostedAt:    time.Now(),
	}
}

func TestParseTimeRange(t *testing.T) {
	Convey("Given time range query values", t, func() {
		Convey("Then known ranges parse", func() {
			for in, want := range map[string]leaderboard.TimeRange{
				"":    leaderboard.RangeAll,
				"all": leaderboard.RangeAll,
				"24h": leaderboard.Range24h,
				"7d":  leaderboard.Range7d,
			} {
				got, ok := leaderboard.ParseTimeRange(in)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then unknown ranges are rejected", func() {
			_, ok := leaderboard.ParseTimeRange("30d")
			So(ok, ShouldBeFalse)
		})

		Convey("Then Since reflects the window", func() {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			since, bounded := leaderboard.Range24h.Since(now)
			So(bounded, ShouldBeTrue)
			So(since, ShouldEqual, now.Add(-24*time.Hour))

			since, bounded = leaderboard.Range7d.Since(now)
			So(bounded, ShouldBeTrue)
			So(since, ShouldEqual, now.Add(-7*24*time.Hour))

			_, bounded = leaderboard.RangeAll.Since(now)
			So(bounded, ShouldBeFalse)
		})
	})
}

func TestRankProjects(t *testing.T) {
	Convey("Given judged posts across projects", t, func() {
		posts := []leaderboard.JudgedPost{
			post("alpha", "u1", model.LabelGood, 9, 0),
			post("alpha", "u2", model.LabelGood, 6, 0),
			post("alpha", "u3", model.LabelShitposting, 0, 5),
			post("beta", "u1", model.LabelGood, 5, 0),
			post("gamma", "u4", model.LabelShitposting, 0, 8),
		}

		Convey("When ranking projects", func() {
			rows := leaderboard.RankProjects(posts)

			Convey("Then per-project sums and counts are right", func() {
				So(rows, ShouldHaveLength, 3)
				// alpha: net 10, beta: net 5, gamma: net -8
				So(rows[0].ProjectID, ShouldEqual, "alpha")
				So(rows[0].NetScore, ShouldEqual, 10)
				So(rows[0].PostCount, ShouldEqual, 3)
				So(rows[0].GoodCount, ShouldEqual, 2)
				So(rows[0].ShitCount, ShouldEqual, 1)
				So(rows[1].ProjectID, ShouldEqual, "beta")
				So(rows[2].ProjectID, ShouldEqual, "gamma")
			})

			Convey("Then shares are fractions of the positive net total", func() {
				// positive total = 10 + 5 = 15
				So(rows[0].CurrentShare, ShouldAlmostEqual, 10.0/15.0)
				So(rows[1].CurrentShare, ShouldAlmostEqual, 5.0/15.0)
				So(rows[2].CurrentShare, ShouldBeLessThanOrEqualTo, 0)

				sum := 0.0
				for _, r := range rows {
					if r.NetScore > 0 {
						sum += r.CurrentShare
					}
				}
				So(sum, ShouldAlmostEqual, 1.0)
			})

			Convey("Then ranks are assigned in order", func() {
				for i, r := range rows {
					So(r.Rank, ShouldEqual, i+1)
				}
			})
		})

		Convey("When every project has non-positive net score", func() {
			rows := leaderboard.RankProjects([]leaderboard.JudgedPost{
				post("alpha", "u1", model.LabelShitposting, 0, 3),
				post("beta", "u2", model.LabelBorderline, 1, 1),
			})

			Convey("Then shares are zero instead of dividing by zero", func() {
				for _, r := range rows {
					So(r.CurrentShare, ShouldEqual, 0)
				}
			})
		})

		Convey("When there are no posts", func() {
			Convey("Then the ranking is empty, not an error", func() {
				So(leaderboard.RankProjects(nil), ShouldBeEmpty)
			})
		})
	})
}

func TestRankUsers(t *testing.T) {
	Convey("Given ledger snapshots and windowed posts", t, func() {
		snapshots := []leaderboard.LedgerSnapshot{
			{UserID: "u1", ProjectID: "alpha", ProjectSlug: "alpha", TotalReward: 30, TotalSlash: 5, NetScore: 25},
			{UserID: "u2", ProjectID: "alpha", ProjectSlug: "alpha", TotalReward: 12, TotalSlash: 0, NetScore: 12},
			{UserID: "u3", ProjectID: "alpha", ProjectSlug: "alpha", TotalReward: 2, TotalSlash: 9, NetScore: -7},
		}
		posts := []leaderboard.JudgedPost{
			post("alpha", "u2", model.LabelGood, 6, 0),
			post("alpha", "u2", model.LabelShitposting, 0, 2),
		}

		Convey("When ranking users", func() {
			rows := leaderboard.RankUsers(snapshots, posts)

			Convey("Then ordering follows raw net score", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[0].UserID, ShouldEqual, "u1")
				So(rows[1].UserID, ShouldEqual, "u2")
				So(rows[2].UserID, ShouldEqual, "u3")
			})

			Convey("Then window counts only cover supplied posts", func() {
				So(rows[0].WindowPosts, ShouldEqual, 0)
				So(rows[1].WindowPosts, ShouldEqual, 2)
				So(rows[1].WindowGood, ShouldEqual, 1)
				So(rows[1].WindowShit, ShouldEqual, 1)
			})

			Convey("Then users without window posts keep their history", func() {
				So(rows[0].NetScore, ShouldEqual, 25)
				So(rows[0].TotalReward, ShouldEqual, 30)
			})
		})

		Convey("When both inputs are empty", func() {
			Convey("Then the ranking is empty, not an error", func() {
				So(leaderboard.RankUsers(nil, nil), ShouldBeEmpty)
			})
		})
	})
}

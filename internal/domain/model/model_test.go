package model_test

import (
	"testing"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeLabel(t *testing.T) {
	Convey("Given oracle label strings", t, func() {
		Convey("When the label is a known value in any case", func() {
			cases := map[string]model.Label{
				"good":        model.LabelGood,
				"GOOD":        model.LabelGood,
				" Good ":      model.LabelGood,
				"shitposting": model.LabelShitposting,
				"SHITPOSTING": model.LabelShitposting,
				"borderline":  model.LabelBorderline,
				"Borderline":  model.LabelBorderline,
			}

			Convey("Then it should normalize to the canonical form", func() {
				for in, want := range cases {
					got, ok := model.NormalizeLabel(in)
					So(ok, ShouldBeTrue)
					So(got, ShouldEqual, want)
				}
			})
		})

		Convey("When the label is unknown or empty", func() {
			for _, in := range []string{"", "spam", "excellent", "good-ish"} {
				_, ok := model.NormalizeLabel(in)

				Convey("Then it should be rejected: "+in, func() {
					So(ok, ShouldBeFalse)
				})
			}
		})
	})
}

func TestJudgmentNetDelta(t *testing.T) {
	Convey("Given judgments with reward and slash points", t, func() {
		Convey("Then the net delta is reward minus slash", func() {
			So(model.Judgment{Reward: 9, Slash: 0}.NetDelta(), ShouldEqual, 9)
			So(model.Judgment{Reward: 0, Slash: 10}.NetDelta(), ShouldEqual, -10)
			So(model.Judgment{Reward: 3, Slash: 1}.NetDelta(), ShouldEqual, 2)
			So(model.Judgment{}.NetDelta(), ShouldEqual, 0)
		})
	})
}

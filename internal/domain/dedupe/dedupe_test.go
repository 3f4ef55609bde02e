package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Base-InfoFi/Backend/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryClaimer(t *testing.T) {
	Convey("Given a fresh claim guard", t, func() {
		ctx := context.Background()
		claimer := dedupe.NewInMemoryClaimer()

		Convey("When claiming a new id", func() {
			ok := claimer.TryClaim(ctx, "content-1")

			Convey("Then the claim should be acquired", func() {
				So(ok, ShouldBeTrue)
				So(claimer.Size(), ShouldEqual, 1)
			})

			Convey("And a second claim on the same id should be refused", func() {
				So(claimer.TryClaim(ctx, "content-1"), ShouldBeFalse)
			})

			Convey("And after release the id can be claimed again", func() {
				claimer.Release(ctx, "content-1")
				So(claimer.Size(), ShouldEqual, 0)
				So(claimer.TryClaim(ctx, "content-1"), ShouldBeTrue)
			})
		})

		Convey("When releasing an id that was never claimed", func() {
			Convey("Then it should be a no-op", func() {
				So(func() { claimer.Release(ctx, "ghost") }, ShouldNotPanic)
				So(claimer.Size(), ShouldEqual, 0)
			})
		})

		Convey("When many goroutines race for the same id", func() {
			racer := dedupe.NewInMemoryClaimer()
			var wins atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if racer.TryClaim(ctx, "hot-item") {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one goroutine should win", func() {
				So(wins.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the concurrent claim cap is reached", func() {
			capped := dedupe.NewInMemoryClaimer(dedupe.WithMaxClaims(3))
			for i := 0; i < 3; i++ {
				So(capped.TryClaim(ctx, fmt.Sprintf("c-%d", i)), ShouldBeTrue)
			}

			Convey("Then further claims are refused until a release", func() {
				So(capped.TryClaim(ctx, "c-overflow"), ShouldBeFalse)
				capped.Release(ctx, "c-0")
				So(capped.TryClaim(ctx, "c-overflow"), ShouldBeTrue)
			})
		})
	})
}

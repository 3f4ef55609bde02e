package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/Base-InfoFi/Backend/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, key := range []string{
			"INFOFI_CONFIG", "INFOFI_ADDR", "INFOFI_STORE",
			"INFOFI_DATABASE_URL", "INFOFI_ORACLE_MODEL", "INFOFI_BATCH_MAX_ITEMS",
		} {
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.Store, ShouldEqual, "memory")
				So(cfg.OracleModel, ShouldEqual, "qwen3-30b-a3b-instruct-2507")
				So(cfg.BatchMaxItems, ShouldEqual, 10)
				So(cfg.BatchDelayMS, ShouldEqual, 500)
			})
		})

		Convey("When overriding via environment", func() {
			So(os.Setenv("INFOFI_ADDR", ":7070"), ShouldBeNil)
			So(os.Setenv("INFOFI_ORACLE_MODEL", "qwen3-8b"), ShouldBeNil)
			So(os.Setenv("INFOFI_BATCH_MAX_ITEMS", "25"), ShouldBeNil)
			defer func() {
				_ = os.Unsetenv("INFOFI_ADDR")
				_ = os.Unsetenv("INFOFI_ORACLE_MODEL")
				_ = os.Unsetenv("INFOFI_BATCH_MAX_ITEMS")
			}()

			cfg, err := config.Load(context.Background())

			Convey("Then env values should win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.OracleModel, ShouldEqual, "qwen3-8b")
				So(cfg.BatchMaxItems, ShouldEqual, 25)
			})
		})

		Convey("When selecting the postgres store without a DSN", func() {
			So(os.Setenv("INFOFI_STORE", "postgres"), ShouldBeNil)
			defer func() { _ = os.Unsetenv("INFOFI_STORE") }()

			_, err := config.Load(context.Background())

			Convey("Then loading should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When selecting an unknown store backend", func() {
			So(os.Setenv("INFOFI_STORE", "dynamo"), ShouldBeNil)
			defer func() { _ = os.Unsetenv("INFOFI_STORE") }()

			_, err := config.Load(context.Background())

			Convey("Then loading should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/careerstandings/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxBots, convey.ShouldEqual, 80)
			convey.So(cfg.Quintiles, convey.ShouldEqual, 5)
			convey.So(cfg.FieldSize, convey.ShouldEqual, 50)
			convey.So(cfg.DefaultBotRating, convey.ShouldEqual, 900)
			convey.So(cfg.StageEvents, convey.ShouldResemble, []int{13, 14, 15})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the event table matches the season calendar", func() {
			convey.So(len(cfg.Events), convey.ShouldEqual, 16)
			convey.So(cfg.Events[0].MaxPoints, convey.ShouldEqual, 65)
			convey.So(cfg.Events[2].Elimination, convey.ShouldBeTrue)
			convey.So(cfg.EventName(8), convey.ShouldEqual, "The Grand Gilbert Fondo")
			convey.So(cfg.EventName(77), convey.ShouldEqual, "Event 77")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When quintiles exceed max_bots", func() {
			cfg.MaxBots = 4
			err := cfg.Validate()

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an event is configured twice", func() {
			cfg.Events = append(cfg.Events, config.EventConfig{Number: 1, MaxPoints: 10})
			err := cfg.Validate()

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "event 1 configured twice")
			})
		})

		convey.Convey("When an event has no points", func() {
			cfg.Events = []config.EventConfig{{Number: 5}}
			err := cfg.Validate()

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When field size is zero", func() {
			cfg.FieldSize = 0

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}

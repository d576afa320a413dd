package gc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/careerstandings/internal/domain/gc"
	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/simulation"
	. "github.com/smartystreets/goconvey/convey"
)

func finish(id string, pos model.Position, secs float64) model.EventResult {
	return model.EventResult{ParticipantID: id, DisplayName: "Rider " + id, FinishPosition: pos, TimeSeconds: secs}
}

func botFinish(id string, rating int, pos model.Position, secs float64) model.EventResult {
	r := finish(id, pos, secs)
	r.Rating = rating
	r.IsSimulated = true
	return r
}

func stageRace() model.EventResults {
	return model.EventResults{
		13: {
			finish("h1", 1, 1000),
			finish("h2", 3, 1100),
			botFinish("Bot-A", 1450, 2, 1050),
			finish("h3", model.DNF, 0),
			finish("h4", 4, 1200),
		},
		14: {
			finish("h2", 1, 1900),
			finish("h1", 2, 2000),
			finish("h3", 3, 2500),
		},
		15: {
			botFinish("Bot-A", 1450, 1, 2500),
			finish("h1", 2, 3000),
			finish("h2", 3, 3050),
			finish("h4", 4, 3100),
		},
	}
}

// simulatedStage14 mirrors the interpolation for Bot-A on stage 14, whose
// three finishers ran 1900, 2000 and 2500 seconds.
func simulatedStage14() float64 {
	pos := simulation.SimulatePosition("Bot-A", 1450, 14, 3)
	return 2000 + 500*float64(pos-1)/3
}

func TestCalculator_Calculate(t *testing.T) {
	Convey("Given a three stage race", t, func() {
		ctx := context.Background()
		calc := gc.NewCalculator(gc.WithDNSRate(0))

		Convey("When classifying after the final stage", func() {
			cls, err := calc.Calculate(ctx, stageRace(), 15)
			So(err, ShouldBeNil)

			Convey("Then only riders with every stage classify", func() {
				So(cls.Provisional, ShouldBeFalse)
				So(cls.Stages, ShouldResemble, []int{13, 14, 15})
				So(len(cls.Standings), ShouldEqual, 3)
				_, ok := cls.Lookup("h3")
				So(ok, ShouldBeFalse)
				_, ok = cls.Lookup("h4")
				So(ok, ShouldBeFalse)
			})

			Convey("Then the bot's missing stage is interpolated", func() {
				a, ok := cls.Lookup("Bot-A")
				So(ok, ShouldBeTrue)
				So(a.Position, ShouldEqual, 1)
				So(a.CumulativeSeconds, ShouldAlmostEqual, 1050+simulatedStage14()+2500, 1e-9)
				So(a.ActualStages, ShouldEqual, 2)
				So(a.Stages[1].Simulated, ShouldBeTrue)
			})

			Convey("Then riders are ordered by time with gaps to the leader", func() {
				So(cls.Standings[1].ParticipantID, ShouldEqual, "h1")
				So(cls.Standings[1].CumulativeSeconds, ShouldEqual, 6000)
				So(cls.Standings[2].ParticipantID, ShouldEqual, "h2")
				So(cls.Standings[0].GapSeconds, ShouldEqual, 0)
				So(cls.Standings[2].GapSeconds, ShouldAlmostEqual, 6050-cls.Standings[0].CumulativeSeconds, 1e-9)
			})

			Convey("Then the podium earns bonus points", func() {
				So(cls.BonusPoints("Bot-A"), ShouldEqual, 50)
				So(cls.BonusPoints("h1"), ShouldEqual, 35)
				So(cls.BonusPoints("h2"), ShouldEqual, 25)
				So(cls.BonusPoints("h3"), ShouldEqual, 0)
			})
		})

		Convey("When classifying mid-race", func() {
			cls, err := calc.Calculate(ctx, stageRace(), 14)
			So(err, ShouldBeNil)

			Convey("Then the table is provisional and pays no bonus", func() {
				So(cls.Provisional, ShouldBeTrue)
				So(cls.Stages, ShouldResemble, []int{13, 14})
				So(cls.BonusPoints(cls.Standings[0].ParticipantID), ShouldEqual, 0)
			})

			Convey("Then tied times keep discovery order", func() {
				So(cls.Standings[0].ParticipantID, ShouldEqual, "h1")
				So(cls.Standings[1].ParticipantID, ShouldEqual, "h2")
				So(cls.Standings[2].ParticipantID, ShouldEqual, "Bot-A")
			})
		})

		Convey("When a later stage has no results yet", func() {
			results := stageRace()
			delete(results, 15)
			cls, err := calc.Calculate(ctx, results, 15)
			So(err, ShouldBeNil)

			Convey("Then bots are simulated against the fallback field", func() {
				So(len(cls.Standings), ShouldEqual, 1)
				a := cls.Standings[0]
				So(a.Stages[2].Seconds, ShouldBeBetweenOrEqual, 3600, 4000)
			})
		})

		Convey("When the bot is drawn to not start", func() {
			cls, err := gc.NewCalculator(gc.WithDNSRate(1)).Calculate(ctx, stageRace(), 15)

			Convey("Then it leaves the classification", func() {
				So(err, ShouldBeNil)
				_, ok := cls.Lookup("Bot-A")
				So(ok, ShouldBeFalse)
				So(cls.BonusPoints("h1"), ShouldEqual, 50)
			})
		})

		Convey("When no stage has results", func() {
			_, err := calc.Calculate(ctx, stageRace(), 12)
			So(errors.Is(err, gc.ErrNoStageResults), ShouldBeTrue)

			_, err = calc.Calculate(ctx, model.EventResults{1: {finish("h1", 1, 10)}}, 15)
			So(errors.Is(err, gc.ErrNoStageResults), ShouldBeTrue)
		})

		Convey("When custom stages are configured", func() {
			custom := gc.NewCalculator(gc.WithStages(1, 2), gc.WithDNSRate(0))
			cls, err := custom.Calculate(ctx, model.EventResults{
				1: {finish("h1", 1, 10), finish("h2", 2, 12)},
				2: {finish("h1", 2, 20), finish("h2", 1, 15)},
			}, 2)

			Convey("Then they are used instead of the defaults", func() {
				So(err, ShouldBeNil)
				So(custom.Stages(), ShouldResemble, []int{1, 2})
				So(cls.Standings[0].ParticipantID, ShouldEqual, "h2")
				So(cls.Standings[1].GapSeconds, ShouldEqual, 3)
			})
		})
	})
}

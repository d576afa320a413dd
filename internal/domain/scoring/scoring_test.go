package scoring_test

import (
	"testing"

	"github.com/okian/careerstandings/internal/domain/model"
	scoring "github.com/okian/careerstandings/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func seasonProfiles() []scoring.Profile {
	maxPoints := map[int]int{
		1: 65, 2: 95, 3: 50, 4: 50, 5: 80, 6: 50, 7: 70, 8: 185,
		9: 85, 10: 70, 11: 60, 12: 145, 13: 120, 14: 95, 15: 135, 102: 40,
	}
	out := make([]scoring.Profile, 0, len(maxPoints))
	for n, m := range maxPoints {
		out = append(out, scoring.Profile{EventNumber: n, MaxPoints: m, Elimination: n == 3})
	}
	return out
}

func points(c *scoring.Calculator, pos, event int) int {
	return c.Calculate(model.Position(pos), event).Points
}

func TestCalculator_Calculate(t *testing.T) {
	Convey("Given a calculator with the season profile table", t, func() {
		calc := scoring.NewCalculator(scoring.WithProfiles(seasonProfiles()...))

		Convey("When a rider wins event 1", func() {
			res := calc.Calculate(1, 1)

			Convey("Then the base and podium bonus are folded into points", func() {
				So(res.Points, ShouldEqual, 65)
				So(res.BonusPoints, ShouldEqual, 0)
			})
		})

		Convey("When a rider finishes 40th in event 1", func() {
			Convey("Then half points round up", func() {
				So(points(calc, 40, 1), ShouldEqual, 33)
			})
		})

		Convey("When a rider did not finish", func() {
			Convey("Then nothing is awarded in any event", func() {
				for _, e := range []int{1, 3, 8, 99} {
					So(calc.Calculate(model.DNF, e), ShouldResemble, scoring.Result{})
				}
			})
		})

		Convey("When a rider finishes 5th in the elimination race", func() {
			Convey("Then the elimination curve applies", func() {
				So(points(calc, 5, 3), ShouldEqual, 38)
			})
		})

		Convey("When scoring the position grid", func() {
			positions := []int{1, 2, 3, 4, 5, 10, 20, 21, 39, 40, 41}
			grid := map[int][]int{
				1:   {65, 62, 61, 58, 57, 54, 47, 46, 33, 33, 0},
				2:   {95, 92, 90, 87, 86, 80, 69, 68, 49, 48, 0},
				3:   {50, 46, 43, 39, 38, 28, 10, 0, 0, 0, 0},
				8:   {185, 181, 178, 173, 171, 160, 137, 135, 95, 93, 0},
				102: {40, 38, 36, 34, 33, 32, 28, 27, 20, 20, 0},
				99:  {100, 98, 96, 94, 92, 82, 62, 60, 24, 22, 20},
			}

			Convey("Then every value matches the published table", func() {
				for event, want := range grid {
					for i, pos := range positions {
						So(points(calc, pos, event), ShouldEqual, want[i])
					}
				}
			})
		})

		Convey("When positions pass the cutoffs", func() {
			Convey("Then standard events pay nothing past 40", func() {
				So(points(calc, 41, 1), ShouldEqual, 0)
				So(points(calc, 41, 8), ShouldEqual, 0)
			})

			Convey("And the elimination race pays nothing past 20", func() {
				So(points(calc, 21, 3), ShouldEqual, 0)
			})

			Convey("And the fallback curve bottoms out at zero", func() {
				So(points(calc, 51, 99), ShouldEqual, 0)
				So(points(calc, 200, 99), ShouldEqual, 0)
			})
		})

		Convey("When walking a standard event from 1st to 40th", func() {
			Convey("Then points never increase", func() {
				for _, event := range calc.Events() {
					prof, _ := calc.Profile(event)
					if prof.Elimination {
						continue
					}
					prev := points(calc, 1, event)
					for p := 2; p <= 40; p++ {
						cur := points(calc, p, event)
						So(cur, ShouldBeLessThanOrEqualTo, prev)
						prev = cur
					}
				}
			})
		})

		Convey("When calculating twice", func() {
			Convey("Then results are identical", func() {
				So(calc.Calculate(7, 12), ShouldResemble, calc.Calculate(7, 12))
			})
		})

		Convey("When checking configuration", func() {
			Convey("Then only table events are configured", func() {
				So(calc.Configured(3), ShouldBeTrue)
				So(calc.Configured(99), ShouldBeFalse)
				So(len(calc.Events()), ShouldEqual, 16)
				So(calc.Events()[0], ShouldEqual, 1)
			})
		})
	})
}

func TestCalculator_Profiles(t *testing.T) {
	Convey("Given profile injection", t, func() {
		Convey("When no table is supplied", func() {
			calc := scoring.NewCalculator()

			Convey("Then every event uses the fallback curve", func() {
				So(points(calc, 1, 1), ShouldEqual, 100)
				So(points(calc, 5, 3), ShouldEqual, 92)
			})
		})

		Convey("When the elimination flag is set on another event", func() {
			calc := scoring.NewCalculator(scoring.WithProfiles(
				scoring.Profile{EventNumber: 3, MaxPoints: 50},
				scoring.Profile{EventNumber: 21, MaxPoints: 50, Elimination: true},
			))

			Convey("Then the flag, not the number, selects the curve", func() {
				So(points(calc, 5, 21), ShouldEqual, 38)
				So(points(calc, 21, 21), ShouldEqual, 0)
				So(points(calc, 21, 3), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When a profile has no max points", func() {
			calc := scoring.NewCalculator(scoring.WithProfiles(scoring.Profile{EventNumber: 4}))

			Convey("Then it is ignored", func() {
				So(calc.Configured(4), ShouldBeFalse)
			})
		})
	})
}

func TestCalculator_Prediction(t *testing.T) {
	Convey("Given a calculator with the season profile table", t, func() {
		calc := scoring.NewCalculator(scoring.WithProfiles(seasonProfiles()...))

		Convey("When a rider beats the prediction", func() {
			cases := []struct{ pos, predicted, bonus int }{
				{1, 10, 5},
				{3, 10, 4},
				{5, 10, 3},
				{7, 10, 2},
				{9, 10, 1},
				{10, 10, 0},
				{12, 10, 0},
			}

			Convey("Then the bonus follows the places beaten", func() {
				for _, tc := range cases {
					base := calc.Calculate(model.Position(tc.pos), 2)
					res := calc.CalculateWithPrediction(model.Position(tc.pos), 2, tc.predicted)
					So(res.BonusPoints, ShouldEqual, tc.bonus)
					So(res.Points, ShouldEqual, base.Points+tc.bonus)
				}
			})
		})

		Convey("When there is no prediction or no finish", func() {
			Convey("Then no bonus is added", func() {
				So(calc.CalculateWithPrediction(4, 2, 0).BonusPoints, ShouldEqual, 0)
				So(calc.CalculateWithPrediction(model.DNF, 2, 30), ShouldResemble, scoring.Result{})
			})
		})
	})
}

func TestPredictedPosition(t *testing.T) {
	Convey("Given an event field with event ratings", t, func() {
		field := []model.EventResult{
			{ParticipantID: "a", EventRating: 900, FinishPosition: 3},
			{ParticipantID: "b", EventRating: 1200, FinishPosition: 4},
			{ParticipantID: "c", FinishPosition: 1},
			{ParticipantID: "x", EventRating: 2000, FinishPosition: model.DNF},
			{ParticipantID: "d", EventRating: 900, FinishPosition: 2},
		}

		Convey("Then riders are ranked by rating, ties in field order", func() {
			p, ok := scoring.PredictedPosition(field, "b")
			So(ok, ShouldBeTrue)
			So(p, ShouldEqual, 1)

			p, _ = scoring.PredictedPosition(field, "a")
			So(p, ShouldEqual, 2)

			p, _ = scoring.PredictedPosition(field, "d")
			So(p, ShouldEqual, 3)
		})

		Convey("Then unrated, unfinished and unknown riders have no prediction", func() {
			_, ok := scoring.PredictedPosition(field, "c")
			So(ok, ShouldBeFalse)
			_, ok = scoring.PredictedPosition(field, "x")
			So(ok, ShouldBeFalse)
			_, ok = scoring.PredictedPosition(field, "zz")
			So(ok, ShouldBeFalse)
		})
	})
}

package scoring

import (
	"sort"

	"github.com/okian/careerstandings/internal/domain/model"
)

// predictionBonus maps places beaten to bonus points, best first.
var predictionBonus = [...]struct{ beaten, bonus int }{
	{9, 5}, {7, 4}, {5, 3}, {3, 2}, {1, 1},
}

// CalculateWithPrediction scores a finish and adds the bonus for beating the
// predicted position. The bonus is included in Points and reported in
// BonusPoints. Standings totals use Calculate, never this.
func (c *Calculator) CalculateWithPrediction(position model.Position, eventNumber, predicted int) Result {
	res := c.Calculate(position, eventNumber)
	if position.IsDNF() || predicted <= 0 {
		return res
	}
	beaten := predicted - position.Int()
	for _, b := range predictionBonus {
		if beaten >= b.beaten {
			res.Points += b.bonus
			res.BonusPoints = b.bonus
			break
		}
	}
	return res
}

// PredictedPosition ranks the event's finishers by EventRating, highest first,
// and returns the participant's place in that ranking. DNFs and rows without
// an event rating are not ranked.
func PredictedPosition(results []model.EventResult, participantID string) (int, bool) {
	rated := make([]model.EventResult, 0, len(results))
	for _, r := range results {
		if r.Finished() && r.EventRating > 0 {
			rated = append(rated, r)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].EventRating > rated[j].EventRating })
	for i, r := range rated {
		if r.ParticipantID == participantID {
			return i + 1, true
		}
	}
	return 0, false
}

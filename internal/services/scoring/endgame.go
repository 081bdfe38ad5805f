package scoring

import (
	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/model"
)

// Standing is one side's position when a game ends
type Standing struct {
	ID    string
	Score int
	Rack  model.Rack
}

// SettleRackOut applies the going-out adjustment: the side at out gains every
// other side's rack value and each of those sides loses its own
func SettleRackOut(standings []Standing, out int) {
	for i := range standings {
		if i == out {
			continue
		}
		v := standings[i].Rack.Value()
		standings[out].Score += v
		standings[i].Score -= v
	}
}

// SettlePasses deducts each side's remaining rack value from its own score
func SettlePasses(standings []Standing) {
	for i := range standings {
		standings[i].Score -= standings[i].Rack.Value()
	}
}

// DetermineWinner returns the id of the highest score, or empty string on a tie
func DetermineWinner(standings []Standing) string {
	if len(standings) == 0 {
		return ""
	}
	best := lo.MaxBy(standings, func(a, b Standing) bool { return a.Score > b.Score })
	ties := lo.CountBy(standings, func(s Standing) bool { return s.Score == best.Score })
	if ties > 1 {
		return ""
	}
	return best.ID
}

// Package lottery supplies the draw results behind the lottery-ball scene:
// a JSON results API client, a sqlite cache of past draws, and a Source that
// chains them so the scene always has numbers to show.
package lottery

import (
	"errors"
	"fmt"
)

// MaxBall is the highest ball number in the drum (classic 6-of-49 game).
const MaxBall = 49

// ErrNoDraws reports an empty draw cache.
var ErrNoDraws = errors.New("no cached draws")

// Draw is one drawing: six main numbers plus the bonus ball.
type Draw struct {
	Date    string `json:"date"` // ISO 8601 day, sorts chronologically as text
	Numbers [6]int `json:"numbers"`
	Bonus   int    `json:"bonus"`
}

// Validate rejects draws the scene cannot show: missing date, balls outside
// [1, MaxBall], or a main number drawn twice.
func (d Draw) Validate() error {
	if d.Date == "" {
		return errors.New("draw has no date")
	}
	var seen [MaxBall + 1]bool
	for _, n := range d.Numbers {
		if n < 1 || n > MaxBall {
			return fmt.Errorf("ball %d out of range", n)
		}
		if seen[n] {
			return fmt.Errorf("ball %d drawn twice", n)
		}
		seen[n] = true
	}
	if d.Bonus < 1 || d.Bonus > MaxBall {
		return fmt.Errorf("bonus ball %d out of range", d.Bonus)
	}
	return nil
}

// DemoDraw is the built-in result shown when both the API and the cache come
// up empty.
func DemoDraw() Draw {
	return Draw{
		Date:    "2024-01-06",
		Numbers: [6]int{7, 12, 23, 31, 38, 44},
		Bonus:   9,
	}
}

// Origin says where a draw came from; the scene overlay shows it next to the
// date.
type Origin int

const (
	OriginAPI Origin = iota
	OriginCache
	OriginDemo
)

func (o Origin) String() string {
	switch o {
	case OriginAPI:
		return "live"
	case OriginCache:
		return "cached"
	default:
		return "demo"
	}
}

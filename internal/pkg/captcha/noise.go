package captcha

import (
	"math/rand/v2"

	"github.com/ds124wfegd/dynimage/internal/entity"
)

// ConfettiDivisor splits the larger image side into the maximum noise
// ellipse extent. Smaller divisors mean bigger blots.
func ConfettiDivisor(d entity.Difficulty) int {
	switch d {
	case entity.DifficultyHard:
		return 30
	case entity.DifficultyAlmostImpossible:
		return 20
	default:
		return 50
	}
}

// MinGradientDisplacement keeps the wave visible on small images, as far
// as the vertical slack allows.
const MinGradientDisplacement = 2

// GradientDisplacement scales the largest vertical wave amplitude that keeps
// the text inside the image.
func GradientDisplacement(maxDist int, d entity.Difficulty) int {
	var dist int
	switch d {
	case entity.DifficultyHard:
		dist = maxDist / 2
	case entity.DifficultyAlmostImpossible:
		dist = maxDist
	default:
		dist = maxDist / 3
	}
	return max(dist, min(maxDist, MinGradientDisplacement))
}

func HoleMultiplier(d entity.Difficulty) int {
	switch d {
	case entity.DifficultyHard:
		return 2
	case entity.DifficultyAlmostImpossible:
		return 4
	default:
		return 1
	}
}

// HoleCount returns k*textLen plus up to textLen-1 extra holes.
func HoleCount(rng *rand.Rand, d entity.Difficulty, textLen int) int {
	return HoleMultiplier(d)*textLen + intn(rng, textLen)
}

func intn(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.IntN(n)
}

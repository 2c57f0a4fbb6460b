package worker

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	backoffBase = 2 * time.Second
	backoffCap  = 5 * time.Minute
)

// ExponentialBackoff returns the delay before retry number attempt+1:
// 2s, 4s, 8s ... capped at five minutes, plus up to 250ms of jitter.
func ExponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(backoffBase) * multiple)

	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}

	// small jitter to avoid thundering herd
	delay += time.Duration(rand.IntN(250)) * time.Millisecond
	return delay
}

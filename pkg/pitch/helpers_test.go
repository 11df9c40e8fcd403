package pitch

import (
	"math/rand"
)

// tiledBuffer repeats a deterministic random pattern of the given period
func tiledBuffer(period, length int, seed int64) Buffer {
	rng := rand.New(rand.NewSource(seed))
	pattern := make([]Sample, period)
	for i := range pattern {
		pattern[i] = Sample(rng.Intn(256) - 128)
	}

	buf := make(Buffer, length)
	for i := range buf {
		buf[i] = pattern[i%period]
	}
	return buf
}

func randomBuffer(length int, seed int64) Buffer {
	rng := rand.New(rand.NewSource(seed))
	buf := make(Buffer, length)
	for i := range buf {
		buf[i] = Sample(rng.Intn(256) - 128)
	}
	return buf
}

// exactWindowError is the unpruned reference sum
func exactWindowError(buf Buffer, offset int, phase Phase, window int, metric ErrorMetric) Error {
	var sum Error
	for i := 0; i < window; i++ {
		sum += metric(buf[offset+i], buf[offset+i+int(phase)])
	}
	return sum
}

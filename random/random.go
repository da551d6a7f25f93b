// Package random implements the simulator's seedable deterministic RNG and
// the distribution descriptors used to sample network latency.
package random

import (
	"math"
	"math/rand"

	dtime "github.com/kshprenger/dscale/time"
)

// Seed is the integer seed a Randomizer is constructed from. Two Randomizers
// built from the same Seed and drawn from in the same order produce the same
// sequence of samples (spec §8 invariant 7, determinism).
type Seed int64

// Kind identifies which shape of distribution a Distribution value carries.
type Kind int

const (
	// Uniform samples a nonnegative integer uniformly from [Low, High].
	Uniform Kind = iota
	// Normal samples from a normal distribution with the given mean and
	// standard deviation, clamped to nonnegative and rounded to the
	// nearest integer.
	Normal
	// Bernoulli yields Value with probability P, else zero.
	Bernoulli
)

// Distribution is one of Uniform(a,b), Normal(mu,sigma) or Bernoulli(p,v),
// each yielding a nonnegative integer Jiffies sample (spec §3).
type Distribution struct {
	Kind Kind

	Low  dtime.Jiffies // Uniform
	High dtime.Jiffies // Uniform

	Mean   dtime.Jiffies // Normal
	StdDev dtime.Jiffies // Normal

	P     float64       // Bernoulli
	Value dtime.Jiffies // Bernoulli
}

// UniformDistribution builds a Distribution sampling uniformly from [low, high].
func UniformDistribution(low, high dtime.Jiffies) Distribution {
	return Distribution{Kind: Uniform, Low: low, High: high}
}

// NormalDistribution builds a Distribution sampling from Normal(mean, stdDev).
func NormalDistribution(mean, stdDev dtime.Jiffies) Distribution {
	return Distribution{Kind: Normal, Mean: mean, StdDev: stdDev}
}

// BernoulliDistribution builds a Distribution yielding value with probability p.
func BernoulliDistribution(p float64, value dtime.Jiffies) Distribution {
	return Distribution{Kind: Bernoulli, P: p, Value: value}
}

// Randomizer is a seedable deterministic source of Jiffies samples and
// uniform picks from a slice, backing both latency sampling (network) and
// send_random_from_pool / per-participant randomness (access).
type Randomizer struct {
	rnd *rand.Rand
}

// New constructs a Randomizer seeded deterministically from seed.
func New(seed Seed) *Randomizer {
	return &Randomizer{rnd: rand.New(rand.NewSource(int64(seed)))}
}

// Sample draws a nonnegative Jiffies value from the given distribution.
func (r *Randomizer) Sample(d Distribution) dtime.Jiffies {
	switch d.Kind {
	case Uniform:
		if d.High < d.Low {
			panic("random: Uniform distribution has High < Low")
		}
		span := int64(d.High-d.Low) + 1
		return d.Low + dtime.Jiffies(r.rnd.Int63n(span))
	case Bernoulli:
		if r.rnd.Float64() < d.P {
			return d.Value
		}
		return 0
	case Normal:
		sample := float64(d.Mean) + r.rnd.NormFloat64()*float64(d.StdDev)
		if sample < 0 {
			sample = 0
		}
		return dtime.Jiffies(math.Round(sample))
	default:
		panic("random: unknown distribution kind")
	}
}

// ChooseFromSlice returns a uniformly random element of from. It panics if
// from is empty.
func (r *Randomizer) ChooseFromSlice(from []int) int {
	if len(from) == 0 {
		panic("random: choosing from an empty slice")
	}
	return from[r.rnd.Intn(len(from))]
}

// Derive builds a new, independent Randomizer seeded deterministically from
// this one combined with salt, the way the original source derives a
// per-participant seed as base_seed + participant_id "to prevent resonance
// between participants" sharing one global seed (original_source
// global/configuration.rs).
func (r *Randomizer) Derive(salt int64) *Randomizer {
	return New(Seed(r.rnd.Int63() + salt))
}

package random

import (
	"testing"

	dtime "github.com/kshprenger/dscale/time"
)

func TestRandomizer_UniformWithinBounds(t *testing.T) {
	r := New(1)
	d := UniformDistribution(10, 20)
	for i := 0; i < 1000; i++ {
		v := r.Sample(d)
		if v < 10 || v > 20 {
			t.Fatalf("uniform sample %d out of bounds [10, 20]", v)
		}
	}
}

func TestRandomizer_UniformSinglePoint(t *testing.T) {
	r := New(1)
	d := UniformDistribution(7, 7)
	for i := 0; i < 10; i++ {
		if v := r.Sample(d); v != 7 {
			t.Fatalf("expected constant 7, got %d", v)
		}
	}
}

func TestRandomizer_BernoulliOnlyEitherZeroOrValue(t *testing.T) {
	r := New(2)
	d := BernoulliDistribution(0.5, 99)
	for i := 0; i < 1000; i++ {
		v := r.Sample(d)
		if v != 0 && v != 99 {
			t.Fatalf("bernoulli sample %d neither 0 nor 99", v)
		}
	}
}

func TestRandomizer_BernoulliAlwaysZero(t *testing.T) {
	r := New(3)
	d := BernoulliDistribution(0, 42)
	for i := 0; i < 100; i++ {
		if v := r.Sample(d); v != 0 {
			t.Fatalf("expected always 0 with p=0, got %d", v)
		}
	}
}

func TestRandomizer_NormalNeverNegative(t *testing.T) {
	r := New(4)
	d := NormalDistribution(5, 50)
	for i := 0; i < 1000; i++ {
		if v := r.Sample(d); v < 0 {
			t.Fatalf("normal sample %d is negative", v)
		}
	}
}

func TestRandomizer_SameSeedSameSequence(t *testing.T) {
	d := UniformDistribution(0, 1_000_000)
	a := New(123)
	b := New(123)
	for i := 0; i < 100; i++ {
		va := a.Sample(d)
		vb := b.Sample(d)
		if va != vb {
			t.Fatalf("sequence diverged at index %d: %d != %d", i, va, vb)
		}
	}
}

func TestRandomizer_DifferentSeedsLikelyDiverge(t *testing.T) {
	d := UniformDistribution(0, 1_000_000_000)
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.Sample(d) != b.Sample(d) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected distinct seeds to diverge within 20 samples")
	}
}

func TestRandomizer_ChooseFromSlice(t *testing.T) {
	r := New(5)
	choices := []int{1, 2, 3, 4, 5}
	for i := 0; i < 100; i++ {
		v := r.ChooseFromSlice(choices)
		found := false
		for _, c := range choices {
			if c == v {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("choice %d not among candidates", v)
		}
	}
}

func TestRandomizer_ChooseFromSlicePanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic choosing from an empty slice")
		}
	}()
	r := New(6)
	r.ChooseFromSlice(nil)
}

func TestRandomizer_DeriveIsDeterministic(t *testing.T) {
	a := New(10)
	b := New(10)
	da := a.Derive(3)
	db := b.Derive(3)
	d := UniformDistribution(0, 1_000_000)
	for i := 0; i < 50; i++ {
		if da.Sample(d) != db.Sample(d) {
			t.Fatalf("derived randomizers diverged at index %d", i)
		}
	}
}

func TestRandomizer_UniformPanicsOnInvertedBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic with High < Low")
		}
	}()
	r := New(7)
	r.Sample(Distribution{Kind: Uniform, Low: dtime.Jiffies(10), High: dtime.Jiffies(5)})
}

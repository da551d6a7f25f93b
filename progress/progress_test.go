package progress

import (
	"testing"

	dtime "github.com/kshprenger/dscale/time"
)

func TestBar_MakeProgressDoesNotPanic(t *testing.T) {
	b := New(1000, true)
	for i := dtime.Jiffies(0); i <= 1000; i += 50 {
		b.MakeProgress(i)
	}
	b.Finish()
}

func TestBar_SmallBudgetDeltaNeverZero(t *testing.T) {
	b := New(1, true)
	b.MakeProgress(1)
	b.Finish()
}

func TestBar_CoalescesRedrawsWithinOneDelta(t *testing.T) {
	b := New(1000, true)
	b.MakeProgress(1)
	before := b.prevLog
	b.MakeProgress(2)
	if b.prevLog != before {
		t.Fatal("expected consecutive small advances within one delta to not bump prevLog")
	}
}

package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceRunsDueTimersInOrder(t *testing.T) {
	c := NewFake(time.Time{})
	var got []string
	c.AfterFunc(2*time.Second, func() { got = append(got, "b") })
	c.AfterFunc(time.Second, func() { got = append(got, "a") })
	c.AfterFunc(5*time.Second, func() { got = append(got, "c") })

	c.Advance(3 * time.Second)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", got)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Time{})
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop() = false on pending timer")
	}
	if timer.Stop() {
		t.Fatal("second Stop() = true")
	}
	c.Advance(time.Minute)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeCallbackMaySchedule(t *testing.T) {
	c := NewFake(time.Time{})
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)

	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

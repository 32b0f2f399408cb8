package observable

import (
	"sync"
	"testing"
)

func TestCell_GetSet(t *testing.T) {
	c := NewCell(3)
	if c.Get() != 3 {
		t.Fatalf("Get() = %d, want 3", c.Get())
	}
	c.Set(5)
	if c.Get() != 5 || c.Version() != 1 {
		t.Errorf("after Set: value=%d version=%d", c.Get(), c.Version())
	}
}

func TestCell_SubscribeOrderAndUnsubscribe(t *testing.T) {
	c := NewCell("a")
	var calls []string

	unsubFirst := c.Subscribe(func(prev, next string) { calls = append(calls, "first:"+prev+">"+next) })
	c.Subscribe(func(prev, next string) { calls = append(calls, "second:"+prev+">"+next) })

	c.Set("b")
	unsubFirst()
	unsubFirst()
	c.Set("c")

	want := []string{"first:a>b", "second:a>b", "second:b>c"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestCell_SubscriberMayReadCell(t *testing.T) {
	c := NewCell(0)
	var seen int
	c.Subscribe(func(_, _ int) { seen = c.Get() })
	c.Set(7)
	if seen != 7 {
		t.Errorf("subscriber saw %d, want 7", seen)
	}
}

func TestCell_ConcurrentUpdate(t *testing.T) {
	c := NewCell(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	if c.Get() != 50 {
		t.Errorf("Get() = %d, want 50", c.Get())
	}
}

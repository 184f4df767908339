package easel

import (
	"sync"
	"testing"
)

func TestLoopDrainRunsInPostOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Drain()
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if l.Pending() {
		t.Error("queue should be empty after drain")
	}
}

func TestLoopNestedPostsRunSamePass(t *testing.T) {
	l := NewLoop()
	var got []string
	l.Post(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	l.Drain()
	if len(got) != 2 || got[1] != "inner" {
		t.Errorf("got = %v, want nested closure in the same pass", got)
	}
}

func TestLoopPostFromManyGoroutines(t *testing.T) {
	l := NewLoop()
	count := 0
	var wg sync.WaitGroup
	const n = 64
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { count++ })
		}()
	}
	wg.Wait()

	if !l.Pending() {
		t.Error("Pending should be true before drain")
	}
	l.Drain()
	if count != n {
		t.Errorf("ran %d closures, want %d", count, n)
	}
	if l.Pending() {
		t.Error("Pending should be false after drain")
	}
}

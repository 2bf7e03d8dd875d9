package baseshell

import "testing"

func TestOutputQueue(t *testing.T) {
	t.Run("push then drain returns items in order", func(t *testing.T) {
		q := newOutputQueue()
		q.push(outputItem{data: []byte("a")})
		q.push(outputItem{data: []byte("b")})

		items, done := q.drain()
		if done {
			t.Error("expected done=false, queue is not closed")
		}
		if len(items) != 2 || string(items[0].data) != "a" || string(items[1].data) != "b" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("drain is empty after being drained", func(t *testing.T) {
		q := newOutputQueue()
		q.push(outputItem{data: []byte("a")})
		q.drain()

		items, _ := q.drain()
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("done only once closed and empty", func(t *testing.T) {
		q := newOutputQueue()
		q.push(outputItem{data: []byte("a")})
		q.close()

		_, done := q.drain()
		if done {
			t.Error("expected done=false while backlog remains")
		}
		_, done = q.drain()
		if !done {
			t.Error("expected done=true once closed and empty")
		}
	})

	t.Run("push after close is dropped", func(t *testing.T) {
		q := newOutputQueue()
		q.close()
		if ok := q.push(outputItem{data: []byte("a")}); ok {
			t.Error("expected push after close to report false")
		}
		items, done := q.drain()
		if len(items) != 0 || !done {
			t.Errorf("expected empty+done, got items=%v done=%v", items, done)
		}
	})
}

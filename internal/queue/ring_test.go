package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/boat_voice/internal/packet"
)

func numbered(i int) packet.Packet {
	return packet.Packet{PGN: uint32(i)}
}

func drainAll(r *Ring) []uint32 {
	var out []uint32
	for {
		p, ok := r.Drain()
		if !ok {
			return out
		}
		out = append(out, p.PGN)
	}
}

func TestRingKeepsMostRecentInOrder(t *testing.T) {
	for _, pushes := range []int{1, 299, 300, 301, 450, 1000} {
		r := New(DefaultCapacity)
		for i := 0; i < pushes; i++ {
			r.Push(numbered(i))
			require.LessOrEqual(t, r.Len(), DefaultCapacity)
		}

		got := drainAll(r)

		first := 0
		if pushes > DefaultCapacity {
			first = pushes - DefaultCapacity
		}
		want := make([]uint32, 0, pushes-first)
		for i := first; i < pushes; i++ {
			want = append(want, uint32(i))
		}
		assert.Equal(t, want, got, "pushes=%d", pushes)
	}
}

func TestRingDrainEmpty(t *testing.T) {
	r := New(3)
	_, ok := r.Drain()
	assert.False(t, ok)

	r.Push(numbered(1))
	p, ok := r.Drain()
	require.True(t, ok)
	assert.Equal(t, uint32(1), p.PGN)

	_, ok = r.Drain()
	assert.False(t, ok)
}

func TestRingDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Cap())
	assert.Equal(t, 5, New(5).Cap())
}

func TestRingConcurrentProducersLoseNothingBelowCapacity(t *testing.T) {
	const producers, each = 10, 25 // 250 < capacity
	r := New(DefaultCapacity)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				r.Push(numbered(p*1000 + i))
			}
		}(p)
	}
	wg.Wait()

	got := drainAll(r)
	require.Len(t, got, producers*each)

	// per-producer order is preserved
	last := map[uint32]int{}
	seen := map[uint32]bool{}
	for _, v := range got {
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
		prod, idx := v/1000, int(v%1000)
		if prev, ok := last[prod]; ok {
			assert.Greater(t, idx, prev)
		}
		last[prod] = idx
	}
}

func TestRingWaitBlocksUntilPush(t *testing.T) {
	r := New(3)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan packet.Packet, 1)
	go func() {
		p, err := r.Wait(ctx)
		if err == nil {
			done <- p
		}
	}()

	time.Sleep(20 * time.Millisecond)
	r.Push(numbered(42))

	select {
	case p := <-done:
		assert.Equal(t, uint32(42), p.PGN)
	case <-ctx.Done():
		t.Fatal("Wait did not return after Push")
	}
}

func TestRingWaitHonoursContext(t *testing.T) {
	r := New(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

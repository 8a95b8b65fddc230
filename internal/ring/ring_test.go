package ring

import (
	"sync"
	"testing"
	"time"
)

func samples(n int, start float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = start + float32(i)
	}
	return s
}

func TestNew(t *testing.T) {
	b := New(16)
	if b.Capacity() != 16 {
		t.Errorf("Capacity: expected 16, got %d", b.Capacity())
	}
	if b.WritePosition() != 0 || b.ReadPosition() != 0 {
		t.Errorf("fresh buffer should start at position 0")
	}
}

func TestRoundTrip(t *testing.T) {
	b := New(16)
	data := samples(5, 1)
	b.Write(data)

	out := make([]float32, 5)
	res := b.Read(out)
	if res != OK {
		t.Fatalf("Read: expected OK, got %v", res)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Errorf("sample %d: expected %v, got %v", i, data[i], out[i])
		}
	}
}

func TestWrapAround(t *testing.T) {
	b := New(8)

	b.Write(samples(6, 0))
	drain := make([]float32, 6)
	b.Read(drain)

	data := samples(5, 100)
	b.Write(data) // wraps: 2 samples at the tail, 3 at the front

	out := make([]float32, 5)
	if res := b.Read(out); res != OK {
		t.Fatalf("Read: expected OK, got %v", res)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Errorf("wrap sample %d: expected %v, got %v", i, data[i], out[i])
		}
	}
}

func TestWriteBeyondCapacityKeepsMostRecent(t *testing.T) {
	b := New(4)
	data := samples(10, 0) // 0..9, capacity 4 -> only 6,7,8,9 observable

	b.Write(data)
	if b.WritePosition() != 10 {
		t.Errorf("write position: expected 10, got %d", b.WritePosition())
	}

	b.SetReadPosition(6)
	out := make([]float32, 4)
	if res := b.Read(out); res != OK {
		t.Fatalf("Read: expected OK, got %v", res)
	}
	want := []float32{6, 7, 8, 9}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestUnderrun(t *testing.T) {
	b := New(16)
	b.Write(samples(3, 1))

	out := make([]float32, 8)
	res := b.Read(out)
	if res != OK {
		t.Fatalf("Read: expected OK with zero-padded tail, got %v", res)
	}
	for i := 0; i < 3; i++ {
		if out[i] != float32(1+i) {
			t.Errorf("sample %d: expected %v, got %v", i, float32(1+i), out[i])
		}
	}
	for i := 3; i < 8; i++ {
		if out[i] != 0 {
			t.Errorf("padding sample %d: expected 0, got %v", i, out[i])
		}
	}
	if b.ReadPosition() != 8 {
		t.Errorf("read position should advance by requested length: expected 8, got %d", b.ReadPosition())
	}
}

func TestUnderrunWhenCaughtUp(t *testing.T) {
	b := New(16)
	b.Write(samples(4, 1))
	out := make([]float32, 4)
	b.Read(out) // catch up exactly: read_pos == write_pos

	out2 := make([]float32, 4)
	res := b.Read(out2)
	if res != Underrun {
		t.Fatalf("Read: expected Underrun, got %v", res)
	}
	for i, v := range out2 {
		if v != 0 {
			t.Errorf("sample %d: expected silence, got %v", i, v)
		}
	}
	if b.ReadPosition() != 4 {
		t.Errorf("read position should not advance on underrun: expected 4, got %d", b.ReadPosition())
	}
}

func TestOverrun(t *testing.T) {
	b := New(8)
	b.Write(samples(20, 0)) // 2.5x capacity without any reads

	out := make([]float32, 4)
	res := b.Read(out)
	if res != Overrun {
		t.Fatalf("Read: expected Overrun, got %v", res)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("overrun output sample %d: expected silence, got %v", i, v)
		}
	}

	want := b.WritePosition() - b.Capacity() + uint64(len(out))
	if b.ReadPosition() != want {
		t.Errorf("read position after overrun: expected %d, got %d", want, b.ReadPosition())
	}

	// subsequent reads resume normally
	b.Write(samples(4, 500))
	out2 := make([]float32, 4)
	if res := b.Read(out2); res != OK {
		t.Errorf("post-overrun read: expected OK, got %v", res)
	}
}

func TestMonotonicity(t *testing.T) {
	b := New(8)
	var lastW, lastR uint64

	for i := 0; i < 50; i++ {
		b.Write(samples(3, float32(i)))
		w := b.WritePosition()
		if w < lastW {
			t.Fatalf("write position went backwards: %d -> %d", lastW, w)
		}
		lastW = w

		out := make([]float32, 2)
		b.Read(out)
		r := b.ReadPosition()
		if r < lastR {
			t.Fatalf("read position went backwards: %d -> %d", lastR, r)
		}
		lastR = r
	}
}

func TestSetReadPositionSeek(t *testing.T) {
	b := New(64)
	b.Write(samples(40, 0))

	b.SetReadPosition(20)
	out := make([]float32, 5)
	if res := b.Read(out); res != OK {
		t.Fatalf("Read after seek: expected OK, got %v", res)
	}
	want := []float32{20, 21, 22, 23, 24}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("seeked sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestEmptyReadIsNoOp(t *testing.T) {
	b := New(8)
	b.Write(samples(4, 1))
	before := b.ReadPosition()
	if res := b.Read(nil); res != OK {
		t.Errorf("zero-length read: expected OK, got %v", res)
	}
	if b.ReadPosition() != before {
		t.Errorf("zero-length read should not move read position")
	}
}

func TestDelayAndUsage(t *testing.T) {
	b := New(100)
	b.Write(samples(40, 0))

	if got := b.DelaySamples(); got != 40 {
		t.Errorf("DelaySamples: expected 40, got %d", got)
	}
	if got := b.UsageFraction(); got != 0.4 {
		t.Errorf("UsageFraction: expected 0.4, got %v", got)
	}

	out := make([]float32, 10)
	b.Read(out)
	if got := b.DelaySamples(); got != 30 {
		t.Errorf("DelaySamples after read: expected 30, got %d", got)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	b := New(1024)

	const iterations = 5000
	const chunk = 16

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			b.Write(samples(chunk, float32(i)))
		}
	}()

	go func() {
		defer wg.Done()
		out := make([]float32, chunk)
		// An overrun fast-forwards the read head past several chunks in one
		// call, so the consumer runs until the read head reaches the
		// producer's final position rather than for a fixed number of reads.
		const total = iterations * chunk
		for b.ReadPosition() < total {
			b.Read(out)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("test timeout — possible deadlock")
	}

	if b.ReadPosition() > b.WritePosition() {
		t.Errorf("non-overlap violated: read_pos %d > write_pos %d", b.ReadPosition(), b.WritePosition())
	}
}

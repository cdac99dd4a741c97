package shmring

import (
	"testing"
)

// fakeIO models partial producer acceptance by offering only up to k bytes
// per call, forcing frequent wraps and partial first-span copies.
type fakeIO struct{ k int }

func (f fakeIO) clamp(n int) int {
	if n > f.k {
		return f.k
	}
	return n
}

func TestOrderAcrossWrapWithPartialProgress(t *testing.T) {
	_, r := New(64)
	prod := fakeIO{k: 7}

	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	p := src
	dst := make([]byte, N)
	off := 0

	for off < N {
		if len(p) > 0 {
			step := prod.clamp(len(p))
			n := r.WriteFrom(p[:step])
			p = p[n:]
		}

		var tmp [17]byte
		n := r.ReadInto(tmp[:])
		if n > 0 {
			copy(dst[off:], tmp[:n])
			off += n
		}
	}

	for i := 0; i < N; i++ {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got=%d want=%d", i, dst[i], src[i])
		}
	}
}

func TestReadableWritableEdges(t *testing.T) {
	_, r := New(8)
	select {
	case <-r.Readable():
		t.Fatal("unexpected Readable on empty ring")
	default:
	}
	n := r.WriteFrom([]byte{1, 2, 3})
	if n != 3 {
		t.Fatalf("write 3 -> %d", n)
	}
	select {
	case <-r.Readable(): // should fire once
	default:
		t.Fatal("expected Readable")
	}
	select {
	case <-r.Readable(): // coalesced; no second token yet
		t.Fatal("unexpected extra Readable")
	default:
	}

	if n := r.WriteFrom([]byte{4, 5, 6, 7, 8}); n != 5 {
		t.Fatalf("fill to 8 -> wrote %d", n)
	}
	if r.Space() != 0 {
		t.Fatalf("expected ring full, space=%d", r.Space())
	}
	r.ReadInto(make([]byte, 8))
	select {
	case <-r.Writable():
	default:
		t.Fatal("expected Writable after draining a full ring")
	}
}

func TestSpaceAndAvailableTrackEachOther(t *testing.T) {
	_, r := New(8)
	if got := r.Space(); got != 8 {
		t.Fatalf("empty ring space = %d, want 8", got)
	}
	r.WriteFrom([]byte{1, 2, 3})
	if got := r.Available(); got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}
	if got := r.Space(); got != 5 {
		t.Fatalf("space = %d, want 5", got)
	}
}

func TestGetAndClose(t *testing.T) {
	h, r := New(4)
	if Get(h) != r {
		t.Fatalf("Get(h) did not return the ring New returned")
	}
	Close(h)
	if Get(h) != nil {
		t.Fatalf("expected Get to return nil after Close")
	}
}

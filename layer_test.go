package trellis

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{64, 64},
		{65, 128},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPoolKeyUnique(t *testing.T) {
	if poolKey(64, 128) == poolKey(128, 64) {
		t.Error("poolKey should distinguish width and height")
	}
	if poolKey(256, 256) != poolKey(256, 256) {
		t.Error("poolKey should be deterministic")
	}
}

func TestLayerPoolReuse(t *testing.T) {
	var p layerPool
	defer p.Dispose()

	a := p.Acquire(100, 50)
	if b := a.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Fatalf("bounds = %v, want 128x64", b)
	}
	p.Release(a)
	if p.live != 0 {
		t.Errorf("live = %d, want 0", p.live)
	}

	b := p.Acquire(120, 60)
	if a != b {
		t.Error("same power-of-two bucket should reuse the released image")
	}
	c := p.Acquire(120, 60)
	if c == b {
		t.Error("bucket was empty; expected a fresh image")
	}
	if p.live != 2 {
		t.Errorf("live = %d, want 2", p.live)
	}
	p.Release(b)
	p.Release(c)
	p.Release(nil)
}

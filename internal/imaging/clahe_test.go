package imaging

import "testing"

func TestClahe_UniformPlaneStaysUniform(t *testing.T) {
	src := make([]uint8, 40*30)
	for i := range src {
		src[i] = 90
	}

	out := clahe(src, 40, 30, 2.0, 8)

	for i := range out {
		if out[i] != out[0] {
			t.Fatalf("pixel %d: got %d, want %d", i, out[i], out[0])
		}
	}
}

func TestClahe_MonotonicWithinSingleTile(t *testing.T) {
	w, h := 64, 4
	src := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = uint8(x * 2)
		}
	}

	out := clahe(src, w, h, 2.0, 1)

	for x := 1; x < w; x++ {
		if out[x] < out[x-1] {
			t.Fatalf("mapping not monotonic at x=%d: %d < %d", x, out[x], out[x-1])
		}
	}
}

func TestClahe_StretchesNarrowRange(t *testing.T) {
	w, h := 128, 128
	src := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = uint8(100 + (x+y)%8)
		}
	}

	out := clahe(src, w, h, 4.0, 4)

	lo, hi := out[0], out[0]
	for _, v := range out {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if int(hi)-int(lo) <= 7 {
		t.Errorf("range not stretched: [%d, %d]", lo, hi)
	}
}

func TestClahe_Empty(t *testing.T) {
	if out := clahe(nil, 0, 0, 2.0, 8); len(out) != 0 {
		t.Errorf("got %d pixels, want 0", len(out))
	}
}

func TestClipHistogram_PreservesCount(t *testing.T) {
	var hist [histBins]int
	hist[10] = 500
	hist[11] = 300
	hist[200] = 7
	total := 807

	clipHistogram(&hist, 20)

	sum := 0
	for _, v := range hist {
		sum += v
	}
	if sum != total {
		t.Errorf("count changed: got %d, want %d", sum, total)
	}
	if hist[10] > 20+total/histBins+1 {
		t.Errorf("bin 10 not clipped: %d", hist[10])
	}
}

func TestHistogramLUT(t *testing.T) {
	tests := []struct {
		name     string
		low      int
		high     int
		wantLow  uint8
		wantHigh uint8
	}{
		// 128*255/256 = 127.5 exactly, which rounds up.
		{"exact half", 128, 128, 128, 255},
		// 50*255/100 is just below 127.5 in float64, so it rounds down.
		{"inexact half", 50, 50, 127, 255},
		{"all dark", 256, 0, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hist [histBins]int
			hist[0] = tt.low
			hist[255] = tt.high

			lut := histogramLUT(&hist, tt.low+tt.high)

			if lut[0] != tt.wantLow {
				t.Errorf("lut[0]: got %d, want %d", lut[0], tt.wantLow)
			}
			if lut[254] != tt.wantLow {
				t.Errorf("lut[254]: got %d, want %d", lut[254], tt.wantLow)
			}
			if lut[255] != tt.wantHigh {
				t.Errorf("lut[255]: got %d, want %d", lut[255], tt.wantHigh)
			}
		})
	}
}

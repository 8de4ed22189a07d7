package longterm

import "testing"

func TestAnalyzeFindsKnownPeriod(t *testing.T) {
	// A pseudo-random pattern repeated every 600 samples: only lag 600
	// reproduces it, and 600's only multiple within [MinPitchThreshold,
	// MaxPeriod) is 600 itself (1200 falls outside MaxPeriod=1024). A pure
	// sinusoid would not do: two taps predict it exactly at any lag.
	const n = 4096
	const period = 600
	pattern := make([]float64, period)
	seed := int32(4242)
	for i := range pattern {
		seed = seed*1103515245 + 12345
		pattern[i] = float64((seed>>16)%1000) / 1000
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = pattern[i%period]
	}

	gotPeriod, coef, err := Analyze(x, n, 2, MinPitchThreshold, MaxPeriod, NumPitchCandidates)
	if err != nil {
		t.Fatal(err)
	}
	if gotPeriod != period {
		t.Fatalf("period = %d, want %d", gotPeriod, period)
	}
	if len(coef) != 2 {
		t.Fatalf("len(coef) = %d, want 2", len(coef))
	}
}

func TestAnalyzeTooShortFails(t *testing.T) {
	x := make([]float64, 10)
	if _, _, err := Analyze(x, len(x), 2, MinPitchThreshold, MaxPeriod, NumPitchCandidates); err == nil {
		t.Fatal("expected error for too-short frame")
	}
}

func TestAnalyzeSilenceFails(t *testing.T) {
	x := make([]float64, 4096)
	if _, _, err := Analyze(x, len(x), 2, MinPitchThreshold, MaxPeriod, NumPitchCandidates); err == nil {
		t.Fatal("expected error for silent frame")
	}
}

func TestQuantizeLowBitsZero(t *testing.T) {
	q := Quantize(0.42)
	if q&0xFFFF != 0 {
		t.Fatalf("low 16 bits not zero: %#x", q)
	}
}

func TestPredictReconstructRoundTrip(t *testing.T) {
	const n = 512
	const order = 3
	const period = 64
	x := make([]int32, n)
	seed := int32(777)
	for i := range x {
		seed = seed*1103515245 + 12345
		x[i] = (seed >> 16) % 2000
	}

	coefQ31 := []int32{
		Quantize(0.5),
		Quantize(0.25),
		Quantize(-0.1),
	}

	filtered := make([]int32, n)
	Predict(x, n, coefQ31, order, period, filtered)

	recon := make([]int32, n)
	Reconstruct(filtered, n, coefQ31, order, period, recon)

	for i := range x {
		if recon[i] != x[i] {
			t.Fatalf("reconstruction mismatch at %d: got %d, want %d", i, recon[i], x[i])
		}
	}
}

func TestPredictPassesThroughBeforeTapWindow(t *testing.T) {
	x := []int32{10, 20, 30, 40, 50}
	coefQ31 := []int32{Quantize(0.5)}
	out := make([]int32, len(x))
	Predict(x, len(x), coefQ31, 1, 100, out)
	for i := range x {
		if out[i] != x[i] {
			t.Fatalf("out[%d] = %d, want passthrough %d", i, out[i], x[i])
		}
	}
}

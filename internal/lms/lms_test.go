package lms

import "testing"

func TestNewRejectsNonPositiveOrder(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for order 0")
	}
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for negative order")
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	const n = 300
	x := make([]int32, n)
	seed := int32(42)
	for i := range x {
		seed = seed*1103515245 + 12345
		x[i] = (seed >> 16) % 8000
	}

	fwd, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	residual := make([]int32, n)
	fwd.Forward(x, n, residual)

	inv, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	recon := make([]int32, n)
	inv.Inverse(residual, n, recon)

	for i := range x {
		if recon[i] != x[i] {
			t.Fatalf("mismatch at %d: got %d, want %d", i, recon[i], x[i])
		}
	}
}

func TestCascadeInverseCascadeRoundTrip(t *testing.T) {
	const n = 400
	const order = 4
	const count = 3
	x := make([]int32, n)
	seed := int32(999)
	for i := range x {
		seed = seed*1103515245 + 12345
		x[i] = (seed >> 16) % 4000
	}

	residual, err := Cascade(x, n, order, count)
	if err != nil {
		t.Fatal(err)
	}
	recon, err := InverseCascade(residual, n, order, count)
	if err != nil {
		t.Fatal(err)
	}
	for i := range x {
		if recon[i] != x[i] {
			t.Fatalf("mismatch at %d: got %d, want %d", i, recon[i], x[i])
		}
	}
}

func TestCascadeZeroStagesIsIdentity(t *testing.T) {
	x := []int32{1, 2, 3, 4, 5}
	out, err := Cascade(x, len(x), 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range x {
		if out[i] != x[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], x[i])
		}
	}
}

func TestSignZero(t *testing.T) {
	if sign(0) != 0 || sign(5) != 1 || sign(-5) != -1 {
		t.Fatal("sign helper incorrect")
	}
}

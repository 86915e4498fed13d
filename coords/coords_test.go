package coords

import "testing"

func TestPlace(t *testing.T) {
	if m := Place(10, 20, 100, 50); m != (Matrix{100, 0, 0, 50, 10, 20}) {
		t.Fatalf("Place = %v", m)
	}
	if m := Place(0, 0, 1, 1); m != (Matrix{1, 0, 0, 1, 0, 0}) {
		t.Fatalf("unit box should be the identity, got %v", m)
	}
}

func TestMultiplyOrder(t *testing.T) {
	// Translating first moves the origin before scaling it.
	if m := translate(1, 2).multiply(scale(3, 4)); m != (Matrix{3, 0, 0, 4, 3, 8}) {
		t.Fatalf("translate then scale = %v", m)
	}
}

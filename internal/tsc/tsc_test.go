package tsc

import "testing"

func TestNowMonotonicish(t *testing.T) {
	a := Now()
	for i := 0; i < 1000; i++ {
		_ = i
	}
	b := Now()
	if b < a {
		t.Fatalf("expected b >= a, got a=%d b=%d", a, b)
	}
}

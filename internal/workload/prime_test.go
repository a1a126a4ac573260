package workload

import "testing"

func TestFindNextPrimeNumberBasic(t *testing.T) {
	cases := []struct {
		input uint32
		want  uint32
	}{
		{0, 0},
		{1, 0},
		{2, 2},
		{10, 11},
	}
	for _, c := range cases {
		if got := FindNextPrimeNumber(c.input); got != c.want {
			t.Errorf("FindNextPrimeNumber(%d) = %d, want %d", c.input, got, c.want)
		}
	}
}

func TestFindNextPrimeNumberSearchesWithinRange(t *testing.T) {
	got := FindNextPrimeNumber(100)
	if got == 0 {
		t.Fatal("expected a nonzero answer for input 100")
	}
	if got < 100 || got >= 200 {
		t.Fatalf("answer %d outside [input, 2*input)", got)
	}
}

package types

import "testing"

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		5:       "5",
		2.5:     "2.5",
		-0.0:    "0",
		-3:      "-3",
		0.1:     "0.1",
		1e21:    "1e+21",
		1.25e-7: "1.25e-07",
		123456:  "123456",
	}
	for input, want := range cases {
		if got := FormatNumber(input); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", input, got, want)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		22.2222:  22.22,
		-17.7777: -17.78,
		37.777:   37.78,
		100:      100,
	}
	for input, want := range cases {
		if got := Round2(input); got != want {
			t.Errorf("Round2(%v) = %v, want %v", input, got, want)
		}
	}
}

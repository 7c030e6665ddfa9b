package math

import "testing"

func TestDivRoundUp(t *testing.T) {
	for _, testCase := range []struct {
		a, b, wanted int
	}{
		{a: 0, b: 1024, wanted: 0},
		{a: 1, b: 1024, wanted: 1},
		{a: 1024, b: 1024, wanted: 1},
		{a: 1025, b: 1024, wanted: 2},
		{a: 16384 * 72, b: 1024, wanted: 1152},
	} {
		if found := DivRoundUp(testCase.a, testCase.b); found != testCase.wanted {
			t.Fatalf(
				"DivRoundUp(%d, %d): wanted `%d`; found `%d`",
				testCase.a,
				testCase.b,
				testCase.wanted,
				found,
			)
		}
	}
}

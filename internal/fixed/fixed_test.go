package fixed

import "testing"

func TestDot6RoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 0.5, 3.25, -7.75}
	for _, f := range cases {
		v := Dot6FromFloat64(f)
		got := Dot6ToFloat64(v)
		if diff := got - f; diff > 1.0/64 || diff < -1.0/64 {
			t.Errorf("Dot6 round trip for %v: got %v", f, got)
		}
	}
}

func TestDot6Round(t *testing.T) {
	tests := []struct {
		in   Dot6
		want int32
	}{
		{0, 0},
		{32, 1},  // 0.5 rounds up
		{31, 0},  // 0.484 rounds down
		{64, 1},  // 1.0
		{-32, 0}, // -0.5 rounds toward +inf given the +half bias
	}
	for _, tc := range tests {
		if got := Dot6Round(tc.in); got != tc.want {
			t.Errorf("Dot6Round(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDot6ToDot16(t *testing.T) {
	v := Dot6FromFloat64(2.0)
	got := Dot6ToDot16(v)
	want := Dot16FromFloat64(2.0)
	if got != want {
		t.Errorf("Dot6ToDot16(2.0) = %d, want %d", got, want)
	}
}

func TestDot6DivVertical(t *testing.T) {
	// Division by zero denotes a vertical edge: slope saturates.
	got := Dot6Div(10, 0)
	if got != 0x7FFFFFFF {
		t.Errorf("Dot6Div(10, 0) = %d, want max", got)
	}
	got = Dot6Div(-10, 0)
	if got != -0x7FFFFFFF {
		t.Errorf("Dot6Div(-10, 0) = %d, want -max", got)
	}
}

func TestDot16Mul(t *testing.T) {
	one := Dot16One
	half := Dot16FromFloat64(0.5)
	got := Dot16Mul(one, half)
	if got != half {
		t.Errorf("Dot16Mul(1.0, 0.5) = %v, want %v", Dot16ToFloat64(got), 0.5)
	}
}

func TestLeftShiftNegative(t *testing.T) {
	if got := LeftShift(8, -2); got != 2 {
		t.Errorf("LeftShift(8, -2) = %d, want 2", got)
	}
	if got := LeftShift(2, 2); got != 8 {
		t.Errorf("LeftShift(2, 2) = %d, want 8", got)
	}
}

func TestAbsMax(t *testing.T) {
	if AbsInt32(-5) != 5 {
		t.Error("AbsInt32(-5) != 5")
	}
	if MaxInt32(3, 7) != 7 {
		t.Error("MaxInt32(3, 7) != 7")
	}
}

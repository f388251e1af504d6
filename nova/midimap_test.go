package nova

import "testing"

func TestMapRoundTrip(t *testing.T) {
	for _, tc := range [][3]int{{45, 10, 3}, {0, 0, 0}, {127, 127, 127}, {90, 64, 1}, {1, 63, 126}} {
		b, err := PackMap(tc[0], tc[1], tc[2])
		if err != nil {
			t.Fatalf("PackMap%v: %v", tc, err)
		}
		for i, c := range b {
			if c&0x80 != 0 {
				t.Fatalf("PackMap%v byte %d = 0x%02X has bit 7 set", tc, i, c)
			}
		}
		v1, v2, v3 := UnpackMap(b)
		if [3]int{v1, v2, v3} != tc {
			t.Errorf("UnpackMap(PackMap%v) = %d %d %d", tc, v1, v2, v3)
		}
	}
}

func TestPackMapRejectsWideValues(t *testing.T) {
	if _, err := PackMap(0, 0, 200); err == nil {
		t.Fatal("PackMap accepted 200")
	}
	if _, err := PackMap(-1, 0, 0); err == nil {
		t.Fatal("PackMap accepted -1")
	}
}

// The raw pack keeps v3 whole in b0. A 7-bit transport drops bit 7, so 200
// comes back as 72. Recorded here so a change in either formula shows up.
func TestPackMapRawKnownDeviation(t *testing.T) {
	b := packMapRaw(45, 10, 200)
	if b[0] != 200 {
		t.Fatalf("b0 = %d, want 200", b[0])
	}
	_, _, v3 := UnpackMap(b)
	if v3 != 200 {
		t.Errorf("unmasked v3 = %d, want 200", v3)
	}
	b[0] &= 0x7F
	v1, v2, v3 := UnpackMap(b)
	if v1 != 45 || v2 != 10 || v3 != 72 {
		t.Errorf("after 7-bit transport got %d %d %d, want 45 10 72", v1, v2, v3)
	}
}

func TestMapLabel(t *testing.T) {
	for n, want := range map[int]string{0: "None", 1: "F0-1", 42: "03-3", 90: "19-3", 91: "None", -4: "None"} {
		if got := MapLabel(n); got != want {
			t.Errorf("MapLabel(%d) = %q, want %q", n, got, want)
		}
	}
}

package core

import "testing"

func TestFormatVersion(t *testing.T) {
	if got := FormatVersion(1, 2, 30, 4); got != "1.2.30.4" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.2.3.4", "1.2.3.4", true},
		{"v1.2.3.4", "1.2.3.4", true},
		{"01.2.3.4", "1.2.3.4", true},
		{"v1.2.3", "1.2.3.0", true},
		{"1.2.3", "1.2.3.0", true},
		{"1.2", "1.2.0.0", true},
		{"v1.4.0-rc.1", "1.4.0.0", true},
		{"v1.4.0+meta", "1.4.0.0", true},
		{" 2.0 ", "2.0.0.0", true},
		{"", "", false},
		{"(devel)", "", false},
		{"1.2.3.x", "", false},
		{"1.2.3.70000", "", false},
	}
	for _, c := range cases {
		got, err := NormalizeVersion(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("NormalizeVersion(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("NormalizeVersion(%q) expected error, got %q", c.in, got)
		}
	}
}

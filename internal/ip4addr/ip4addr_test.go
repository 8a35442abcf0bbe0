package ip4addr

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		addr uint32
		rest string
		ok   bool
	}{
		{"192.168.0.1", 0xc0a80001, "", true},
		{"0.0.0.0", 0, "", true},
		{"255.255.255.255/24", 0xffffffff, "/24", true},
		{"256.0.0.1", 0, "256.0.0.1", false},
		{"1.2.3", 0, "1.2.3", false},
		{"1.2.3.4x", 0x01020304, "x", true},
	}
	for _, c := range cases {
		addr, rest, ok := Parse(c.in)
		if ok != c.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if addr != c.addr || rest != c.rest {
			t.Errorf("Parse(%q) = %#x, %q, want %#x, %q", c.in, addr, rest, c.addr, c.rest)
		}
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		in    string
		first uint32
		last  uint32
		ok    bool
	}{
		{"10.0.0.1", 0x0a000001, 0x0a000001, true},
		{"10.0.0.1-10.0.0.5", 0x0a000001, 0x0a000005, true},
		{"10.0.0.5-10.0.0.1", 0, 0, false},
		{"192.168.0.0/24", 0xc0a80000, 0xc0a800ff, true},
		{"192.168.0.1/24", 0, 0, false},
		{"0.0.0.0/0", 0, 0xffffffff, true},
	}
	for _, c := range cases {
		first, last, _, ok := ParseRange(c.in)
		if ok != c.ok {
			t.Errorf("ParseRange(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if first != c.first || last != c.last {
			t.Errorf("ParseRange(%q) = %#x-%#x, want %#x-%#x", c.in, first, last, c.first, c.last)
		}
	}
}

func TestAddrRoundTrip(t *testing.T) {
	addr, _, ok := Parse("10.20.30.40")
	if !ok {
		t.Fatal("parse failed")
	}
	if got := Addr(addr); got != "10.20.30.40" {
		t.Fatalf("Addr() = %q, want 10.20.30.40", got)
	}
}

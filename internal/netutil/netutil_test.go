package netutil

import (
	"net"
	"testing"
)

func TestHWAddrUint64RoundTrip(t *testing.T) {
	mac, _ := net.ParseMAC("de:ad:be:ef:00:01")
	u := HWAddrToUint64(mac)
	back := Uint64ToHWAddr(u)
	if back.String() != mac.String() {
		t.Fatalf("round trip = %s, want %s", back, mac)
	}
}

func TestIPAddrUint32RoundTrip(t *testing.T) {
	ip := net.IPv4(192, 168, 1, 42)
	u := IPAddrToUint32(ip)
	back := Uint32ToIPAddr(u)
	if !back.Equal(ip) {
		t.Fatalf("round trip = %s, want %s", back, ip)
	}
}

func TestIsMacMulticast(t *testing.T) {
	mdns, _ := net.ParseMAC("01:00:5e:00:00:fb")
	if !IsMacMulticast(mdns) {
		t.Fatal("expected mDNS MAC to be detected as multicast")
	}
	if IsMacMulticast(MacBcast) {
		t.Fatal("broadcast MAC should not be detected as the 01:00:5E multicast block")
	}
}

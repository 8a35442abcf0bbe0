package sensor

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/ipset"
)

var (
	someEther   = [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	sensorMAC   = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	targetIP    = [4]byte{10, 0, 0, 42}
	requesterIP = [4]byte{10, 0, 0, 1}
)

func whoHasRequest() (*layers.ARP, *layers.Ethernet) {
	return &layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   someEther[:],
			SourceProtAddress: requesterIP[:],
			DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
			DstProtAddress:    targetIP[:],
		}, &layers.Ethernet{
			SrcMAC:       someEther[:],
			DstMAC:       []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			EthernetType: layers.EthernetTypeARP,
		}
}

func TestHandleARPIgnoresFirstFewRequests(t *testing.T) {
	p, cap := newCSVTestPipeline(t)

	arp, eth := whoHasRequest()
	for _, sec := range []int64{0, 1, 2} {
		if err := p.handleARP(arp, eth, Timestamp{Sec: sec}); err != nil {
			t.Fatalf("handleARP: %v", err)
		}
	}
	if len(cap.written) != 0 {
		t.Errorf("expected no reply before the request count and timeout thresholds are met, got %d", len(cap.written))
	}
}

func TestHandleARPClaimsAfterTimeoutAndRepliesIsAt(t *testing.T) {
	p, cap := newCSVTestPipeline(t)

	arp, eth := whoHasRequest()
	for _, sec := range []int64{0, 1, 2, 4} {
		if err := p.handleARP(arp, eth, Timestamp{Sec: sec}); err != nil {
			t.Fatalf("handleARP: %v", err)
		}
	}

	if len(cap.written) != 1 {
		t.Fatalf("expected exactly one claim reply once thresholds are crossed, got %d", len(cap.written))
	}

	replyEth, reply := decodeARPReply(t, cap.written[0])

	if reply.Operation != layers.ARPReply {
		t.Errorf("expected an ARP reply, got operation %d", reply.Operation)
	}
	if string(reply.SourceHwAddress) != string(sensorMAC) {
		t.Errorf("expected reply to claim sensor MAC, got %x", reply.SourceHwAddress)
	}
	if string(reply.SourceProtAddress) != string(targetIP[:]) {
		t.Errorf("expected reply source address to be the claimed target, got %v", reply.SourceProtAddress)
	}
	if string(replyEth.DstMAC) != string(someEther[:]) {
		t.Errorf("expected reply unicast back to the requester, got %x", replyEth.DstMAC)
	}
}

func TestHandleARPRestrictsClaimsToDstSet(t *testing.T) {
	p, cap := newCSVTestPipeline(t)

	restricted := ipset.New()
	restricted.Insert(10<<24, 10<<24|41) // excludes 10.0.0.42
	p.cfg.DstSet = restricted

	arp, eth := whoHasRequest() // targetIP (10.0.0.42) is outside the restricted set
	for _, sec := range []int64{0, 1, 2, 4} {
		if err := p.handleARP(arp, eth, Timestamp{Sec: sec}); err != nil {
			t.Fatalf("handleARP: %v", err)
		}
	}
	if len(cap.written) != 0 {
		t.Errorf("expected claiming outside DstSet to be suppressed, got %d replies", len(cap.written))
	}
}

func TestHandleARPIgnoresNonEthernetHardware(t *testing.T) {
	p, cap := newCSVTestPipeline(t)
	arp, eth := whoHasRequest()
	arp.HwAddressSize = 8

	if err := p.handleARP(arp, eth, Timestamp{Sec: 0}); err != nil {
		t.Fatalf("handleARP: %v", err)
	}
	if len(cap.written) != 0 {
		t.Errorf("expected malformed hardware-address-size ARP to be dropped, got %d replies", len(cap.written))
	}
}

func TestHandleARPRegistersRepliesWithoutClaiming(t *testing.T) {
	p, cap := newCSVTestPipeline(t)

	reply := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPReply,
		SourceHwAddress:   someEther[:],
		SourceProtAddress: requesterIP[:],
		DstHwAddress:      sensorMAC,
		DstProtAddress:    targetIP[:],
	}
	eth := &layers.Ethernet{SrcMAC: someEther[:], DstMAC: sensorMAC, EthernetType: layers.EthernetTypeARP}

	if err := p.handleARP(reply, eth, Timestamp{Sec: 0}); err != nil {
		t.Fatalf("handleARP: %v", err)
	}
	if len(cap.written) != 0 {
		t.Errorf("an observed reply must never itself provoke a reply, got %d", len(cap.written))
	}
	if _, ok := p.claims.Lookup(be32(requesterIP[:])); !ok {
		t.Errorf("expected the reply's sender to be registered in the claim tree")
	}
}

func decodeARPReply(t *testing.T, frame []byte) (layers.Ethernet, layers.ARP) {
	t.Helper()
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(frame, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("decode ethernet: %v", err)
	}
	var arp layers.ARP
	if err := arp.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("decode arp: %v", err)
	}
	return eth, arp
}

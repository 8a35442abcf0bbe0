package sensor

import (
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/checksum"
)

// handleIPv4 implements packet_analyze_ip4: it trims the payload to the
// header's declared total length, builds the pseudo-header partial
// checksum the protocol handlers verify against, and dispatches to the
// matching sub-protocol handler.
func (p *Pipeline) handleIPv4(ip *layers.IPv4, eth *layers.Ethernet, payload []byte, ts Timestamp) error {
	declared := int(ip.Length) - int(ip.IHL)*4
	if declared < 0 {
		metrics.malformedTotal.WithLabelValues("ipv4").Inc()
		return nil
	}
	if declared < len(payload) {
		payload = payload[:declared]
	}

	fl := flow{
		ts:     ts,
		src:    be32(ip.SrcIP.To4()),
		dst:    be32(ip.DstIP.To4()),
		proto:  uint8(ip.Protocol),
		srcMAC: eth.SrcMAC,
	}

	if p.cfg.SrcSet != nil && !p.cfg.SrcSet.Lookup(fl.src) {
		return nil
	}
	if p.cfg.DstSet != nil && !p.cfg.DstSet.Lookup(fl.dst) {
		return nil
	}

	fl.pseudoPartial = pseudoHeaderSum(fl.src, fl.dst, fl.proto, len(payload))

	switch ip.Protocol {
	case layers.IPProtocolICMPv4:
		return p.handleICMPv4(&fl, payload)
	case layers.IPProtocolTCP:
		return p.handleTCP(&fl, payload)
	case layers.IPProtocolUDP:
		return p.handleUDP(&fl, payload)
	default:
		return nil
	}
}

// pseudoHeaderSum computes the IPv4 pseudo-header partial checksum
// (src, dst, zero-padded protocol, length) that flow.h's
// ip4_flow.pseudo union represents.
func pseudoHeaderSum(src, dst uint32, proto uint8, length int) uint16 {
	var b [12]byte
	b[0], b[1], b[2], b[3] = byte(src>>24), byte(src>>16), byte(src>>8), byte(src)
	b[4], b[5], b[6], b[7] = byte(dst>>24), byte(dst>>16), byte(dst>>8), byte(dst)
	b[8], b[9] = 0, proto
	b[10], b[11] = byte(length>>8), byte(length)
	return checksum.Sum(0, b[:])
}

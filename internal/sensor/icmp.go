package sensor

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/checksum"
)

const icmpHeaderLen = 8

// handleICMPv4 implements packet_analyze_icmp4: ICMP carries its own
// checksum over the whole message with no pseudo-header, so it is
// validated directly against the raw bytes rather than fl's partial
// sum. Only echo requests get a reply; every packet still produces one
// CSV record whose trailer is "type.code".
func (p *Pipeline) handleICMPv4(fl *flow, data []byte) error {
	if len(data) < icmpHeaderLen {
		metrics.malformedTotal.WithLabelValues("icmp").Inc()
		return nil
	}
	if !checksum.Valid(0, data) {
		metrics.malformedTotal.WithLabelValues("icmp").Inc()
		return nil
	}

	typ, code := data[0], data[1]
	id := uint16(data[4])<<8 | uint16(data[5])
	seq := uint16(data[6])<<8 | uint16(data[7])
	body := data[icmpHeaderLen:]

	p.csv.Record(fl.ts, fl.src, 0, fl.dst, 0, "ICMP", len(body),
		fmt.Sprintf("%d.%d", typ, code))
	metrics.packetsTotal.WithLabelValues("icmp").Inc()

	if typ == uint8(layers.ICMPv4TypeEchoRequest) {
		return p.replyICMPEcho(fl, id, seq, body)
	}
	return nil
}

// replyICMPEcho answers an echo request in kind, copying the identifier,
// sequence number, and payload, as icmp4_reply does.
func (p *Pipeline) replyICMPEcho(fl *flow, id, seq uint16, body []byte) error {
	ipLayer := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    ip4ToNetIP(fl.dst),
		DstIP:    ip4ToNetIP(fl.src),
	}
	icmpLayer := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0),
		Id:       id,
		Seq:      seq,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ipLayer, icmpLayer, gopacket.Payload(body)); err != nil {
		return err
	}
	return p.sendIPv4(buf.Bytes(), fl)
}

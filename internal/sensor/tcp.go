package sensor

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/checksum"
)

// flytrapSeq is the single, fixed sequence number every TCP reply uses,
// matching FLYTRAP_TCP4_SEQ — the sensor never tracks per-connection
// state, so there is nothing to vary it against.
const flytrapSeq = 0x18110902

// tcpFlagLetters renders TCP flag booleans into the NCEUAPRSF string
// csv_tcp4 builds, reading gopacket's decoded booleans instead of
// hand-parsing the flags byte.
func tcpFlagLetters(tcp *layers.TCP) string {
	flags := []byte("NCEUAPRSF")
	set := []bool{tcp.NS, tcp.CWR, tcp.ECE, tcp.URG, tcp.ACK, tcp.PSH, tcp.RST, tcp.SYN, tcp.FIN}
	for i, on := range set {
		if !on {
			flags[i] = '-'
		}
	}
	return string(flags)
}

// handleTCP implements packet_analyze_tcp4: every well-formed,
// checksum-valid segment produces one CSV record, after which exactly
// one of four canned, connectionless replies may be sent. FIN is
// logged but never answered — keeping real TCP state across a FIN
// would mean tracking connections, which is out of scope for a sensor
// with no buffer to hold them in.
func (p *Pipeline) handleTCP(fl *flow, data []byte) error {
	tcp := &layers.TCP{}
	if err := tcp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		metrics.malformedTotal.WithLabelValues("tcp").Inc()
		return nil
	}
	hdrLen := int(tcp.DataOffset) * 4
	if hdrLen < 20 || hdrLen > len(data) {
		metrics.malformedTotal.WithLabelValues("tcp").Inc()
		return nil
	}
	if !checksum.Valid(fl.pseudoPartial, data) {
		metrics.malformedTotal.WithLabelValues("tcp").Inc()
		return nil
	}

	payload := data[hdrLen:]
	p.csv.Record(fl.ts, fl.src, int(tcp.SrcPort), fl.dst, int(tcp.DstPort),
		"TCP", len(payload), tcpFlagLetters(tcp))
	metrics.packetsTotal.WithLabelValues("tcp").Inc()

	switch {
	case tcp.SYN && tcp.ACK:
		// tcp4_go_away: RST, ack = inbound seq
		return p.replyTCP(fl, tcp, false, false, true, uint32(tcp.Seq))
	case tcp.SYN:
		// tcp4_hello: SYN/ACK, ack = inbound seq + 1
		return p.replyTCP(fl, tcp, true, true, false, tcp.Seq+1)
	case tcp.FIN:
		// disabled: answering FIN correctly needs connection state
		return nil
	case tcp.RST:
		return nil
	case len(payload) > 0:
		// tcp4_please_hold: ACK (preserving inbound SYN), ack = inbound seq
		return p.replyTCP(fl, tcp, tcp.SYN, true, false, tcp.Seq)
	default:
		return nil
	}
}

// replyTCP sends a reply segment with the given flags and ack number, a
// fixed sequence number, and a zero window, mirroring
// tcp4_go_away/tcp4_hello/tcp4_please_hold.
func (p *Pipeline) replyTCP(fl *flow, itcp *layers.TCP, syn, ack, rst bool, ackNum uint32) error {
	ipLayer := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    ip4ToNetIP(fl.dst),
		DstIP:    ip4ToNetIP(fl.src),
	}
	otcp := &layers.TCP{
		SrcPort: itcp.DstPort,
		DstPort: itcp.SrcPort,
		Seq:     flytrapSeq,
		Ack:     ackNum,
		SYN:     syn,
		ACK:     ack,
		RST:     rst,
		Window:  0,
	}
	if err := otcp.SetNetworkLayerForChecksum(ipLayer); err != nil {
		return err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ipLayer, otcp); err != nil {
		return err
	}
	return p.sendIPv4(buf.Bytes(), fl)
}

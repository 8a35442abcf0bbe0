package sensor

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/arpclaim"
)

const (
	idxEth int = iota
	idxARP
	idxIPv4
	idxICMPv4
	idxTCP
	idxUDP
	idxMAX
)

// Pipeline holds the decoding layers and state a running sensor needs
// to turn captured frames into claim-tree updates, CSV records, and
// honeypot replies.
type Pipeline struct {
	cfg    *Config
	cap    Capture
	claims *arpclaim.Tree
	csv    *csvWriter

	decodeLayers []gopacket.DecodingLayer
	parser       *gopacket.DecodingLayerParser
	decoded      []gopacket.LayerType

	eth   layers.Ethernet
	arp   layers.ARP
	ip4   layers.IPv4
	icmp4 layers.ICMPv4
	tcp   layers.TCP
	udp   layers.UDP
}

// NewPipeline builds a Pipeline around cfg and cap, opening the CSV
// destination cfg.CSVPath names (stdout if empty) and wiring the
// DecodingLayerParser the same way sampler.go's sampleInit does.
func NewPipeline(cfg *Config, cap Capture) (*Pipeline, error) {
	w, err := openCSV(cfg.CSVPath)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		cap:    cap,
		claims: arpclaim.New(),
		csv:    w,
	}

	p.decodeLayers = make([]gopacket.DecodingLayer, idxMAX)
	p.decodeLayers[idxEth] = &p.eth
	p.decodeLayers[idxARP] = &p.arp
	p.decodeLayers[idxIPv4] = &p.ip4
	p.decodeLayers[idxICMPv4] = &p.icmp4
	p.decodeLayers[idxTCP] = &p.tcp
	p.decodeLayers[idxUDP] = &p.udp

	p.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, p.decodeLayers...)
	p.parser.IgnoreUnsupported = true

	return p, nil
}

// Reserve marks addr as never-claimed, for addresses the sensor must
// never answer ARP for (its own address, gateways, and the like).
func (p *Pipeline) Reserve(addr uint32) {
	p.claims.Reserve(addr)
}

// Close flushes and closes the CSV destination.
func (p *Pipeline) Close() error {
	return p.csv.Close()
}

// ReopenCSV implements the SIGHUP log-rotation contract: a new handle
// is opened before the old one is closed, so a failed reopen leaves
// logging intact.
func (p *Pipeline) ReopenCSV() error {
	return p.csv.Reopen()
}

// ProcessPacket decodes one captured frame and dispatches it to the
// matching handler, mirroring decodeOnePacket's loop over the decoded
// layer list.
func (p *Pipeline) ProcessPacket(data []byte, ts Timestamp) error {
	if err := p.parser.DecodeLayers(data, &p.decoded); err != nil {
		metrics.malformedTotal.WithLabelValues("decode").Inc()
		return nil
	}

	var sawEth bool
	for _, typ := range p.decoded {
		switch typ {
		case layers.LayerTypeEthernet:
			sawEth = true
		case layers.LayerTypeARP:
			if !sawEth {
				continue
			}
			metrics.packetsTotal.WithLabelValues("arp").Inc()
			if err := p.handleARP(&p.arp, &p.eth, ts); err != nil {
				return err
			}
		case layers.LayerTypeIPv4:
			if !sawEth {
				continue
			}
			if err := p.handleIPv4(&p.ip4, &p.eth, p.ip4.Payload, ts); err != nil {
				return err
			}
		}
	}
	return nil
}

// ip4ToNetIP renders an address back into a net.IP the way netutil's
// Uint32ToIPAddr does, kept local to sensor to avoid every reply path
// importing netutil for one call.
func ip4ToNetIP(a uint32) net.IP {
	return net.IPv4(byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}

// sendIPv4 wraps a serialized IPv4 datagram in an Ethernet frame
// addressed back to fl's originator and transmits it, the same
// send-the-frame-you-just-built step tcp4_reply/icmp4_reply perform
// after constructing their IP payload.
func (p *Pipeline) sendIPv4(ipPacket []byte, fl *flow) error {
	ethLayer := &layers.Ethernet{
		SrcMAC:       p.cfg.MAC,
		DstMAC:       fl.srcMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, gopacket.Payload(ipPacket)); err != nil {
		return err
	}
	if p.cfg.DryRun {
		return nil
	}
	return p.cap.WritePacketData(buf.Bytes())
}

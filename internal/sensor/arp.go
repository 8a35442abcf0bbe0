package sensor

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/unioslo/flytrap/internal/arpclaim"
	"github.com/unioslo/flytrap/internal/netutil"
)

// handleARP implements packet_analyze_arp: it registers both addresses
// of an ARP reply into the claim tree; for a "who-has" request whose
// target is within bounds, it registers the sender, consults the claim
// state machine and, on Claim, sends an "is-at" reply forging p.mac as
// the answer. A request whose target is out of bounds registers nothing.
func (p *Pipeline) handleARP(arp *layers.ARP, eth *layers.Ethernet, ts Timestamp) error {
	if arp.AddrType != layers.LinkTypeEthernet || arp.HwAddressSize != 6 ||
		arp.Protocol != layers.EthernetTypeIPv4 || arp.ProtAddressSize != 4 {
		return nil
	}

	when := ts.Millis()
	sender := be32(arp.SourceProtAddress)
	senderEther := netutil.ToEther(net.HardwareAddr(arp.SourceHwAddress))

	switch arp.Operation {
	case layers.ARPRequest:
		target := be32(arp.DstProtAddress)
		verdict := p.claims.OnWhoHas(target, sender, senderEther, when, p.cfg.DstSet)
		if verdict == arpclaim.Claim {
			if err := p.replyARP(arp, eth); err != nil {
				return err
			}
			metrics.claimsTotal.Inc()
		}
	case layers.ARPReply:
		target := be32(arp.DstProtAddress)
		targetEther := netutil.ToEther(net.HardwareAddr(arp.DstHwAddress))
		p.claims.OnIsAt(sender, target, senderEther, targetEther, when)
	default:
		return nil
	}

	p.claims.MaybeExpire(when)
	return nil
}

// replyARP builds and transmits an "is-at" reply claiming that
// p.mac answers for the requested target protocol address.
func (p *Pipeline) replyARP(req *layers.ARP, reqEth *layers.Ethernet) error {
	replyEth := layers.Ethernet{
		SrcMAC:       p.cfg.MAC,
		DstMAC:       reqEth.SrcMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	reply := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPReply,
		SourceHwAddress:   []byte(p.cfg.MAC),
		SourceProtAddress: req.DstProtAddress,
		DstHwAddress:      req.SourceHwAddress,
		DstProtAddress:    req.SourceProtAddress,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, &replyEth, &reply); err != nil {
		return err
	}
	if p.cfg.DryRun {
		return nil
	}
	return p.cap.WritePacketData(buf.Bytes())
}

func be32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

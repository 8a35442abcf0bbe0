package sensor

import (
	"github.com/unioslo/flytrap/internal/checksum"
)

const udpHeaderLen = 8

// handleUDP implements packet_analyze_udp4: the checksum is verified
// only if the sender supplied one (a zero checksum field means "none,"
// as UDP over IPv4 allows), and UDP never gets a reply — it is logged
// and nothing else.
func (p *Pipeline) handleUDP(fl *flow, data []byte) error {
	if len(data) < udpHeaderLen {
		metrics.malformedTotal.WithLabelValues("udp").Inc()
		return nil
	}
	sp := int(data[0])<<8 | int(data[1])
	dp := int(data[2])<<8 | int(data[3])
	csum := uint16(data[6])<<8 | uint16(data[7])

	if csum != 0 && !checksum.Valid(fl.pseudoPartial, data) {
		metrics.malformedTotal.WithLabelValues("udp").Inc()
		return nil
	}

	payload := data[udpHeaderLen:]
	p.csv.Record(fl.ts, fl.src, sp, fl.dst, dp, "UDP", len(payload), "")
	metrics.packetsTotal.WithLabelValues("udp").Inc()
	return nil
}

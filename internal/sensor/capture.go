package sensor

import (
	"time"

	"github.com/google/gopacket/pcap"
)

// Capture is the live-packet-source boundary, modeled as an interface
// (rather than a concrete *pcap.Handle) the way the teacher's sampler
// and arpspoof tools wrap pcap.Handle behind small helper functions, so
// the pipeline can be driven by canned frames in tests without linking
// libpcap.
type Capture interface {
	ReadPacketData() (data []byte, ts time.Time, err error)
	WritePacketData(data []byte) error
	Close()
}

// pcapCapture adapts a *pcap.Handle to Capture.
type pcapCapture struct {
	handle *pcap.Handle
}

// OpenLive opens iface for live capture and injection, the same
// pcap.OpenLive(iface, 65536, true, pcap.BlockForever) call the
// teacher's arpspoof and sampler tools make, with bpf applied as the
// capture filter.
func OpenLive(iface, bpf string) (Capture, error) {
	handle, err := pcap.OpenLive(iface, 65536, true, pcap.BlockForever)
	if err != nil {
		return nil, err
	}
	if bpf != "" {
		if err := handle.SetBPFFilter(bpf); err != nil {
			handle.Close()
			return nil, err
		}
	}
	return &pcapCapture{handle: handle}, nil
}

func (c *pcapCapture) ReadPacketData() ([]byte, time.Time, error) {
	data, ci, err := c.handle.ReadPacketData()
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, ci.Timestamp, nil
}

func (c *pcapCapture) WritePacketData(data []byte) error {
	return c.handle.WritePacketData(data)
}

func (c *pcapCapture) Close() {
	c.handle.Close()
}

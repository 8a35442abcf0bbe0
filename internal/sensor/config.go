package sensor

import (
	"net"

	"github.com/unioslo/flytrap/internal/ipset"
)

// Config holds everything the sensor needs to run, assembled by
// cmd/flytrap's flag parsing (see ipset.Flag for the repeatable
// -I/-i/-X/-x flags).
type Config struct {
	Iface   string
	MAC     net.HardwareAddr
	CSVPath string // empty means stdout, matching csv_open(NULL)

	SrcSet *ipset.Tree // nil means unrestricted; restricts which source addresses are logged/replied to at all
	DstSet *ipset.Tree // nil means unrestricted; also bounds which targets the ARP claim state machine may claim

	MetricsAddr string // empty disables the metrics server
	Verbose     bool
	Debug       bool
	DryRun      bool
}

// BPFFilter builds the capture filter spec §6 requires: ARP traffic, or
// Ethernet traffic destined for our own MAC or the broadcast address.
func (c *Config) BPFFilter() string {
	if c.MAC == nil {
		return "arp or ether dst ff:ff:ff:ff:ff:ff"
	}
	return "arp or ether dst " + c.MAC.String() + " or ether dst ff:ff:ff:ff:ff:ff"
}

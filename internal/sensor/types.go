package sensor

import (
	"fmt"
	"net"
)

// Timestamp is the packet-capture time the whole pipeline reasons
// about; all expiry and claim-timeout arithmetic is driven by this
// value, never by the wall clock, so that replaying a capture produces
// identical claim decisions.
type Timestamp struct {
	Sec  int64
	Usec int64
}

// Millis returns t truncated to milliseconds, the unit the ARP claim
// state machine's thresholds are expressed in.
func (t Timestamp) Millis() uint64 {
	return uint64(t.Sec)*1000 + uint64(t.Usec)/1000
}

// String renders t the way csv.c's "%llu.%06lu" format does.
func (t Timestamp) String() string {
	return fmt.Sprintf("%d.%06d", t.Sec, t.Usec)
}

// flow carries the per-packet addressing context that each IPv4
// sub-protocol handler needs to log a CSV record and, if warranted,
// build a reply: the capture timestamp, the decoded source/destination
// addresses, and the partial pseudo-header checksum covering them.
type flow struct {
	ts            Timestamp
	src, dst      uint32
	proto         uint8
	pseudoPartial uint16
	srcMAC        net.HardwareAddr
}

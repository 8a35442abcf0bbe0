package sensor

import (
	"bufio"
	"fmt"
	"os"
)

// csvWriter appends CSV records for every logged packet, matching the
// schema and field order of csv_packet4: timestamp, source address,
// source port, destination address, destination port, protocol name,
// payload length, then a protocol-specific trailer (TCP flags,
// ICMP type.code, or nothing for UDP).
type csvWriter struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// openCSV opens path for appending, or stdout if path is empty,
// matching csv_open's nf = fopen(csvfn, "a") / stdout split.
func openCSV(path string) (*csvWriter, error) {
	if path == "" {
		return &csvWriter{w: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &csvWriter{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Reopen opens a fresh handle on c.path and only then closes the old
// one, the same ordering csv_open uses so a SIGHUP can never leave the
// sensor without a writable log file.
func (c *csvWriter) Reopen() error {
	if c.path == "" {
		return nil
	}
	nf, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	of, ow := c.f, c.w
	c.f, c.w = nf, bufio.NewWriter(nf)
	if ow != nil {
		ow.Flush()
	}
	if of != nil {
		of.Close()
	}
	return nil
}

// Record writes one CSV line and flushes it immediately, matching
// csv_packet4's fflush-after-every-record behavior.
func (c *csvWriter) Record(ts Timestamp, sa uint32, sp int, da uint32, dp int, proto string, length int, trailer string) {
	fmt.Fprintf(c.w, "%s,%d.%d.%d.%d,%d,%d.%d.%d.%d,%d,%s,%d,%s\n",
		ts.String(),
		sa>>24&0xff, sa>>16&0xff, sa>>8&0xff, sa&0xff, sp,
		da>>24&0xff, da>>16&0xff, da>>8&0xff, da&0xff, dp,
		proto, length, trailer)
	c.w.Flush()
	metrics.csvRecordsTotal.Inc()
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	if c.f != nil {
		return c.f.Close()
	}
	return nil
}

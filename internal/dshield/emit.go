package dshield

import (
	"fmt"
	"io"
	"time"
)

// Header writes the DShield submission's email preamble, matching
// ft2header: a Date/From/To/Subject block followed by a blank line.
func Header(w io.Writer, sender, recipient string, userid uint64, now time.Time) {
	utc := now.UTC()
	fmt.Fprintf(w, "Date: %s\n", utc.Format("02 Jan 2006 15:04:05 -0700"))
	fmt.Fprintf(w, "From: %s\n", sender)
	fmt.Fprintf(w, "To: %s\n", recipient)
	fmt.Fprintf(w, "Subject: FORMAT DSHIELD USERID %d TZ +0000 flytrap\n", userid)
	fmt.Fprintf(w, "\n")
}

// Emit writes one record as a tab-separated DShield line: local
// timestamp, userid, a constant log-count of 1, source address, source
// port, destination address, destination port, protocol name, and the
// TCP flag letters (empty for ICMP and UDP; an ICMP record carries its
// type and code in the port columns), matching ftlogprint's printf.
func Emit(w io.Writer, r Record, userid uint64, loc *time.Location) {
	t := time.Unix(r.Sec, 0)
	if loc != nil {
		t = t.In(loc)
	}
	tstr := t.Format("2006-01-02 15:04:05 -0700")

	var trailer string
	if r.Proto == "TCP" {
		trailer = r.Flags
	}

	fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%s\t%d\t%s\t%s\n",
		tstr, userid, 1,
		addr(r.SrcAddr), r.SrcPort,
		addr(r.DstAddr), r.DstPort,
		r.Proto, trailer)
}

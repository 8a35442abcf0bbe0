package dshield

import (
	"bufio"
	"fmt"
	"io"
	"log"

	"github.com/unioslo/flytrap/internal/ipset"
)

// Filter bounds which records Scan emits: a time window, and optional
// source/destination address sets, mirroring ft2dshield's fromdate/
// todate/src_set/dst_set globals.
type Filter struct {
	FromSec, ToSec int64
	SrcSet, DstSet *ipset.Tree
}

// match reports whether r passes f, the same four checks
// ft2dshield's main loop runs in order before calling ftlogprint.
func (f Filter) match(r Record) bool {
	if r.Sec < f.FromSec || r.Sec > f.ToSec {
		return false
	}
	if f.SrcSet != nil && !f.SrcSet.Lookup(r.SrcAddr) {
		return false
	}
	if f.DstSet != nil && !f.DstSet.Lookup(r.DstAddr) {
		return false
	}
	return true
}

// Scan reads CSV lines from r, filters them through f, and emits the
// survivors to w as tab-separated DShield records, logging and
// skipping unparseable lines the way ft2dshield's main loop does
// rather than aborting the whole file.
func Scan(r io.Reader, w io.Writer, f Filter, userid uint64, name string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	lno := 0
	for sc.Scan() {
		lno++
		rec, err := Parse(sc.Text())
		if err != nil {
			log.Printf("%s:%d: unparseable log entry: %v", name, lno, err)
			continue
		}
		if !f.match(rec) {
			continue
		}
		Emit(w, rec, userid, nil)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

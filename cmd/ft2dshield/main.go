// Command ft2dshield reformats flytrap's CSV log into the tab-separated
// record format the DShield project's submission pipeline expects,
// optionally filtering by address set and time window.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/unioslo/flytrap/internal/dshield"
	"github.com/unioslo/flytrap/internal/ipset"
)

const defaultRecipient = "reports@dshield.org"

var (
	debug     = flag.Bool("d", false, "enable debug logging")
	verbose   = flag.Bool("v", false, "enable verbose logging")
	output    = flag.String("o", "", "output file (default: stdout)")
	recipient = flag.String("r", "", "email To: address (requires -s)")
	sender    = flag.String("s", "", "email From: address (requires -u)")
	userFlag  = flag.Uint64("u", 0, "DShield submitter userid")
	fromFlag  = flag.String("f", "", "only emit records at or after this date")
	toFlag    = flag.String("t", "", "only emit records at or before this date")

	srcSet *ipset.Tree
	dstSet *ipset.Tree
)

func init() {
	flag.Var(ipset.Flag{Set: &srcSet}, "I", "add to source include set (repeatable)")
	flag.Var(ipset.Flag{Set: &srcSet, Invert: true}, "X", "remove from source include set (repeatable)")
	flag.Var(ipset.Flag{Set: &dstSet}, "i", "add to destination include set (repeatable)")
	flag.Var(ipset.Flag{Set: &dstSet, Invert: true}, "x", "remove from destination include set (repeatable)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: ft2dshield [-dhv] [-o output] [-r recipient] [-s sender] "+
		"[-u userid]\n                   [-Ii addr|range|subnet] [-Xx addr|range|subnet] "+
		"[-f fromdate] [-t todate] [file ...]\n")
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *recipient != "" && *sender == "" {
		usage()
	}
	if *sender != "" && *userFlag == 0 {
		usage()
	}

	now := time.Now()
	from := int64(0)
	to := int64(1<<63 - 1)
	if *fromFlag != "" {
		t, err := dshield.ParseDate(*fromFlag, false, now)
		if err != nil {
			log.Fatalf("%v", err)
		}
		from = t.Unix()
	}
	if *toFlag != "" {
		t, err := dshield.ParseDate(*toFlag, true, now)
		if err != nil {
			log.Fatalf("%v", err)
		}
		to = t.Unix()
	}

	var out *os.File
	if *output != "" {
		f, err := os.OpenFile(*output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("%s: %v", *output, err)
		}
		defer f.Close()
		out = f
	} else {
		out = os.Stdout
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	if *sender != "" {
		to := *recipient
		if to == "" {
			to = defaultRecipient
		}
		dshield.Header(w, *sender, to, *userFlag, now)
	}

	f := dshield.Filter{FromSec: from, ToSec: to, SrcSet: srcSet, DstSet: dstSet}

	files := flag.Args()
	if len(files) == 0 {
		if err := dshield.Scan(os.Stdin, w, f, *userFlag, "stdin"); err != nil {
			log.Printf("%v", err)
		}
		return
	}
	for _, name := range files {
		in, err := os.Open(name)
		if err != nil {
			log.Printf("%s: %v", name, err)
			continue
		}
		err = dshield.Scan(in, w, f, *userFlag, name)
		in.Close()
		if err != nil {
			log.Printf("%v", err)
		}
	}
}

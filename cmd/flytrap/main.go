// Command flytrap is a passive-active darknet sensor: it listens for
// ARP, ICMP, TCP and UDP traffic destined for unused addresses, claims
// them over ARP once enough who-has requests go unanswered, and logs
// every packet it sees to CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/unioslo/flytrap/internal/ipset"
	"github.com/unioslo/flytrap/internal/pidfile"
	"github.com/unioslo/flytrap/internal/sensor"
)

var (
	macFlag     = flag.String("m", "", "Ethernet address to answer ARP and carry replies with (default: interface address)")
	csvFile     = flag.String("l", "/var/csv/flytrap.csv", "CSV output path (empty for stdout)")
	pidFile     = flag.String("p", "/var/run/flytrap.pid", "pidfile path")
	logFile     = flag.String("logfile", "", "diagnostic log file (default: stderr)")
	metricsAddr = flag.String("promhttp-address", "", "Prometheus /metrics listen address (empty disables)")
	foreground  = flag.Bool("f", false, "run in the foreground instead of daemonizing")
	debug       = flag.Bool("d", false, "enable debug logging")
	verbose     = flag.Bool("v", false, "enable verbose logging")
	dryRun      = flag.Bool("n", false, "decode and log traffic but never transmit a reply")

	srcSet *ipset.Tree
	dstSet *ipset.Tree
)

// -I/-X (source set) are an expansion beyond spec §6's CLI, generalizing
// the same engine -i/-x already needs for the destination set; -i/-x
// match spec §6 exactly: add to / remove from the destination include
// set, repeatable, accepting an address, range, or CIDR block.
func init() {
	flag.Var(ipset.Flag{Set: &srcSet}, "I", "add to source include set (repeatable)")
	flag.Var(ipset.Flag{Set: &srcSet, Invert: true}, "X", "remove from source include set (repeatable)")
	flag.Var(ipset.Flag{Set: &dstSet}, "i", "add to destination include set (repeatable)")
	flag.Var(ipset.Flag{Set: &dstSet, Invert: true}, "x", "remove from destination include set (repeatable)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: flytrap [-dfnv] [-i include_range] [-l csvpath] [-p pidfile]\n")
	fmt.Fprintf(os.Stderr, "               [-x exclude_range] interface\n")
	os.Exit(1)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}
	iface := flag.Arg(0)

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		log.SetOutput(f)
	}

	var mac net.HardwareAddr
	if *macFlag != "" {
		m, err := net.ParseMAC(*macFlag)
		if err != nil {
			log.Fatalf("invalid -m address: %v", err)
		}
		mac = m
	} else {
		ifi, err := net.InterfaceByName(iface)
		if err != nil {
			log.Fatalf("looking up interface %s: %v", iface, err)
		}
		mac = ifi.HardwareAddr
	}

	// -f is accepted for CLI compatibility but has no effect: the
	// process always runs attached to its controlling terminal, relying
	// on an init system for backgrounding (Go has no daemon(3)
	// equivalent — see DESIGN.md). The pidfile lock is always taken
	// either way, to refuse a second instance.
	pf, err := pidfile.Open(*pidFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := pf.Write(); err != nil {
		log.Fatalf("writing pidfile: %v", err)
	}
	defer pf.Close()

	cfg := &sensor.Config{
		Iface:       iface,
		MAC:         mac,
		CSVPath:     *csvFile,
		SrcSet:      srcSet,
		DstSet:      dstSet,
		MetricsAddr: *metricsAddr,
		Verbose:     *verbose,
		Debug:       *debug,
		DryRun:      *dryRun,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := sensor.Run(ctx, cfg, nil); err != nil {
		log.Fatalf("%v", err)
	}
}

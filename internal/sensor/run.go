package sensor

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run opens cfg's interface for capture and injection and processes
// packets until ctx is canceled, the same fetch-decode-react loop
// flytrap.c's main runs, plus the SIGHUP-driven log reopen ap.filterd
// wires its signal handling the same way for. init, if non-nil, runs
// once the Pipeline exists and before the first packet is read, so a
// caller can reserve addresses the claim tree must never answer for.
func Run(ctx context.Context, cfg *Config, init func(*Pipeline)) error {
	cap, err := OpenLive(cfg.Iface, cfg.BPFFilter())
	if err != nil {
		return err
	}
	defer cap.Close()

	p, err := NewPipeline(cfg, cap)
	if err != nil {
		return err
	}
	defer p.Close()

	if init != nil {
		init(p)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	}

	hup := &hupFlag{}
	stopHUP := watchSIGHUP(hup)
	defer stopHUP()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if hup.testAndClear() {
			if err := p.ReopenCSV(); err != nil {
				log.Printf("reopening log: %v", err)
			}
		}

		data, capTime, err := cap.ReadPacketData()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("read packet: %v", err)
			continue
		}

		ts := Timestamp{Sec: capTime.Unix(), Usec: int64(capTime.Nanosecond() / 1000)}
		if err := p.ProcessPacket(data, ts); err != nil {
			log.Printf("process packet: %v", err)
		}
	}
}

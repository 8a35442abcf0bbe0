package sensor

import "github.com/prometheus/client_golang/prometheus"

// metrics mirrors the counter set ap.dhcp4d and ap.filterd register at
// package scope and publish via promhttp.Handler() — a sensor whose job
// is counting suspicious traffic is exactly the shape Prometheus
// counters are for.
var metrics = struct {
	packetsTotal    *prometheus.CounterVec
	malformedTotal  *prometheus.CounterVec
	claimsTotal     prometheus.Counter
	csvRecordsTotal prometheus.Counter
}{
	packetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flytrap_packets_total",
		Help: "Packets seen by layer type.",
	}, []string{"layer"}),
	malformedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flytrap_malformed_packets_total",
		Help: "Packets dropped for a length or checksum failure, by layer.",
	}, []string{"layer"}),
	claimsTotal: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flytrap_arp_claims_total",
		Help: "Addresses claimed via the ARP state machine.",
	}),
	csvRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flytrap_csv_records_total",
		Help: "CSV records written to the log.",
	}),
}

func init() {
	prometheus.MustRegister(metrics.packetsTotal)
	prometheus.MustRegister(metrics.malformedTotal)
	prometheus.MustRegister(metrics.claimsTotal)
	prometheus.MustRegister(metrics.csvRecordsTotal)
}

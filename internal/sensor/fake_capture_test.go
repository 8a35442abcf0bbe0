package sensor

import (
	"bufio"
	"bytes"
	"time"
)

// fakeCapture records every frame WritePacketData is given, for tests
// that need to inspect a reply without linking libpcap.
type fakeCapture struct {
	written [][]byte
}

func (f *fakeCapture) ReadPacketData() ([]byte, time.Time, error) {
	return nil, time.Time{}, nil
}

func (f *fakeCapture) WritePacketData(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeCapture) Close() {}

func newTestPipeline() (*Pipeline, *fakeCapture) {
	cap := &fakeCapture{}
	cfg := &Config{}
	p, err := NewPipeline(cfg, cap)
	if err != nil {
		panic(err)
	}
	return p, cap
}

// newBufCSVPipeline is like newTestPipeline but redirects CSV records
// to an in-memory buffer so tests can assert on logged fields directly.
func newBufCSVPipeline() (*Pipeline, *fakeCapture, *bytes.Buffer) {
	p, cap := newTestPipeline()
	var buf bytes.Buffer
	p.csv = &csvWriter{w: bufio.NewWriter(&buf)}
	return p, cap, &buf
}

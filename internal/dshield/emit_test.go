package dshield

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitFormatsTabSeparatedRecord(t *testing.T) {
	r := Record{
		Sec: 1501234567, SrcAddr: 10<<24 | 1, DstAddr: 10<<24 | 7,
		SrcPort: 1234, DstPort: 80, Proto: "TCP", Flags: "S",
	}
	var buf bytes.Buffer
	Emit(&buf, r, 12345, time.UTC)
	got := buf.String()
	assert.Contains(t, got, "12345")
	assert.Contains(t, got, "10.0.0.1")
	assert.Contains(t, got, "10.0.0.7")
	assert.Contains(t, got, "TCP")
	assert.Contains(t, got, "\tS\n")
}

func TestHeaderIncludesSenderAndUserid(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "sensor@example.org", "reports@dshield.org", 777, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	got := buf.String()
	assert.Contains(t, got, "From: sensor@example.org")
	assert.Contains(t, got, "To: reports@dshield.org")
	assert.Contains(t, got, "USERID 777")
	assert.True(t, len(got) > 0 && got[len(got)-1] == '\n')
}

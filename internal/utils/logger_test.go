package utils

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestLogEventFormat(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	LogEvent("req-123", "facture", "emettre", "facture_id=3")
	line := buf.String()
	if !strings.Contains(line, "[FACTURE] action=emettre request_id=req-123 msg=facture_id=3") {
		t.Fatalf("unexpected log line: %q", line)
	}

	buf.Reset()
	LogEvent("", "import", "done", "created=1")
	if !strings.Contains(buf.String(), "request_id=- ") {
		t.Fatalf("blank request id not normalized: %q", buf.String())
	}
}

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/httpresponse"
)

func TestDefaultReportIncludesColumns(t *testing.T) {
	var buf bytes.Buffer
	sink := New(config.OutputDefault, &buf, nil)
	r := httpresponse.New("http://x/admin", "http://x/admin", "GET", 200, "one two\nthree", nil, 42)
	sink.Report(r, false)

	out := buf.String()
	if !strings.Contains(out, "http://x/admin") {
		t.Fatalf("missing URL in output: %q", out)
	}
	if !strings.Contains(out, "200") {
		t.Fatalf("missing status in output: %q", out)
	}
}

func TestSilentReportIsURLOnly(t *testing.T) {
	var buf bytes.Buffer
	sink := New(config.OutputSilent, &buf, nil)
	r := httpresponse.New("http://x/admin", "http://x/admin", "GET", 200, "", nil, 0)
	sink.Report(r, false)

	if strings.TrimSpace(buf.String()) != "http://x/admin" {
		t.Fatalf("silent output = %q", buf.String())
	}
}

func TestSilentJSONReportCarriesTypeDiscriminator(t *testing.T) {
	var buf bytes.Buffer
	sink := New(config.OutputSilentJSON, &buf, nil)
	r := httpresponse.New("http://x/admin", "http://x/admin", "GET", 200, "", nil, 0)
	sink.Report(r, false)

	if !strings.Contains(buf.String(), `"type":"response"`) {
		t.Fatalf("json output missing type discriminator: %q", buf.String())
	}
}

func TestReportMirrorsToFile(t *testing.T) {
	var term, file bytes.Buffer
	sink := New(config.OutputDefault, &term, &file)
	r := httpresponse.New("http://x/", "http://x/", "GET", 200, "", nil, 0)
	sink.Report(r, false)

	if term.String() == "" || file.String() == "" {
		t.Fatal("expected both term and file writers to receive the line")
	}
}

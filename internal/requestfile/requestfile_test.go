package requestfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempRequest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "request.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAbsoluteURI(t *testing.T) {
	path := writeTempRequest(t, "GET http://target.local/admin HTTP/1.1\r\nHost: target.local\r\nUser-Agent: test\r\n\r\n")
	req, err := Parse(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Method != "GET" || req.URL != "http://target.local/admin" {
		t.Fatalf("got method=%s url=%s", req.Method, req.URL)
	}
	if req.Headers["User-Agent"] != "test" {
		t.Fatalf("headers = %v", req.Headers)
	}
}

func TestParseRelativeURIUsesHostHeader(t *testing.T) {
	path := writeTempRequest(t, "POST /login HTTP/1.1\nHost: target.local\n\nuser=admin&pass=hunter2")
	req, err := Parse(path, "https")
	if err != nil {
		t.Fatal(err)
	}
	if req.URL != "https://target.local/login" {
		t.Fatalf("url = %s", req.URL)
	}
	if req.Body != "user=admin&pass=hunter2" {
		t.Fatalf("body = %q", req.Body)
	}
}

func TestMergeCLIHeadersWinOnConflict(t *testing.T) {
	req := &Request{Headers: map[string]string{"X-Test": "file"}}
	req.Merge(map[string]string{"X-Test": "cli"}, "", nil)
	if req.Headers["X-Test"] != "cli" {
		t.Fatalf("expected CLI header to win, got %q", req.Headers["X-Test"])
	}
}

func TestMergeCookiesUnionsWithCLIPrecedence(t *testing.T) {
	req := &Request{Headers: map[string]string{"Cookie": "session=old; theme=dark"}}
	req.Merge(nil, "", map[string]string{"session": "new"})

	merged := req.Headers["Cookie"]
	if !contains(merged, "session=new") || !contains(merged, "theme=dark") {
		t.Fatalf("merged cookie jar = %q", merged)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

package httpresponse

import "testing"

func TestLineWordCountConsistentAfterDrop(t *testing.T) {
	r := New("http://h/a", "http://h/a", "GET", 200, "line one\nline two\n", nil, 18)
	wantLines, wantWords := r.LineCount, r.WordCount
	r.DropBody()
	if r.Text() != "" {
		t.Errorf("expected empty text after DropBody")
	}
	if r.LineCount != wantLines || r.WordCount != wantWords {
		t.Errorf("counts changed after DropBody: lines=%d words=%d", r.LineCount, r.WordCount)
	}
	if r.ContentLength != 18 {
		t.Errorf("ContentLength changed after DropBody: %d", r.ContentLength)
	}
}

func TestIsDirectoryRedirect(t *testing.T) {
	r := New("http://h/api", "http://h/api", "GET", 301, "", map[string]string{"Location": "http://h/api/"}, 0)
	if !r.IsDirectory() {
		t.Error("expected directory via redirect")
	}
}

func TestIsDirectoryTrailingSlash(t *testing.T) {
	r := New("http://h/api/", "http://h/api/", "GET", 200, "", nil, 0)
	if !r.IsDirectory() {
		t.Error("expected directory via trailing slash")
	}
}

func TestIsDirectoryFalse(t *testing.T) {
	r := New("http://h/file.txt", "http://h/file.txt", "GET", 200, "", nil, 0)
	if r.IsDirectory() {
		t.Error("did not expect directory")
	}
}

func TestParseExtension(t *testing.T) {
	r := New("http://h/a/b.php", "http://h/a/b.php", "GET", 200, "", nil, 0)
	if ext := r.ParseExtension(); ext != "php" {
		t.Errorf("got %q", ext)
	}
}

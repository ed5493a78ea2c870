package urlutil

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{"http://h", "http://h/", "http://h/a", "http://h/a/b/"}
	for _, c := range cases {
		once, err := Normalize(c)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", c, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)): %v", c, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", c, once, twice)
		}
	}
}

func TestDepth(t *testing.T) {
	cases := map[string]int{
		"http://h":     1,
		"http://h/":    1,
		"http://h/a":   2,
		"http://h/a/":  2,
		"http://h/a/b": 3,
	}
	for in, want := range cases {
		if got := Depth(in); got != want {
			t.Errorf("Depth(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestJoinSlashExtension(t *testing.T) {
	got, err := Join("http://h/", "admin", SlashExtension)
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://h/admin/" {
		t.Errorf("got %q", got)
	}
}

func TestJoinExtension(t *testing.T) {
	got, err := Join("http://h/", "admin", "php")
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://h/admin.php" {
		t.Errorf("got %q", got)
	}
}

func TestJoinNoExtension(t *testing.T) {
	got, err := Join("http://h/", "admin", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://h/admin" {
		t.Errorf("got %q", got)
	}
}

func TestSameHost(t *testing.T) {
	if !SameHost("http://h/", "http://h/a") {
		t.Error("expected same host")
	}
	if SameHost("http://h/", "http://other/a") {
		t.Error("expected different host")
	}
}

func TestIsRedirectToDirectory(t *testing.T) {
	if !IsRedirectToDirectory("http://h/api", "http://h/api/") {
		t.Error("expected directory redirect")
	}
	if IsRedirectToDirectory("http://h/api", "http://h/other/") {
		t.Error("unexpected directory redirect")
	}
}

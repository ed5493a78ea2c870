package extractor

import (
	"sort"
	"strings"
	"testing"
)

func TestExtractHTMLAnchorsStaysOnHost(t *testing.T) {
	body := `<html><body>
		<a href="/admin/login">login</a>
		<a href="https://evil.example/x">off host</a>
		<script src="/js/app.js"></script>
	</body></html>`

	got, err := Extract(ResponseBody, "http://target.local/", body)
	if err != nil {
		t.Fatal(err)
	}

	var joined string
	for _, g := range got {
		joined += g + "\n"
	}
	if !strings.Contains(joined, "target.local/admin/") {
		t.Fatalf("expected admin prefix chain, got %v", got)
	}
	if strings.Contains(joined, "evil.example") {
		t.Fatalf("off-host url leaked into candidates: %v", got)
	}
}

func TestDirectoryListingOnlyUsesAnchors(t *testing.T) {
	body := `<html><body>
		<a href="file.txt">file.txt</a>
		<img src="/icons/folder.png">
	</body></html>`

	got, err := Extract(DirectoryListing, "http://target.local/dir/", body)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range got {
		if strings.Contains(g, "folder.png") {
			t.Fatalf("directory listing mode should ignore img src: %v", got)
		}
	}
}

func TestRobotsExtractsAllowAndDisallow(t *testing.T) {
	body := "User-agent: *\nDisallow: /private/\nAllow: /public/index.html\n"
	got, err := Extract(RobotsTxt, "http://target.local/", body)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)

	var foundPrivate, foundPublic bool
	for _, g := range got {
		if strings.Contains(g, "/private/") {
			foundPrivate = true
		}
		if strings.Contains(g, "/public/") {
			foundPublic = true
		}
	}
	if !foundPrivate || !foundPublic {
		t.Fatalf("expected both allow/disallow paths expanded, got %v", got)
	}
}

func TestSeenCacheInsertIsWriteThrough(t *testing.T) {
	c := NewSeenCache()
	if !c.Insert("http://x/a") {
		t.Fatal("expected first insert to report new")
	}
	if c.Insert("http://x/a") {
		t.Fatal("expected second insert of the same url to report not-new")
	}
}

package banner

import (
	"strings"
	"testing"

	"github.com/0x6d61/burrow/internal/config"
)

func TestBuildMarkdownIncludesTargetsAndWordlist(t *testing.T) {
	cfg := config.Defaults()
	cfg.Targets = []string{"https://target.local"}
	cfg.Wordlist = "/usr/share/wordlists/raft.txt"

	md := buildMarkdown(cfg, "v1.0.0")

	if !strings.Contains(md, "https://target.local") {
		t.Fatalf("markdown missing target: %s", md)
	}
	if !strings.Contains(md, "raft.txt") {
		t.Fatalf("markdown missing wordlist: %s", md)
	}
}

func TestRecursionLabelReflectsFlags(t *testing.T) {
	cfg := config.Defaults()
	cfg.NoRecursion = true
	if recursionLabel(cfg) != "disabled" {
		t.Fatalf("expected disabled, got %q", recursionLabel(cfg))
	}
}

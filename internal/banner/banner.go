// Package banner renders the startup configuration summary printed
// before a scan begins, using glamour to format a Markdown table for
// the terminal the same way the interactive console renders AI
// responses.
package banner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/0x6d61/burrow/internal/config"
)

// Render builds the Markdown startup summary for cfg and renders it for
// a terminal of the given width. version is the build version string
// shown in the title line.
func Render(cfg *config.Config, version string, width int) (string, error) {
	md := buildMarkdown(cfg, version)
	out, err := renderMarkdown(md, width)
	if err != nil {
		return md, err
	}
	return out, nil
}

func buildMarkdown(cfg *config.Config, version string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# burrow %s\n\n", version)
	fmt.Fprintf(&b, "| setting | value |\n")
	fmt.Fprintf(&b, "|---|---|\n")
	fmt.Fprintf(&b, "| Target(s) | %s |\n", joinOrDash(cfg.Targets))
	fmt.Fprintf(&b, "| Wordlist | %s |\n", dash(cfg.Wordlist))
	fmt.Fprintf(&b, "| Threads | %d |\n", cfg.Threads)
	fmt.Fprintf(&b, "| Depth | %s |\n", depthLabel(cfg.Depth))
	fmt.Fprintf(&b, "| Timeout | %s |\n", cfg.Timeout)
	fmt.Fprintf(&b, "| Methods | %s |\n", joinOrDash(cfg.Methods))
	fmt.Fprintf(&b, "| Extensions | %s |\n", joinOrDash(cfg.Extensions))
	fmt.Fprintf(&b, "| Status codes | %s |\n", joinInts(cfg.StatusCodes))
	fmt.Fprintf(&b, "| Requester policy | %s |\n", cfg.RequesterPolicy)
	fmt.Fprintf(&b, "| Rate limit | %s |\n", rateLimitLabel(cfg.RateLimit))
	fmt.Fprintf(&b, "| Recursion | %s |\n", recursionLabel(cfg))
	fmt.Fprintf(&b, "| Extract links | %t |\n", cfg.ExtractLinks)
	fmt.Fprintf(&b, "| Follow redirects | %t |\n", cfg.FollowRedirects)
	if len(cfg.URLDenylist) > 0 || len(cfg.RegexDenylist) > 0 {
		fmt.Fprintf(&b, "| Denylist | %d exact, %d regex |\n", len(cfg.URLDenylist), len(cfg.RegexDenylist))
	}
	if cfg.SaveState {
		fmt.Fprintf(&b, "| State file | %s |\n", dash(cfg.StateFile))
	}
	if cfg.Resumed {
		fmt.Fprintf(&b, "| Resumed | yes |\n")
	}

	return b.String()
}

func recursionLabel(cfg *config.Config) string {
	switch {
	case cfg.NoRecursion:
		return "disabled"
	case cfg.ForceRecursion:
		return "forced (ignores wildcard/heuristic suppression)"
	default:
		return "enabled"
	}
}

func rateLimitLabel(rps int) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d req/s", rps)
}

func depthLabel(d int) string {
	if d <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", d)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func joinInts(items []int) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderMarkdown renders text for a terminal of the given width using
// glamour's dark style, matching the margin accounting the console uses
// for its own Markdown blocks.
func renderMarkdown(text string, width int) (string, error) {
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

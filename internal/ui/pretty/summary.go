package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/goscramble/pkg/config"
)

// ServeBanner renders the startup summary printed by the serve command.
type ServeBanner struct {
	styles *Styles
}

// NewServeBanner creates a banner renderer with the given color mode.
func NewServeBanner(colorEnabled bool) *ServeBanner {
	return &ServeBanner{styles: NewStyles(colorEnabled)}
}

// Render formats the effective configuration as a short startup banner.
func (b *ServeBanner) Render(cfg *config.Config) string {
	s := b.styles

	var sb strings.Builder
	sb.WriteString(s.Title.Render("goscramble"))
	sb.WriteString("\n")

	writeLine := func(label, value string) {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			s.Label.Render(label+":"), s.Value.Render(value)))
	}

	writeLine("listen", cfg.Listen)

	if cfg.DefaultURL != "" {
		writeLine("default url", cfg.DefaultURL)
	}

	if len(cfg.Allowlist) > 0 {
		writeLine("allowlist", strings.Join(cfg.Allowlist, ", "))
	} else {
		writeLine("allowlist", s.Dim.Render("(serving host only)"))
	}

	writeLine("honeypot", b.onOff(cfg.Honeypot))
	writeLine("scripts", b.scriptMode(cfg))
	if cfg.MixedLetters {
		writeLine("letters", "mixed")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (b *ServeBanner) onOff(v bool) string {
	if v {
		return b.styles.On.Render("on")
	}
	return b.styles.Off.Render("off")
}

func (b *ServeBanner) scriptMode(cfg *config.Config) string {
	if cfg.EffectiveSuppressScripts() {
		return b.styles.Value.Render("suppressed")
	}
	return b.styles.Value.Render("kept")
}

// Package proxy is the HTTP front-end for the scrambling pipeline. It
// owns the wire contract (?url= and ?honeypot=1&url= query parameters),
// the access policy, and response header emission; the rewriting core
// stays free of all three.
package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/goscramble/internal/logging"
	"github.com/yaklabco/goscramble/pkg/config"
	"github.com/yaklabco/goscramble/pkg/fetch"
	"github.com/yaklabco/goscramble/pkg/rewrite"
	"github.com/yaklabco/goscramble/pkg/scramble"
)

// Handler serves scrambled pages. Safe for concurrent use; every request
// builds its own rewrite state. The request logger is taken from the
// request context (logging.WithLogger), falling back to the package
// default.
type Handler struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher

	// allowAnyPort relaxes the well-known-port rule for tests, whose
	// upstream servers listen on ephemeral ports.
	allowAnyPort bool
}

// NewHandler creates a Handler.
func NewHandler(cfg *config.Config, fetcher *fetch.Fetcher) *Handler {
	return &Handler{cfg: cfg, fetcher: fetcher}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	// A scrambler pool underflow is a defect, not an I/O condition; it
	// fails the single request, never the process.
	defer func() {
		if p := recover(); p != nil {
			logger.Error("request panicked", logging.FieldError, fmt.Sprint(p))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}()

	defaultURL := h.defaultURL(r)

	raw := r.URL.Query().Get("url")
	if raw == "" {
		raw = defaultURL
	} else if !strings.Contains(raw, "://") {
		// Interpret as relative to the default URL.
		if base, err := url.Parse(defaultURL); err == nil {
			if resolved, err := base.Parse(raw); err == nil {
				raw = resolved.String()
			}
		}
	}

	target, err := url.Parse(raw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := checkRequest(target, r.Host, r.URL.Path, h.allowAnyPort); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "itself") {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	honeypot := h.cfg.Honeypot || r.URL.Query().Get("honeypot") != ""

	if !allowed(target, raw, defaultURL, r.Host, honeypot, h.cfg.Allowlist) {
		writeError(w, http.StatusForbidden,
			fmt.Sprintf("sorry, %s is not on the scrambler's allowlist", target.Hostname()))
		return
	}

	h.scramblePage(w, r, raw, honeypot)
}

// scramblePage fetches the target and writes the scrambled document.
func (h *Handler) scramblePage(w http.ResponseWriter, r *http.Request, target string, honeypot bool) {
	logger := logging.FromContext(r.Context()).
		With(logging.FieldURL, target, logging.FieldHoneypot, honeypot)

	page, err := h.fetcher.Fetch(r.Context(), target)
	if err != nil {
		h.writeFetchError(w, logger, target, honeypot, err)
		return
	}

	logger.Debug("fetched page",
		logging.FieldMIMEType, page.MIMEType,
		logging.FieldCharset, page.Charset,
	)

	var body string
	switch page.Kind {
	case fetch.KindHTML:
		body, err = rewrite.Document(page.Content, rewrite.Options{
			BaseURL:         page.URL,
			Honeypot:        honeypot,
			SuppressScripts: h.cfg.EffectiveSuppressScripts() || honeypot,
			MixedLetters:    h.cfg.MixedLetters,
		})
		if err != nil {
			logger.Error("rewrite failed", logging.FieldError, err)
			writeError(w, http.StatusInternalServerError, "rewrite failed")
			return
		}
	case fetch.KindText:
		body = scramble.Text(page.Content, h.letterOptions()...)
	}

	w.Header().Set("Content-Type", page.MIMEType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, body)
}

// writeFetchError maps fetch failures onto the response: unsupported
// content redirects to the original (or is blocked in honeypot mode),
// upstream HTTP errors are relayed, and transport failures become 502.
func (h *Handler) writeFetchError(w http.ResponseWriter, logger *log.Logger, target string, honeypot bool, err error) {
	if errors.Is(err, fetch.ErrUnsupportedContentType) {
		if honeypot {
			writeError(w, http.StatusForbidden, "access to this file has been blocked")
		} else {
			w.Header().Set("Location", target)
			w.WriteHeader(http.StatusSeeOther)
		}
		return
	}

	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		writeError(w, statusErr.Code, statusErr.Status)
		return
	}

	logger.Error("fetch failed", logging.FieldError, err)
	writeError(w, http.StatusBadGateway, "could not fetch the requested page")
}

// defaultURL derives the page scrambled when no url parameter is given.
func (h *Handler) defaultURL(r *http.Request) string {
	if h.cfg.DefaultURL != "" {
		return h.cfg.DefaultURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (h *Handler) letterOptions() []scramble.Option {
	if h.cfg.MixedLetters {
		return []scramble.Option{scramble.WithMixedLetters()}
	}
	return nil
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = fmt.Fprintln(w, message)
}

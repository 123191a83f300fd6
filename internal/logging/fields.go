// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldURL    = "url"
	FieldListen = "listen"
	FieldConfig = "config"

	// Page fields.
	FieldMIMEType = "mime_type"
	FieldCharset  = "charset"
	FieldBytes    = "bytes"
	FieldStatus   = "status"

	// Mode fields.
	FieldHoneypot        = "honeypot"
	FieldSuppressScripts = "suppress_scripts"
	FieldMixedLetters    = "mixed_letters"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

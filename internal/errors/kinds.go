// Package errors provides the structured error taxonomy used across saga.
//
// Every externally-visible failure (store, embedding, reranker, ingest,
// query) is surfaced as a *Error carrying a stable Kind so that callers —
// including the tool-protocol surface this module does not implement —
// can branch on failure class without string-matching messages.
package errors

// Kind is a stable error classification, independent of the underlying
// provider or storage backend.
type Kind string

const (
	// NotInitialized indicates the store or in-process index was used
	// before it finished opening.
	NotInitialized Kind = "NOT_INITIALIZED"
	// ProviderUnavailable indicates an embedding or reranker HTTP provider
	// could not be reached.
	ProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	// Timeout indicates an outbound call exceeded its deadline.
	Timeout Kind = "TIMEOUT"
	// Malformed indicates a provider responded but the payload could not
	// be parsed into the expected shape.
	Malformed Kind = "MALFORMED"
	// ValidationFailed indicates bad caller input (missing field,
	// out-of-range limit, scope/document_id mismatch).
	ValidationFailed Kind = "VALIDATION_FAILED"
	// NotFound indicates an id lookup that missed.
	NotFound Kind = "NOT_FOUND"
	// Conflict indicates a concurrent write conflict; retryable.
	Conflict Kind = "CONFLICT"
	// LanguageRejected indicates ingest was blocked by the language
	// allowlist.
	LanguageRejected Kind = "LANGUAGE_REJECTED"
	// SchemaMismatch is fatal: the store's schema_version disagrees with
	// the binary's expected version.
	SchemaMismatch Kind = "SCHEMA_MISMATCH"
	// IoError indicates an underlying filesystem failure.
	IoError Kind = "IO_ERROR"
	// Cascade indicates a delete encountered per-entity failures; carried
	// as a list, not fatal to the overall operation.
	Cascade Kind = "CASCADE"
)

// Severity classifies how the caller should react.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

func severityForKind(k Kind) Severity {
	switch k {
	case SchemaMismatch:
		return SeverityFatal
	case ProviderUnavailable, Timeout, Conflict:
		return SeverityWarning
	default:
		return SeverityError
	}
}

func retryableForKind(k Kind) bool {
	switch k {
	case Conflict:
		return true
	default:
		return false
	}
}

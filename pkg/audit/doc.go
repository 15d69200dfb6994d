// Package audit records security-relevant events emitted by the
// authenticator core: secret enrollment, code validation, the session
// lifecycle, storage corruption and security violations.
//
// The package defines the event taxonomy (see the Action constants) and a
// Logger that stamps events with an id, a timestamp and context-derived
// identifiers before handing them to a pluggable Storage. Where events end up
// is the caller's decision:
//
//   - SlogStorage writes each event as a structured log record.
//   - MemoryStorage keeps events in memory and supports simple queries; it
//     backs tests and the admin listing.
//   - AsyncWriter batches events in a background goroutine in front of any
//     BatchStorage and flushes them on Close.
//
// # Usage
//
//	sink := audit.NewSlogStorage(log)
//	writer, flush := audit.NewAsyncWriter(sink, audit.AsyncOptions{})
//	defer flush(context.Background())
//
//	auditLog := audit.NewLogger(writer)
//	_ = auditLog.Log(ctx, audit.ActionSessionCreated,
//	    audit.WithUserID("alice"),
//	    audit.WithSessionID(id),
//	)
//
//	_ = auditLog.LogFailure(ctx, audit.ActionTOTPValidation, "code mismatch",
//	    audit.WithUserID("alice"),
//	    audit.WithSeverity(audit.SeverityWarning),
//	)
//
// Audit logging never blocks the authentication decision: components log and
// ignore the returned error, leaving visibility to the storage implementation.
package audit

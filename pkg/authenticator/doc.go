// Package authenticator is the core facade of otpgate. It ties the secret
// store, the TOTP engine, the ephemeral vault and the session manager into
// the operations consumed by the transport layer:
//
//   - SetupSecret, ResetSecret, RemoveSecret and HasSecret manage enrollment.
//   - ValidateCode checks a submitted code against the stored secret with a
//     tolerance of one time step in either direction.
//   - CreateSession, ValidateSession, TerminateSession and ListActiveSessions
//     drive the session lifecycle.
//
// Every decision is reported to the audit logger. Boolean operations never
// return errors: storage failures resolve to false and are logged as system
// events.
//
// # Usage
//
//	store, _ := secretstore.Open(ctx, cfg.Store, conns,
//	    secretstore.WithCorruptionHandler(authenticator.CorruptionAuditor(auditLog)),
//	)
//	svc, err := authenticator.New(store,
//	    authenticator.WithAuditLogger(auditLog, flush),
//	    authenticator.WithIssuer("Acme"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close(context.Background())
//
//	enrollment, err := svc.SetupSecret(ctx, "alice", "")
//	ok := svc.ValidateCode(ctx, "alice", "123456")
package authenticator

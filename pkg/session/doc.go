// Package session manages short-lived sessions that are opened by presenting a
// valid one-time code.
//
// A Manager keeps live sessions in a sharded in-memory table. Each session moves
// through four states: it is created after the code verifier accepts a code,
// stays active while Validate is called before its expiry, becomes expired once
// the clock passes ExpiresAt and is terminated when it is removed from the table.
// Expiry is absolute and is checked before activity is refreshed, so a session
// is never reported live after its expiry instant.
//
// When a vault is configured every session also receives a random 32-byte
// ephemeral key, sealed in the vault with the session timeout as TTL and
// released together with the session.
//
// A background runner sweeps expired sessions on a fixed interval (one minute by
// default). Close stops the sweeper and terminates every remaining session.
//
// # Usage
//
//	mgr := session.New(verifier,
//	    session.WithVault(v),
//	    session.WithAuditLogger(auditLog),
//	    session.WithLogger(log),
//	)
//	defer mgr.Close(context.Background())
//
//	res := mgr.Create(ctx, "alice", "123456", 15*time.Minute)
//	if !res.OK {
//	    return errors.New(res.Message)
//	}
//	live := mgr.Validate(ctx, res.SessionID)
package session

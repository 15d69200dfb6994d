// Package httpapi exposes the authenticator over HTTP using a chi router.
//
// Routes:
//
//	POST   /totp/{userID}/setup    enroll a user, 201 or 409 when already enrolled
//	POST   /totp/{userID}/reset    replace a user's secret, 201
//	GET    /totp/{userID}          report whether the user is enrolled
//	DELETE /totp/{userID}          remove the secret, 204 or 404
//	POST   /totp/{userID}/verify   check a code, {"valid": bool}
//	POST   /sessions               open a session, 201 or 401
//	GET    /sessions               list live sessions
//	GET    /sessions/{id}          200 when live, 404 otherwise
//	DELETE /sessions/{id}          204 or 404
//	GET    /healthz                liveness
//	GET    /readyz                 readiness, when checks are configured
//
// With WithRateLimiter, code submissions are throttled per client address
// (and per user for /verify) and answered with 429 once the budget is spent.
//
// Every JSON response uses the envelope {"code", "message", "data"}.
// Enrollment responses carry the secret, the provisioning URI and a QR code
// data URI; they are marked Cache-Control: no-store.
package httpapi

// Package secretstore persists TOTP shared secrets encrypted at rest.
//
// Store is the contract; four backends implement it:
//
//   - FileStore keeps the whole table in one file, IV || ciphertext of a
//     JSON object, rewritten through a temporary file and rename on every
//     mutation. Mutations are serialized by an in-process mutex.
//   - RedisStore keeps one sealed field per user in a Redis hash.
//   - PostgresStore keeps one row per user in totp_secrets; the schema ships
//     as embedded goose migrations (Migrations).
//   - MongoStore keeps one document per user in a collection.
//
// All backends share one 32-byte master key stored in its own owner-only
// file (LoadOrCreateKey). The sealing key is an HKDF subkey of it, so other
// components can never share key material with the store.
//
// # Corruption
//
// Data that fails to decrypt or decode is never returned as an error. It is
// treated as absent, logged at warning level and passed to the handler set
// with WithCorruptionHandler. FileStore additionally moves an unreadable file
// aside (path.corrupt-<nanos>) before it writes a fresh table over it.
//
// # Backups
//
// Backup and Restore move secrets between stores as age-encrypted JSON:
//
//	id, _ := age.GenerateX25519Identity()
//	n, err := secretstore.Backup(ctx, store, w, id.Recipient())
//	n, err = secretstore.Restore(ctx, other, r, false, id)
package secretstore

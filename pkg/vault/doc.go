// Package vault is an in-memory, encrypted, TTL-aware blob store whose key
// lives only as long as the process.
//
// New draws a fresh 32-byte key into a memguard LockedBuffer (mlocked,
// guarded pages, frozen read-only). Every Put seals the payload with
// cryptobox under that key and files it under a random UUID. Entries may
// carry an expiry; expired entries are dropped lazily by Get and eagerly by
// a background sweep (every five minutes by default).
//
// Ciphertext is zeroed whenever an entry leaves the table, whether by Delete,
// Get on an expired entry, the sweep or Close. Close also destroys the key,
// after which the vault refuses all operations.
//
//	v, err := vault.New(vault.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//
//	id, _ := v.Put(token, 10*time.Minute)
//	token, ok := v.Get(id)
package vault

// Package crypto provides encryption for local settings at rest.
//
// Implements AES-256-GCM for the values stored in the settings database.
// Two implementations: AesGcmCryptoService (production) and NoopService
// (dev/test plaintext passthrough).
package crypto

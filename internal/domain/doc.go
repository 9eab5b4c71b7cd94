// Package domain contains the core model types and collaborator interfaces
// shared across the bootstrap layer: device metrics, theme preferences,
// launch intents, push payloads, and the host-environment contract.
package domain

// Package store is the process-wide state store rendered as a serial
// command processor: components dispatch typed actions onto a channel, a
// single goroutine applies them, and nobody mutates shared state directly.
package store

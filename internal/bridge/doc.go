// Package bridge connects the shell to the native host process. The host
// dials in over WebSocket, announces itself with a hello snapshot (initial
// URL, pending notifications, window metrics, tablet capability, system
// appearance), then streams events; the bridge pushes native-theme updates
// back. One-shot host queries block until the hello arrives or the caller's
// context expires.
package bridge

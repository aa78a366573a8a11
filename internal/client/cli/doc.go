// Package cli provides the interactive Madrasati command-line client.
//
// It wires configuration, local storage, the auth orchestrator and the
// parent services behind a REPL whose commands follow the current login
// screen: onboarding, password form, biometric prompt or the logged-in
// home. A background watcher turns late payments and an approaching bus
// into inbox notifications.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartWatcher, and runREPL for details.
package cli

// Package app contains the core application logic. It wires the run loop,
// the heartbeat, the wallet and its history view into an App and drives their
// lifecycle, decoupled from any specific entrypoint like a CLI.
package app

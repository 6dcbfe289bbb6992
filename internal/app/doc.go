// Package app is the composition root of concierge.
//
// Setup loads the configuration, opens the log file and hands off to
// Bootstrap, which restores the persisted session and wires one API client
// and one workspace around it. The CLI commands use the resulting Env
// directly; Run additionally starts the background poller and the console.
//
// The poller refreshes every store and the dashboard on the configured
// interval. Failed rounds back off exponentially up to five minutes and the
// stores keep serving their last good data in the meantime.
package app

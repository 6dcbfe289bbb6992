// Package ui is the interactive console for the admin workspace, built on
// Bubble Tea.
//
// The console has a dashboard, one list view per admin resource and a log
// viewer. List views render straight from the workspace stores on every
// tick, so background refreshes and optimistic mutations show up without
// any extra plumbing. Creating and editing goes through the workspace form
// sessions; the modal stays open with the server's message when a save is
// rejected.
//
// Key bindings live in keys.go and are listed in the help overlay (?).
package ui

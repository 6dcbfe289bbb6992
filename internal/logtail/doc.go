// Package logtail reads the tail of the console's own log file and turns the
// lines back into records.
//
// Read keeps only the last N lines in a ring buffer, so memory stays bounded
// by N regardless of file size. Parse understands both formats slog writes:
//
//	time=2025-03-03T10:00:00.000Z level=WARN source=... msg="refresh failed" resource=plans
//	{"time":"2025-03-03T10:00:00Z","level":"WARN","msg":"refresh failed","resource":"plans"}
//
// Lines in neither format (panics, output from other tools) are kept as info
// records carrying the raw text. Tail combines both steps with a minimum
// level filter; it backs the console's Logs view and `concierge logs`.
package logtail

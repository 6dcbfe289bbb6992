// Package adminapi provides the HTTP client for the travel-assistant admin API.
//
// # Overview
//
// Client performs authenticated JSON requests and turns every failure into a
// *RemoteError. Per-resource adapters (Users, Interests, Events, Plans, Terms)
// sit on top of it and hand typed entities to the list stores in package state:
//
//	client, err := adminapi.NewClient(adminapi.Options{
//		BaseURL: "https://api.example.com",
//		Tokens:  session,
//	})
//	users, err := client.Users().List(ctx, state.Query{Status: "active"})
//
// # Normalization
//
// The backend is inconsistent about response shapes. The adapters absorb it:
//
//   - List endpoints may answer with a bare array or with an object carrying
//     the array under "data", "payment" or a similar key.
//   - Ids arrive as numbers or strings and are always exposed as strings.
//   - Numbered slots (feature_1..feature_10, title_N/title_N_content) collapse
//     into ordered slices with empty slots dropped.
//   - Blank month labels become "N/A" and blank names become "Untitled".
//
// # Errors
//
// RemoteError carries the HTTP status (0 when no response arrived) and a
// message taken from the body's "message", "detail" or "error" field, falling
// back to "request failed". A 401 additionally invokes Options.OnUnauthorized
// so the session can be dropped.
//
// Operations the backend does not offer for a resource return ErrUnsupported.
//
// # Request handling
//
// All requests:
//   - Wait on a client-side rate limiter
//   - Carry Accept, User-Agent and a fresh X-Request-ID header
//   - Carry "Authorization: Bearer <token>" when the TokenSource has one
//
// The Client is safe for concurrent use.
package adminapi

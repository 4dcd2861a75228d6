// Package services implements the remote collaborators of the reader: the bookshelf HTTP API and the selection assistant.
//
// # API Client
//
// [APIService] is a thin JSON-over-HTTP client rooted at the API base URL. Every request carries a
// fresh X-Request-ID, waits on an optional client-side rate limiter, and returns an [APIResponse].
// [APIResponse.Err] maps non-2xx statuses to a [*StatusError] that unwraps to a sentinel from shared.
//
// # Bookshelf Service
//
// [BookshelfService] implements [Library] plus login, shelf listing and content upload.
// Authenticated calls go through an [oauth2.Transport] fed by the session's token source;
// a 401 from any authenticated call runs the hook registered with [BookshelfService.OnUnauthorized].
//
// # Assistant
//
// [AssistantService] is opaque to the reader. [OpenAIAssistant] asks a chat completion model;
// [CannedAssistant] returns fixed placeholder replies and is used when no API key is configured.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : 401, or no token available
//   - [shared.ErrNotFound] : 404 (content lookups report [shared.ErrContentNotFound])
//   - [shared.ErrServiceUnavailable] : 429 and 5xx, retried by callers via [IsTransient]
//   - [shared.ErrAPIRequest] : any other non-2xx status
//   - [shared.ErrAssistantFailed] : assistant provider failure
package services

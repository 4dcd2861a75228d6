// Package reader implements the reading session: position tracking, bookmarks, preferences and the selection assistant.
//
// A session is opened with [Open], which fetches the book, splits its text with pages.Paginate and
// resumes from the shelf record's last page. From there:
//   - [Tracker] : current page index, updated synchronously; progress is written to the shelf record in the background
//   - [BookmarkStore] : per-book page sets in local device storage, read fresh on every call
//   - [PreferenceStore] : device-wide font size and theme
//   - [Assistant] : selection capture and explain/translate/summary requests
//
// # Failure Policy
//
// Nothing here ends a session on its own. Missing text is reported as [shared.ErrContentNotFound];
// failed progress writes are logged and dropped; assistant failures become a failed history entry.
package reader

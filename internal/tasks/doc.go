// Package tasks runs long operations across the caller's whole shelf with progress reporting.
//
// # Operations
//
// [ShelfEngine] offers two operations:
//
//  1. [ShelfEngine.ListShelf] : every record on the shelf
//     - Walks the paged GET /shelf listing until the last page
//
//  2. [ShelfEngine.BulkExport] : export every shelved book
//     - Opens each book as a reader session (detail, text, saved position, local bookmarks)
//     - Writes text, Markdown or CSV files with a worker pool
//     - Books without stored text are skipped, failures are recorded per book
//     - Writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// Operations take a progress channel and send [ProgressUpdate] values to it without blocking.
// A nil channel disables reporting; a full channel drops updates.
package tasks

// Package models defines domain entities and storage interfaces for the bookx reader.
//
// The package contains three categories of types:
//
// 1. Remote records: shapes returned by the bookshelf API
//   - [Book] : Catalog entry
//   - [UserBook] : The caller's shelf record for a book (status, rating, progress)
//   - [BookDetail] : A [Book] plus an optional [UserBook], discriminated by [BookDetail.Kind]
//   - [BookContent] : The full text of one book edition
//
// 2. Reader state: values owned by a reading session
//   - [ReadingPosition] : Current page, page count and progress percent
//   - [ReaderPreferences] : Device-wide font size and [Theme]
//   - [SelectionContext] : Ephemeral text selection and its screen anchor
//   - [AssistantEntry] : One explain/translate/summary request and its result
//
// 3. Storage: the [KV] interface for local device storage.
package models

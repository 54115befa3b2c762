// Package models defines the playlist domain entities and the store interfaces the task bridge consumes.
//
// The package contains three groups of types:
//
// 1. Identifiers: [PlaylistID], [MemberID], [ContentID] and the [MemberRef] pair used when a
// caller names a member together with the playlist it believes owns it.
//
// 2. Entities:
//   - [Playlist] : Lightweight handle wrapping an id with lazily cached name and thumbnail
//   - [PlaylistItem] : One member slot inside a playlist with its dense order index
//   - [ContentItem] : Store-owned item tagged with a closed [Kind]
//
// 3. Store interfaces:
//   - [ContentStore] : Synchronous, blocking playlist operations (create, list, members, order)
//   - [ContentCatalog] : Content item lookups and scalar updates
//
// All store methods block the calling goroutine; they are only ever invoked from task workers.
package models

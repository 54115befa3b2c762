// Package repositories implements the content store interfaces from the models package.
//
// Two adapters are provided:
//   - [Store] : SQLite persistence built from [PlaylistRepository] and [ContentRepository]
//   - [MemoryStore] : Mutex-guarded in-memory store for tests and demos
//
// Both keep member order indices dense: members are appended at index N, removal compacts the
// indices above the removed slot, and [PlaylistRepository.SetMemberOrder] writes a single index
// without shifting its neighbours. Deleting a missing playlist and removing a missing member
// both succeed.
package repositories

// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [PlaylistListView] : Browse playlists with their member counts
//  2. [MemberListView] : Inspect and reorder the members of one playlist
//  3. [ConfirmView] : Confirm a destructive operation
//
// The [Model] is the host of the task bridge. Playlist operations run on background workers and
// their results wait on the bridge queue; a command parks on [tasks.Queue.Ready] and the
// resulting message makes Update drain the loop, so every callback runs on the bubbletea
// goroutine and may touch the model directly.
//
// Leaving the member view closes its scope, so results still in flight for it are discarded.
//
// Keyboard navigation uses vim-style bindings (j/k, J/K, enter, esc, y/n, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui

// Package playlists is the asynchronous playlist API used by hosts.
//
// Every [Manager] method validates its inputs on the calling goroutine, hands the blocking
// store work to a [tasks.Runner] and returns immediately. Results arrive later through
// [Callbacks] on whichever goroutine drains the [tasks.Loop].
//
// Operations on the same playlist are not serialized. Two overlapping Move or SetOrder calls
// each read a snapshot and rewrite the whole order, so the later write wins.
package playlists

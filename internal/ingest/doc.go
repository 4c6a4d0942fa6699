// Package ingest seeds an engine from a directory on disk and keeps it in
// step with external changes.
//
// LoadDir walks a directory once, decoding every text file and creating a
// file buffer for it under its slash-separated path relative to the root.
// A Watcher then follows the directory with fsnotify: created and written
// files are loaded or replaced, removed and renamed-away files are
// deleted.
//
// Nothing is ever written back to disk.
package ingest

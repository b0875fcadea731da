// Package schemafs serves schema definitions from a directory of
// *.schema.yaml artifacts.
//
// DirSource implements schema.Source over a flat directory, so a
// schema.Registry built on it re-reads the directory on every Reload.
// Watcher triggers those reloads from debounced fsnotify events;
// Refresher triggers them on a cron schedule for setups where file
// events are unreliable. Both are optional: without them the registry
// loads the directory once and serves that set until an explicit
// Reload.
//
// A load that fails for any artifact fails as a whole and the registry
// keeps serving its previous definition set, so a half-written artifact
// never takes validation down.
package schemafs

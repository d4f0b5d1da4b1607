// Resolves the files the compiler server owns on disk.
//
// Runtime files (socket, PID file) live under the XDG runtime directory and
// configuration under the XDG config home. On platforms without a runtime
// directory the cache home is used instead.
package paths

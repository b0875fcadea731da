// Package source fetches raw spec documents from their backing stores.
//
// The Provider interface hides where a document lives. FileProvider
// reads from a directory (names confined to the root); GitProvider reads
// from a repository's object store at any revision, which is how the
// prior version of a spec is obtained for diffing. Both are strictly
// read-only.
package source

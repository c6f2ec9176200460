// Package domain holds lectern's entities and the error taxonomy shared by
// every layer.
//
// A Document is an ingested file (or pasted text) and its normalised
// content. Indexing splits the content into Chunks, each carrying an
// embedding. Asking a question ranks a document's chunks as ScoredChunks
// and produces an Answer whose Citations point back at them.
//
// The package imports nothing outside the standard library.
package domain

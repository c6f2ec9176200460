// Package normalisers provides implementations of the Normaliser interface
// for the document formats lectern ingests. Each normaliser extracts text
// from one family of MIME types; the Registry dispatches between them.
package normalisers

// Package normalisers provides implementations of the Normaliser interface
// for document formats. Each normaliser turns raw downloaded bytes into
// plain text plus a display title; markdown is the format lore files use.
package normalisers

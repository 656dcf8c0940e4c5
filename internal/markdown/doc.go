// Package markdown implements the document half of the press pipeline: it
// splits front matter from Markdown bodies, renders bodies into ordered node
// sequences, and discovers source files on disk.
//
// Every operation is a pure function of its input: parsing never mutates the
// source, rendering the same body twice yields byte-identical node lists, and
// no state is shared across documents.
package markdown

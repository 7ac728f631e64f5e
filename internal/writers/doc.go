// Package writers renders engine responses to stdout formats.
//
// Writers own all presentation knowledge (indented JSON, JSONL point streams,
// TSV tables). The engine stays domain-only.
package writers

// Package pathnorm canonicalizes charter paths extracted from eXist-db backup
// archives so that differently-encoded spellings of the same resource compare
// equal.
//
// The primary use cases are:
//   - Normalizing raw archive paths into a stable identity key
//   - Filtering paths to the tracked charter collection
//   - Generating plausible re-encoded variants of a normalized path for
//     byte-exact reverse lookup inside a specific archive
//
// Normalization decodes the storage engine's &XX; hex escapes, HTML/XML
// entities, and (iteratively) URL percent escapes, then applies Unicode NFC
// composition and separator cleanup. The function is total and idempotent:
// it never fails, and re-normalizing a normalized path is a no-op.
package pathnorm

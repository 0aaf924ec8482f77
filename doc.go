// Package logfile implements the byte-level core of a revision archive: line
// diffs serialized as binary edit scripts, three-way merges of two
// descendants of a common ancestor, and the fixed-layout records (header,
// labels, revision descriptors) that describe an archive's structure.
//
// IMPLEMENTATION:
// Diffs are computed over interned line tokens with a Myers aligner and
// translated back into byte offsets of the base file, so an edit script can
// be applied to the base without re-tokenizing it. A merge diffs the
// ancestor against both descendants, orders the two scripts by seek
// position, and refuses to continue when two edits touch overlapping ranges.
//
// Archive records use little-endian 16-bit fields and are verified through
// the header's additive checksum; ArchiveSet caches parsed headers in an ARC
// cache. Edit scripts use big-endian fields and may be stored snappy
// compressed when the archive asks for it.
//
// Compare and merge run through an Engine, which carries the logger, file
// system, clock, and comparison options. Every failure surfaces as an error
// that matches one of the package's sentinel errors with errors.Is.
package logfile

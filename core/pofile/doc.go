// Package pofile implements the PO resource file subset used by the store
// synchronization engine.
//
// The codec is a bijection between bytes and ordered unit entries: parsing a
// canonical file and serializing it again reproduces the input byte for byte.
// Canonical form means single-line quoted strings (newlines escaped), comments
// ordered translator / extracted / locations / flags, and one blank line
// between entries.
//
// Supported constructs:
//
//   - msgctxt, msgid, msgid_plural, msgstr, msgstr[N]
//   - "#" translator comments, "#." extracted comments, "#:" locations,
//     "#," flags (including fuzzy)
//   - "#~" obsolete entries
//   - the header entry (empty msgid), kept separate from translation units
package pofile

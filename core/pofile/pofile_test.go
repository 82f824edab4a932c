package pofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalFile = `msgid "Hello"
msgstr "Bonjour"

#: src/app.c:42
#, fuzzy
msgctxt "menu"
msgid "Quit"
msgstr "Quitter"
`

func TestParse_Minimal(t *testing.T) {
	f, err := Parse([]byte(minimalFile))
	require.NoError(t, err)
	require.Len(t, f.Entries, 2)
	assert.Nil(t, f.Header)

	assert.Equal(t, "Hello", f.Entries[0].Source)
	assert.Equal(t, "Bonjour", f.Entries[0].Target())
	assert.False(t, f.Entries[0].IsFuzzy())

	assert.Equal(t, "Quit", f.Entries[1].Source)
	assert.Equal(t, "menu", f.Entries[1].Context)
	assert.Equal(t, []string{"src/app.c:42"}, f.Entries[1].Locations)
	assert.True(t, f.Entries[1].IsFuzzy())
}

func TestRoundTrip_Canonical(t *testing.T) {
	// serialize(parse(bytes)) must reproduce a canonical file exactly.
	f, err := Parse([]byte(minimalFile))
	require.NoError(t, err)
	assert.Equal(t, minimalFile, string(f.Serialize()))
}

func TestParse_Header(t *testing.T) {
	input := `msgid ""
msgstr "Content-Type: text/plain; charset=UTF-8\n"

msgid "Hello"
msgstr ""
`
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	require.NotNil(t, f.Header)
	assert.Contains(t, f.Header.Target(), "Content-Type")
	require.Len(t, f.Entries, 1)
	assert.Equal(t, "Hello", f.Entries[0].Source)
	assert.Equal(t, input, string(f.Serialize()))
}

func TestParse_Plural(t *testing.T) {
	input := `msgid "%d file"
msgid_plural "%d files"
msgstr[0] "%d fichier"
msgstr[1] "%d fichiers"
`
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)

	e := f.Entries[0]
	assert.True(t, e.HasPlural())
	assert.Equal(t, "%d files", e.SourcePlural)
	assert.Equal(t, "%d fichier\x00%d fichiers", e.Target())
	assert.Equal(t, input, string(f.Serialize()))
}

func TestParse_MultilineString(t *testing.T) {
	input := `msgid ""
"Hello "
"world"
msgstr "Bonjour le monde"
`
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	assert.Equal(t, "Hello world", f.Entries[0].Source)
}

func TestParse_ObsoleteEntry(t *testing.T) {
	input := `#~ msgid "Old"
#~ msgstr "Vieux"
`
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	assert.True(t, f.Entries[0].Obsolete)
	assert.Equal(t, "Old", f.Entries[0].Source)
	assert.Equal(t, input, string(f.Serialize()))
}

func TestParse_Escapes(t *testing.T) {
	input := `msgid "Line\nbreak \"quoted\" tab\there"
msgstr ""
`
	f, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "Line\nbreak \"quoted\" tab\there", f.Entries[0].Source)
	assert.Equal(t, input, string(f.Serialize()))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"UnquotedValue", "msgid Hello\nmsgstr \"x\"\n"},
		{"DanglingContinuation", "\"orphan\"\n"},
		{"BadEscape", `msgid "\q"` + "\nmsgstr \"\"\n"},
		{"BadIndex", "msgid \"a\"\nmsgstr[x] \"b\"\n"},
		{"Garbage", "not a po line\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestSetTarget_SplitsPluralForms(t *testing.T) {
	e := &Entry{Source: "%d file", SourcePlural: "%d files"}
	e.SetTarget("a\x00b")
	assert.Equal(t, []string{"a", "b"}, e.Targets)

	single := &Entry{Source: "Hello"}
	single.SetTarget("")
	assert.Equal(t, []string{""}, single.Targets)
}

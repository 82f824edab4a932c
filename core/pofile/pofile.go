package pofile

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Entry is a single PO entry: one translatable unit or the header.
type Entry struct {
	TranslatorComment string
	ExtractedComment  string
	Locations         []string
	Flags             []string

	Context      string
	Source       string
	SourcePlural string

	// Targets holds msgstr, or msgstr[0..N] for plural entries.
	Targets []string

	Obsolete bool
}

// IsHeader reports whether the entry is the PO header (empty msgid).
func (e *Entry) IsHeader() bool {
	return e.Source == "" && e.Context == "" && e.SourcePlural == ""
}

// IsFuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// HasPlural reports whether the entry declares a plural source form.
func (e *Entry) HasPlural() bool {
	return e.SourcePlural != ""
}

// Target returns the target text, with plural forms joined by NUL.
func (e *Entry) Target() string {
	return strings.Join(e.Targets, "\x00")
}

// SetTarget splits a NUL-joined target back into plural forms.
func (e *Entry) SetTarget(target string) {
	if target == "" && !e.HasPlural() {
		e.Targets = []string{""}
		return
	}
	e.Targets = strings.Split(target, "\x00")
}

// File is an ordered PO file: an optional header plus translation entries.
type File struct {
	Header  *Entry
	Entries []*Entry
}

// ParseError reports a malformed line in the input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pofile: parse error at line %d: %s", e.Line, e.Msg)
}

// Parse decodes PO bytes into an ordered file representation.
func Parse(data []byte) (*File, error) {
	p := &parser{scanner: bufio.NewScanner(bytes.NewReader(data))}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return p.parse()
}

type parser struct {
	scanner *bufio.Scanner
	line    int
}

// field identifiers for continuation lines
const (
	fieldNone = iota
	fieldContext
	fieldSource
	fieldSourcePlural
	fieldTarget
)

func (p *parser) parse() (*File, error) {
	file := &File{}

	cur := &Entry{}
	lastField := fieldNone
	lastTargetIdx := -1
	seen := false

	flush := func() {
		if !seen {
			return
		}
		if len(cur.Targets) == 0 {
			cur.Targets = []string{""}
		}
		if cur.IsHeader() && file.Header == nil && len(file.Entries) == 0 {
			file.Header = cur
		} else {
			file.Entries = append(file.Entries, cur)
		}
		cur = &Entry{}
		lastField = fieldNone
		lastTargetIdx = -1
		seen = false
	}

	for p.scanner.Scan() {
		p.line++
		line := strings.TrimRight(p.scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		obsolete := false
		if strings.HasPrefix(line, "#~") {
			obsolete = true
			line = strings.TrimSpace(strings.TrimPrefix(line, "#~"))
			cur.Obsolete = true
		}

		switch {
		case strings.HasPrefix(line, "#,"):
			for _, f := range strings.Split(strings.TrimPrefix(line, "#,"), ",") {
				if f = strings.TrimSpace(f); f != "" {
					cur.Flags = append(cur.Flags, f)
				}
			}
		case strings.HasPrefix(line, "#:"):
			for _, loc := range strings.Fields(strings.TrimPrefix(line, "#:")) {
				cur.Locations = append(cur.Locations, loc)
			}
		case strings.HasPrefix(line, "#."):
			cur.ExtractedComment = appendLine(cur.ExtractedComment, strings.TrimSpace(strings.TrimPrefix(line, "#.")))
		case strings.HasPrefix(line, "#") && !obsolete:
			cur.TranslatorComment = appendLine(cur.TranslatorComment, strings.TrimSpace(strings.TrimPrefix(line, "#")))
		case strings.HasPrefix(line, "msgctxt "):
			s, err := p.decode(strings.TrimPrefix(line, "msgctxt "))
			if err != nil {
				return nil, err
			}
			cur.Context = s
			lastField = fieldContext
			seen = true
		case strings.HasPrefix(line, "msgid_plural "):
			s, err := p.decode(strings.TrimPrefix(line, "msgid_plural "))
			if err != nil {
				return nil, err
			}
			cur.SourcePlural = s
			lastField = fieldSourcePlural
			seen = true
		case strings.HasPrefix(line, "msgid "):
			s, err := p.decode(strings.TrimPrefix(line, "msgid "))
			if err != nil {
				return nil, err
			}
			cur.Source = s
			lastField = fieldSource
			seen = true
		case strings.HasPrefix(line, "msgstr["):
			rest := strings.TrimPrefix(line, "msgstr[")
			end := strings.Index(rest, "]")
			if end < 0 {
				return nil, &ParseError{Line: p.line, Msg: "unterminated msgstr index"}
			}
			idx, err := strconv.Atoi(rest[:end])
			if err != nil || idx < 0 {
				return nil, &ParseError{Line: p.line, Msg: "invalid msgstr index"}
			}
			s, derr := p.decode(strings.TrimSpace(rest[end+1:]))
			if derr != nil {
				return nil, derr
			}
			for len(cur.Targets) <= idx {
				cur.Targets = append(cur.Targets, "")
			}
			cur.Targets[idx] = s
			lastField = fieldTarget
			lastTargetIdx = idx
			seen = true
		case strings.HasPrefix(line, "msgstr "):
			s, err := p.decode(strings.TrimPrefix(line, "msgstr "))
			if err != nil {
				return nil, err
			}
			cur.Targets = []string{s}
			lastField = fieldTarget
			lastTargetIdx = 0
			seen = true
		case strings.HasPrefix(line, "\""):
			// Continuation of the previous string field.
			s, err := p.decode(line)
			if err != nil {
				return nil, err
			}
			switch lastField {
			case fieldContext:
				cur.Context += s
			case fieldSource:
				cur.Source += s
			case fieldSourcePlural:
				cur.SourcePlural += s
			case fieldTarget:
				cur.Targets[lastTargetIdx] += s
			default:
				return nil, &ParseError{Line: p.line, Msg: "continuation line without a preceding field"}
			}
		default:
			return nil, &ParseError{Line: p.line, Msg: fmt.Sprintf("unrecognized line %q", line)}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, &ParseError{Line: p.line, Msg: err.Error()}
	}
	flush()

	return file, nil
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

// decode unquotes a PO string literal.
func (p *parser) decode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", &ParseError{Line: p.line, Msg: fmt.Sprintf("expected quoted string, got %q", s)}
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			if c == '"' {
				return "", &ParseError{Line: p.line, Msg: "unescaped quote inside string"}
			}
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", &ParseError{Line: p.line, Msg: "dangling escape"}
		}
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", &ParseError{Line: p.line, Msg: fmt.Sprintf("unsupported escape \\%c", body[i])}
		}
	}
	return b.String(), nil
}

// encode quotes a string in canonical single-line form.
func encode(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Serialize encodes the file in canonical form.
func (f *File) Serialize() []byte {
	var b bytes.Buffer

	first := true
	write := func(e *Entry) {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		e.write(&b)
	}

	if f.Header != nil {
		write(f.Header)
	}
	for _, e := range f.Entries {
		write(e)
	}
	return b.Bytes()
}

func (e *Entry) write(b *bytes.Buffer) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	for _, line := range splitLines(e.TranslatorComment) {
		b.WriteString("# " + line + "\n")
	}
	for _, line := range splitLines(e.ExtractedComment) {
		b.WriteString("#. " + line + "\n")
	}
	if len(e.Locations) > 0 {
		b.WriteString("#: " + strings.Join(e.Locations, " ") + "\n")
	}
	if len(e.Flags) > 0 {
		b.WriteString("#, " + strings.Join(e.Flags, ", ") + "\n")
	}
	if e.Context != "" {
		b.WriteString(prefix + "msgctxt " + encode(e.Context) + "\n")
	}
	b.WriteString(prefix + "msgid " + encode(e.Source) + "\n")
	if e.HasPlural() {
		b.WriteString(prefix + "msgid_plural " + encode(e.SourcePlural) + "\n")
		for i, t := range e.Targets {
			b.WriteString(prefix + "msgstr[" + strconv.Itoa(i) + "] " + encode(t) + "\n")
		}
		return
	}
	target := ""
	if len(e.Targets) > 0 {
		target = e.Targets[0]
	}
	b.WriteString(prefix + "msgstr " + encode(target) + "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

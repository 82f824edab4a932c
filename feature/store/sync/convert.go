package sync

import (
	"fmt"
	"strings"

	"translation-manager/core/pofile"
	"translation-manager/feature/store/diff"
	"translation-manager/feature/store/models"
)

// revisionHeaderKey is the header field carrying the revision a serialized
// file was derived from. Clients hand it back as the update baseline.
const revisionHeaderKey = "X-Revision"

// FileUnitsFromPO converts parsed PO entries into diff file units. The
// header entry is excluded.
func FileUnitsFromPO(f *pofile.File) []diff.FileUnit {
	units := make([]diff.FileUnit, 0, len(f.Entries))
	for _, e := range f.Entries {
		state := models.StateUntranslated
		switch {
		case e.Obsolete:
			state = models.StateObsolete
		default:
			state = models.DeriveState(e.Target(), e.IsFuzzy())
		}
		units = append(units, diff.FileUnit{
			UnitID:            models.UnitID(e.Context, e.Source),
			State:             state,
			Source:            e.Source,
			SourcePlural:      e.SourcePlural,
			Target:            e.Target(),
			Context:           e.Context,
			Locations:         strings.Join(e.Locations, "\n"),
			DeveloperComment:  e.ExtractedComment,
			TranslatorComment: e.TranslatorComment,
		})
	}
	return units
}

// BaselineFromPO extracts the revision header from a parsed file, returning
// -1 when absent. Callers that know a better baseline pass it explicitly.
func BaselineFromPO(f *pofile.File) int64 {
	if f.Header == nil {
		return -1
	}
	for _, line := range strings.Split(f.Header.Target(), "\n") {
		k, v, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(k) != revisionHeaderKey {
			continue
		}
		var rev int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &rev); err == nil {
			return rev
		}
	}
	return -1
}

// poFromUnits serializes unit snapshots into a PO file, stamping the
// revision header with the given revision.
func poFromUnits(units []diff.DBUnit, rev int64) *pofile.File {
	f := &pofile.File{
		Header: &pofile.Entry{
			Targets: []string{fmt.Sprintf("%s: %d\n", revisionHeaderKey, rev)},
		},
	}
	for _, u := range units {
		e := &pofile.Entry{
			Context:           u.Context,
			Source:            u.Source,
			SourcePlural:      u.SourcePlural,
			ExtractedComment:  u.DeveloperComment,
			TranslatorComment: u.TranslatorComment,
			Obsolete:          u.State == models.StateObsolete,
		}
		if u.Locations != "" {
			e.Locations = strings.Split(u.Locations, "\n")
		}
		if u.State == models.StateFuzzy {
			e.Flags = append(e.Flags, "fuzzy")
		}
		e.SetTarget(u.Target)
		f.Entries = append(f.Entries, e)
	}
	return f
}

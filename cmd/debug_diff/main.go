package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"translation-manager/core/pofile"
	"translation-manager/feature/store/diff"
	storesync "translation-manager/feature/store/sync"
)

// Parses two PO files and prints the reconciliation plan the second would
// produce against a store seeded from the first. Useful for inspecting how
// moves, insertions and obsoletions are detected without touching a
// database.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("usage: debug_diff <before.po> <after.po>")
		os.Exit(1)
	}

	before, err := parseFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	after, err := parseFile(os.Args[2])
	if err != nil {
		log.Fatal(err)
	}

	baseline := storesync.BaselineFromPO(before)

	// Seed synthetic DB units from the "before" snapshot.
	var dbUnits []diff.DBUnit
	for i, fu := range storesync.FileUnitsFromPO(before) {
		dbUnits = append(dbUnits, diff.DBUnit{
			ID:                uint64(i + 1),
			UnitID:            fu.UnitID,
			Index:             i,
			Revision:          baseline,
			State:             fu.State,
			Source:            fu.Source,
			SourcePlural:      fu.SourcePlural,
			Target:            fu.Target,
			Context:           fu.Context,
			Locations:         fu.Locations,
			DeveloperComment:  fu.DeveloperComment,
			TranslatorComment: fu.TranslatorComment,
		})
	}

	d := diff.Compute(dbUnits, storesync.FileUnitsFromPO(after), baseline)

	fmt.Printf("=== Diff %s -> %s ===\n", os.Args[1], os.Args[2])
	fmt.Printf("Baseline: %d\n", d.Baseline)
	fmt.Printf("Has changes: %v\n", d.HasChanges())
	fmt.Printf("Additions: %d\n", len(d.Additions))
	fmt.Printf("Obsolete: %d\n", len(d.Obsolete))
	fmt.Printf("Updates: %d\n", len(d.UpdateIDs))
	fmt.Printf("Index shifts: %d\n", len(d.IndexShifts))
	fmt.Printf("Moved units: %d\n", len(d.Indices))

	for _, a := range d.Additions {
		fmt.Printf("  + idx %d: %q\n", a.Index, a.Unit.UnitID)
	}
	for _, id := range d.Obsolete {
		fmt.Printf("  - unit %d: %q\n", id, dbUnits[id-1].UnitID)
	}

	data, _ := json.MarshalIndent(d, "", "  ")
	if err := os.WriteFile("debug_diff.json", data, 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nFull plan written to debug_diff.json")
}

func parseFile(path string) (*pofile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := pofile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

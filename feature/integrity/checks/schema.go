package checks

import (
	"fmt"
	"reflect"
	"strings"

	"translation-manager/core/database"
	"translation-manager/feature/store/models"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a database schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// schemaModels are the persisted models the schema check verifies.
var schemaModels = []interface{}{
	models.Store{},
	models.Unit{},
	models.Submission{},
	models.Suggestion{},
}

// CheckSchema verifies the database schema using the GORM models as the
// source of truth. Columns present in the database but absent from the
// models are ignored.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Tables:  make(map[string]TableReport),
		Matched: true,
	}

	for _, model := range schemaModels {
		val := reflect.TypeOf(model)
		if val.Kind() != reflect.Struct {
			continue
		}

		tabler, ok := reflect.New(val).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", val.Name())
		}
		tableName := tabler.TableName()

		tblReport := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		actualMap := make(map[string]database.ColumnInfo)
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			gormTag := field.Tag.Get("gorm")

			colName := parseGormColumn(gormTag)
			if colName == "" {
				continue
			}
			expType := parseGormType(gormTag)

			actCol, exists := actualMap[colName]
			if !exists {
				tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
				tblReport.Status = "error"
				report.Matched = false
				continue
			}

			// Only columns with an explicit type tag get a type check.
			if expType != "" {
				expType = strings.ToLower(expType)
				if !strings.Contains(actCol.Type, expType) {
					mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
					tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
					tblReport.Status = "error"
					report.Matched = false
				}
			}
		}

		report.Tables[tableName] = tblReport
	}

	return report, nil
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	parts := strings.Split(tag, ";")
	for _, p := range parts {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	parts := strings.Split(tag, ";")
	for _, p := range parts {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}

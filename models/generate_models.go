package models

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Query helpers and schema reports.

Set GENERATE_MODELS=true to migrate the blogs table and write typed query
helpers to ./generated, then exit.

At startup the server compares the blogs table with the Blog model and logs
any column the model needs but the database lacks. That is the usual cause
of "column ... does not exist" errors after a deploy against an old schema.
*/

// All models persisted by the service.
func All() []any {
	return []any{&Blog{}}
}

func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Blog{})

	log.Info().Msg("Migrating models...")
	if err := db.Session(&gorm.Session{SkipDefaultTransaction: true}).AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}

	report, err := CheckSchema(db)
	if err != nil {
		return err
	}
	report.Log()

	g.Execute()
	log.Info().Msg("Model generation complete")
	return nil
}

// TableReport lists the columns a model maps that its table does not have.
type TableReport struct {
	Table          string
	TableMissing   bool
	MissingColumns []string
}

type SchemaReport []TableReport

// OK reports whether every table and column exists.
func (r SchemaReport) OK() bool {
	for _, t := range r {
		if t.TableMissing || len(t.MissingColumns) > 0 {
			return false
		}
	}
	return true
}

func (r SchemaReport) Log() {
	for _, t := range r {
		switch {
		case t.TableMissing:
			log.Warn().Str("table", t.Table).Msg("Table does not exist; run with AUTO_MIGRATE=true")
		case len(t.MissingColumns) > 0:
			log.Warn().Str("table", t.Table).Strs("columns", t.MissingColumns).Msg("Columns missing from database")
		default:
			log.Debug().Str("table", t.Table).Msg("All model columns present")
		}
	}
}

// CheckSchema compares every model against information_schema.
func CheckSchema(db *gorm.DB) (SchemaReport, error) {
	cache := &sync.Map{}
	var report SchemaReport
	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parsing model %T: %w", model, err)
		}

		columns, err := tableColumns(db, s.Table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			report = append(report, TableReport{Table: s.Table, TableMissing: true})
			continue
		}

		report = append(report, TableReport{
			Table:          s.Table,
			MissingColumns: missingColumns(s.DBNames, columns),
		})
	}
	return report, nil
}

func tableColumns(db *gorm.DB, table string) ([]string, error) {
	var columns []string
	err := db.Raw(`SELECT column_name FROM information_schema.columns WHERE table_name = ? AND table_schema = CURRENT_SCHEMA() ORDER BY ordinal_position`, table).
		Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}
	return columns, nil
}

func missingColumns(want, have []string) []string {
	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[c] = true
	}
	var missing []string
	for _, c := range want {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

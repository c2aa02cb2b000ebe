package sql

import "fmt"

// Dialect holds the engine specific SQL fragments used by the order-item queries.
type Dialect struct {
	Name string
	// Year and Month extract an integer calendar component from a timestamp column.
	Year  func(column string) string
	Month func(column string) string
	// Contains returns a boolean expression with a single placeholder that is true when
	// column contains the bound argument. Matching is case-sensitive.
	Contains func(column string) string
}

var (
	DuckDB = Dialect{
		Name:     "duckdb",
		Year:     func(c string) string { return fmt.Sprintf("CAST(year(%s) AS INTEGER)", c) },
		Month:    func(c string) string { return fmt.Sprintf("CAST(month(%s) AS INTEGER)", c) },
		Contains: func(c string) string { return fmt.Sprintf("contains(%s, ?)", c) },
	}
	SQLite = Dialect{
		Name:     "sqlite",
		Year:     func(c string) string { return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", c) },
		Month:    func(c string) string { return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", c) },
		Contains: func(c string) string { return fmt.Sprintf("instr(%s, ?) > 0", c) },
	}
	Databricks = Dialect{
		Name:     "databricks",
		Year:     func(c string) string { return fmt.Sprintf("year(%s)", c) },
		Month:    func(c string) string { return fmt.Sprintf("month(%s)", c) },
		Contains: func(c string) string { return fmt.Sprintf("instr(%s, ?) > 0", c) },
	}
	Snowflake = Dialect{
		Name:     "snowflake",
		Year:     func(c string) string { return fmt.Sprintf("YEAR(%s)", c) },
		Month:    func(c string) string { return fmt.Sprintf("MONTH(%s)", c) },
		Contains: func(c string) string { return fmt.Sprintf("CONTAINS(%s, ?)", c) },
	}
)

var dialects = map[string]Dialect{
	DuckDB.Name:     DuckDB,
	SQLite.Name:     SQLite,
	Databricks.Name: Databricks,
	Snowflake.Name:  Snowflake,
}

func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return d, nil
}

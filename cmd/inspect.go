package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/quest-log/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.db>",
	Short: "Inspect a SQLite export archive",
	Long: `Inspect an archive written by 'questlog export -f sqlite'.

This command shows:
  • Tables and their columns
  • Row counts
  • Sample rows from each table

Examples:
  questlog inspect exports/campaign_1.db                # Tables, schema and 3 sample rows
  questlog inspect exports/campaign_1.db --sample 0     # Schema only
  questlog inspect exports/campaign_1.db --format json  # Row counts as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("archive not found: %w", err)
		}
		db, err := internal.OpenDatabase(args[0], true)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		switch inspectFormat {
		case "text":
			return inspectDatabase(cmd.OutOrStdout(), db, args[0])
		case "json":
			return inspectCounts(cmd.OutOrStdout(), db)
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

func inspectDatabase(w io.Writer, db *sql.DB, dbPath string) error {
	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  No tables found in archive"))
		return nil
	}

	_, _ = fmt.Fprintf(w, "📋 Archive: %s\n", dbPath)
	_, _ = fmt.Fprintf(w, "📊 Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(w, db, tableName); err != nil {
			_, _ = fmt.Fprintf(w, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

// inspectCounts prints a table name to row count map
func inspectCounts(w io.Writer, db *sql.DB) error {
	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		n, err := internal.CountRows(db, t)
		if err != nil {
			return err
		}
		counts[t] = n
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(counts)
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(w io.Writer, db *sql.DB, tableName string) error {
	_, _ = fmt.Fprintln(w, sectionStyle.Render("📦 Table: "+tableName))

	rowCount, err := internal.CountRows(db, tableName)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "📊 Rows: %d\n\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	_, _ = fmt.Fprintln(w, "📐 Schema:")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		_, _ = fmt.Fprintf(w, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	_, _ = fmt.Fprintln(w)

	if rowCount > 0 && inspectSampleRows > 0 {
		if err := showSampleData(w, db, tableName, columns, inspectSampleRows); err != nil {
			_, _ = fmt.Fprintf(w, "⚠️  Error showing sample data: %v\n", err)
		}
	}

	return nil
}

type columnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(db *sql.DB, tableName string) ([]columnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []columnInfo
	for rows.Next() {
		var col columnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showSampleData(w io.Writer, db *sql.DB, tableName string, columns []columnInfo, limit int) error {
	if len(columns) == 0 {
		return nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = col.Name
	}

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	_, _ = fmt.Fprintf(w, "📄 Sample Data (first %d rows):\n", limit)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			_, _ = fmt.Fprintf(w, "  ⚠️  Row %d: error scanning: %v\n", rowNum, err)
			continue
		}

		_, _ = fmt.Fprintf(w, "\n  Row %d:\n", rowNum)
		for i, col := range columns {
			_, _ = fmt.Fprintf(w, "    %s: %s\n", col.Name, sampleValue(values[i]))
		}
	}

	return rows.Err()
}

// sampleValue renders a column value on one line, cut at 200 bytes
func sampleValue(val interface{}) string {
	if val == nil {
		return "<NULL>"
	}
	var s string
	if b, ok := val.([]byte); ok {
		s = string(b)
	} else {
		s = fmt.Sprintf("%v", val)
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if first, _, found := strings.Cut(s, "\n"); found {
		s = first + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}

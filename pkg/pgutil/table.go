package pgutil

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Column represents a SQL table column.
type Column struct {
	// Name is the name of the column.
	Name string

	// Type contains the name of the column's type, e.g., `INTEGER` or
	// `BYTEA`.
	Type string
}

func (c *Column) createSQL(sb *strings.Builder) {
	c.nameSQL(sb)
	sb.WriteByte(' ')
	sb.WriteString(c.Type)
	sb.WriteString(" NOT NULL")
}

func (c *Column) nameSQL(sb *strings.Builder) {
	sb.WriteByte('"')
	sb.WriteString(c.Name)
	sb.WriteByte('"')
}

// Table represents a SQL table. Every column is NOT NULL.
type Table struct {
	// Name is the name of the table.
	Name string

	// PrimaryKeys are the primary key columns. If there is more than one
	// column defined in this field, then the table's primary key is a
	// composite key.
	PrimaryKeys []Column

	// OtherColumns is the list of non-primary-key columns in the table.
	OtherColumns []Column
}

func (t *Table) Columns() []Column {
	columns := make([]Column, 0, len(t.PrimaryKeys)+len(t.OtherColumns))
	return append(append(columns, t.PrimaryKeys...), t.OtherColumns...)
}

// Ensure creates the table if it doesn't already exist. If the table already
// exists but has a different schema, it will not be changed.
func (t *Table) Ensure(db *sql.DB) error {
	if _, err := db.Exec(t.CreateSQL()); err != nil {
		return fmt.Errorf("creating `%s` postgres table: %w", t.Name, err)
	}
	return nil
}

// Drop drops the table.
func (t *Table) Drop(db *sql.DB) error {
	if _, err := db.Exec(fmt.Sprintf(
		"DROP TABLE IF EXISTS \"%s\"",
		t.Name,
	)); err != nil {
		return fmt.Errorf("dropping table `%s`: %w", t.Name, err)
	}
	return nil
}

// CreateSQL returns the `CREATE TABLE IF NOT EXISTS` statement for the
// table.
func (t *Table) CreateSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS \"")
	sb.WriteString(t.Name)
	sb.WriteString("\" (")
	for i, c := range t.Columns() {
		if i > 0 {
			sb.WriteString(", ")
		}
		c.createSQL(&sb)
	}
	sb.WriteString(", PRIMARY KEY (")
	columnsNames(&sb, t.PrimaryKeys)
	sb.WriteString("))")
	return sb.String()
}

// UpsertSQL returns an `INSERT` statement taking one placeholder per column
// (primary keys first) which overwrites the non-key columns on conflict.
func (t *Table) UpsertSQL() string {
	columns := t.Columns()
	var sb strings.Builder
	sb.WriteString("INSERT INTO \"")
	sb.WriteString(t.Name)
	sb.WriteString("\" (")
	columnsNames(&sb, columns)
	sb.WriteString(") VALUES (")
	placeholders(&sb, 1, len(columns))
	sb.WriteString(") ON CONFLICT (")
	columnsNames(&sb, t.PrimaryKeys)
	if len(t.OtherColumns) < 1 {
		sb.WriteString(") DO NOTHING")
		return sb.String()
	}
	sb.WriteString(") DO UPDATE SET ")
	for i := range t.OtherColumns {
		if i > 0 {
			sb.WriteString(", ")
		}
		t.OtherColumns[i].nameSQL(&sb)
		sb.WriteString("=EXCLUDED.")
		t.OtherColumns[i].nameSQL(&sb)
	}
	return sb.String()
}

// SelectSQL returns a `SELECT` of `columns` filtered by equality on the
// leading `len(keys)` primary keys, in order, followed by `extra` (which
// may reference later placeholders) if it is non-empty.
func (t *Table) SelectSQL(columns []Column, keys int, extra string) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	columnsNames(&sb, columns)
	sb.WriteString(" FROM \"")
	sb.WriteString(t.Name)
	sb.WriteByte('"')
	t.where(&sb, keys, extra)
	return sb.String()
}

// DeleteSQL is like `SelectSQL` but deletes the matching rows.
func (t *Table) DeleteSQL(keys int, extra string) string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM \"")
	sb.WriteString(t.Name)
	sb.WriteByte('"')
	t.where(&sb, keys, extra)
	return sb.String()
}

func (t *Table) where(sb *strings.Builder, keys int, extra string) {
	if keys < 1 && extra == "" {
		return
	}
	sb.WriteString(" WHERE ")
	for i := 0; i < keys; i++ {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		t.PrimaryKeys[i].nameSQL(sb)
		sb.WriteString("=$")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	if extra != "" {
		if keys > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(extra)
	}
}

func columnsNames(sb *strings.Builder, columns []Column) {
	for i := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		columns[i].nameSQL(sb)
	}
}

func placeholders(sb *strings.Builder, start, n int) {
	for i := start; i < start+n; i++ {
		if i > start {
			sb.WriteString(", ")
		}
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(i))
	}
}

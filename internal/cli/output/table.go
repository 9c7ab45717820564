package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabler is implemented by results that know how to lay themselves out.
type Tabler interface {
	Table(wide bool) *Table
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data as a table. Supported inputs are Table, Tabler,
// slices of structs, single structs and maps; anything else is printed
// with %v.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	var table *Table
	switch d := data.(type) {
	case *Table:
		table = d
	case Table:
		table = &d
	case Tabler:
		table = d.Table(f.Wide)
	default:
		var ok bool
		if table, ok = reflectTable(reflect.ValueOf(data), f.Wide); !ok {
			_, err := fmt.Fprintf(w, "%v\n", data)
			return err
		}
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// column describes one exported struct field shown in a table.
type column struct {
	index  int
	header string
}

// columns lists the fields of t to display. The `table` tag renames a
// column ("table:\"NAME\""), hides it ("-") or shows it only in wide mode
// (",wide").
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("table"), ",")
		if name == "-" {
			continue
		}
		if opts == "wide" && !wide {
			continue
		}
		if name == "" {
			name = strings.ToUpper(toSnakeCase(field.Name))
		}
		cols = append(cols, column{index: i, header: name})
	}
	return cols
}

func reflectTable(v reflect.Value, wide bool) (*Table, bool) {
	v = indirect(v)
	if !v.IsValid() {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceTable(v, wide)
	case reflect.Struct:
		table := &Table{Headers: []string{"FIELD", "VALUE"}}
		for _, c := range columns(v.Type(), wide) {
			table.AddRow(c.header, formatValue(v.Field(c.index)))
		}
		return table, true
	case reflect.Map:
		table := &Table{Headers: []string{"KEY", "VALUE"}}
		keys := v.MapKeys()
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{formatValue(k), formatValue(v.MapIndex(k))})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
		table.Rows = rows
		return table, true
	default:
		return nil, false
	}
}

func sliceTable(v reflect.Value, wide bool) (*Table, bool) {
	if v.Len() == 0 {
		return &Table{}, true
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct {
		table := &Table{Headers: []string{"VALUE"}}
		for i := 0; i < v.Len(); i++ {
			table.AddRow(formatValue(v.Index(i)))
		}
		return table, true
	}

	cols := columns(elemType, wide)
	table := &Table{}
	for _, c := range cols {
		table.Headers = append(table.Headers, c.header)
	}
	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		row := make([]string, len(cols))
		if elem.IsValid() {
			for j, c := range cols {
				row[j] = formatValue(elem.Field(c.index))
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// formatValue formats a reflect.Value for a table cell.
func formatValue(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return "-"
	}

	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ",")
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		if !v.CanInterface() {
			return "-"
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts CamelCase to Camel_Case; callers upper-case it.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return result.String()
}


package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

var csvHeader = []string{"Name", "Store", "Version", "Notes", "Category", "Tags", "Last Modified", "File Size (KB)", "MIME Type"}

const csvTimeLayout = "2006-01-02 15:04:05"

// quoteField always quotes, doubling embedded quotes. encoding/csv only
// quotes when it has to.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteField(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Row renders one document as CSV fields, in header order.
func Row(d ManagedDocument) []string {
	category := ""
	if d.Category != nil {
		category = *d.Category
	}
	modified := ""
	if !d.LastModified.IsZero() {
		modified = d.LastModified.UTC().Format(csvTimeLayout)
	}
	return []string{
		d.DisplayName,
		d.StoreDisplayName,
		d.Version,
		d.Notes,
		category,
		strings.Join(d.Tags, "; "),
		modified,
		fmt.Sprintf("%.2f", float64(d.SizeBytes)/1024),
		d.MIMEType,
	}
}

// WriteCSV writes the header and one row per document.
func WriteCSV(out io.Writer, docs []ManagedDocument) error {
	w := bufio.NewWriter(out)
	if err := writeRow(w, csvHeader); err != nil {
		return err
	}
	for _, d := range docs {
		if err := writeRow(w, Row(d)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ExportFileName is the suggested download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return "documents-" + t.UTC().Format("20060102-150405") + ".csv"
}

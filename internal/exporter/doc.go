// Package exporter writes a record set back out under the dataset's column
// schema.
//
// Two formats are supported:
//
// CSV: UTF-8 delimited text. Interpreted columns carry their cleaned value
// (decimal amounts, YYYY-MM-DD dates, integer years), null is an empty cell
// and all other columns are copied verbatim. Re-reading an export with the
// dataset cleaning rules yields the same records.
//
// XLSX: the same rows in a single "Startups" worksheet, written with
// excelize's stream writer.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := exporter.Write(&buf, exporter.FormatCSV, ds.Columns, filtered)
//
//	name := exporter.FormatCSV.FileName("filtered_indian_startups")
package exporter

// Package dataset loads the startup investments file and cleans it into an
// immutable domain.Dataset.
//
// Cleaning never drops a row. Each interpreted column is coerced to its type
// and a value that cannot be coerced becomes null:
//
//   - funding_total_usd: "$" and "," removed, then parsed as a decimal
//   - first_funding_at: parsed as a calendar date
//   - founded_year: parsed as an integer ("2012.0" is accepted)
//   - round columns: parsed as decimals
//   - market: a null value becomes "Unknown"
//
// Columns the dashboard does not interpret are kept verbatim so an export
// reproduces the input schema.
//
// The loaded dataset holds two record sets: every record of the file and the
// records of the target country.
package dataset

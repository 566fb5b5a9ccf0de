// Package analytics implements the filter-and-aggregate pipeline behind every
// dashboard view.
//
// All functions are pure: they read a domain.RecordSet and return a freshly
// allocated view, never mutating their input and never returning an error.
// Aggregations share one contract:
//
//   - a null grouping key forms its own group
//   - a sum over no values, or only null values, is zero
//   - ordering is stable, so ties keep first-appearance order
//     (column order for column sums)
//   - no matching rows yields an empty view
//
// Build runs the whole pipeline for one filter selection and returns the
// domain.Dashboard bundle.
package analytics

// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP, websocket and CLI front ends and the pure
// pipeline packages.
//
// # Available Services
//
//	- DashboardService: runs the filter-and-aggregate pipeline over the
//	  loaded dataset and renders charts, traced and metered per rerun
//	- ExportService: renders CSV/XLSX downloads and keeps prepared
//	  artifacts in a TTL cache under a random id
//	- HealthService: health, readiness (dataset loaded), liveness and
//	  version information
//
// # Error Handling
//
// Services return wrapped sentinel errors (ErrInvalidFilter,
// ErrViewNotFound, ErrUnsupportedFormat, ErrExportNotFound) which the
// transport layer maps to problem responses with errors.Is.
//
// # Testing
//
// Front ends depend on small interfaces so tests can substitute testify
// mocks for the services.
package services

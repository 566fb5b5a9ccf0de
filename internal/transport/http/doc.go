// Package http implements the HTTP handlers of the dashboard API. Handlers
// parse and validate the filter controls, delegate to the services and
// translate service errors into RFC 7807 problem responses.
//
// # Routes
//
// Mounted under /api/dashboard:
//
//	GET  /                    full dashboard bundle for the filter
//	GET  /controls            year bounds, defaults and sector options
//	GET  /views/{view}        one view of the bundle
//	GET  /charts/{view}.png   one view rendered as a PNG chart
//	GET  /export.{format}     filtered records as csv or xlsx
//	POST /exports             prepare an export, answered with its id
//	GET  /exports/{id}        download a prepared export
//
// The filter is read from the query string: year_min, year_max and a
// repeatable sector parameter. Missing years default to the dashboard's
// initial selection.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/dashboard/unknown-view",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Dashboard view not found",
//	    "instance": "/api/dashboard/views/pie"
//	}
//
// # Testing
//
// Handlers depend on small service interfaces and are tested with testify
// mocks and httptest.
package http

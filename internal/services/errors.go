package services

import "errors"

// Service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Dashboard errors
	ErrInvalidFilter = errors.New("invalid filter parameters")
	ErrViewNotFound  = errors.New("view not found")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrExportNotFound    = errors.New("export not found or expired")
)

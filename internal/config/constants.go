package config

// Application constants
const (
	// Application Info
	AppName    = "startupdash"
	AppTitle   = "Indian Startup Investments Dashboard"
	AppVersion = "1.0.0"

	// Server defaults
	DefaultPort = 8080

	// Dataset defaults
	DefaultDatasetFile   = "investments_VC.csv"
	DefaultEncoding      = "ISO-8859-1"
	DefaultTargetCountry = "IND"
	DefaultTopN          = 10

	// Export defaults
	DefaultExportBaseName = "filtered_indian_startups"

	// Logging defaults
	DefaultLogFile = "logs/app.log"
)

// MIME types of the downloadable artefacts
const (
	MIMETypeCSV  = "text/csv"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypePNG  = "image/png"
)

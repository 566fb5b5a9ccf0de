// Package app wires the dashboard server together: configuration, logging,
// OpenTelemetry, the dataset, the services and the HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Load and clean the investments file
//	4. Build the dashboard, export and health services
//	5. Mount the API, the live session endpoint and the embedded page
//	6. Start the HTTP server and the session hub
//
// # Usage
//
//	a, err := app.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// The dataset is loaded exactly once. A missing or unreadable file makes New
// fail; the package never calls os.Exit.
//
// # Graceful Shutdown
//
// Run stops on SIGINT, SIGTERM or cancellation of ctx. Live sessions receive
// a close frame before the server drains in-flight requests, and exporters
// are flushed last.
package app

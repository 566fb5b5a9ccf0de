// Package shared holds helpers used across packages. The testutil
// subpackage builds investments fixtures and captures slog output in tests.
package shared

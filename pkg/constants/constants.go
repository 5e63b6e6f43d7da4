// Package constants provides shared constants for the dcf-forecast application.
package constants

// Document defaults. These match the values written into previously saved
// documents, so they must stay stable.
const (
	// DefaultGrowth is the default terminal growth rate per period
	DefaultGrowth = "1.02"

	// DefaultDiscount is the default discount rate per period
	DefaultDiscount = "1.03"

	// DefaultODEStepSize is the default dense-output spacing for the ODE solver
	DefaultODEStepSize = "0.01"
)

// Fallback values substituted for unparseable free-text numeric fields.
const (
	// PeriodFallback is substituted for an unparseable segment end period
	PeriodFallback uint = 0

	// RateFallback is substituted for an unparseable growth or discount rate
	RateFallback = 1.0

	// StepFallback is substituted for an unparseable ODE step size
	StepFallback = 1.0
)

// ODETolerance is the absolute and relative local error tolerance for the
// adaptive integrator.
const ODETolerance = 1e-10

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// File location constants
const (
	// DefaultConfigFile is the default application configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultDocumentFile is the default projection document file name
	DefaultDocumentFile = "state.json"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for
	// projection documents (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

package ir

// Version constants for IR schema and tool.
const (
	// IRVersion is the catalog/IR schema version.
	IRVersion = "1"

	// ToolVersion is the dcsql release version.
	ToolVersion = "0.1.0"
)

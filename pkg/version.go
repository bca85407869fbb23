package factbook

var (
	// Version of factbook
	Version = "v0.1.0"

	// Build timestamp
	Build = "n/a"
)

// ABOUTME: Version and product identification
// ABOUTME: Version is overridden at build time via ldflags
package version

// Version is set via ldflags at build time
var Version = "dev"

// Product is the human-readable product name
const Product = "Audio Analyzer"

// String returns the product and version for banners and --version
func String() string {
	return Product + " " + Version
}

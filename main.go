// =============================================================================
// BOM Steel Filler - Main Entry Point
// =============================================================================
//
// USAGE:
//   bomfill fill       - Fill the takeoff workbook from the materials table
//   bomfill inspect    - Show the items parsed from the table
//   bomfill classify   - Classify profile descriptions
//   bomfill version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (table reading, classification, placement)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bom-steel-filler/cmd"
)

func main() {
	cmd.Execute()
}

package report

import (
	"encoding/json"
	"io"

	"github.com/codesweep/codesweep/internal/types"
)

// WriteJSON pretty-prints the full orchestration result for pipelines.
func WriteJSON(w io.Writer, res *types.OrchestrationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

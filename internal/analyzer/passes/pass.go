// Package passes implements the cost passes run over one shader tree.
//
// Each pass reads the tree and the maps filled by earlier passes, and fills
// its own maps in the shared AnalysisContext. Passes are stateless apart
// from their options, so one instance can serve many runs.
package passes

import (
	"shadertune/internal/context"
)

// Pass is one stage of the cost pipeline.
type Pass interface {
	Name() string
	Run(ctx *context.AnalysisContext) error
}

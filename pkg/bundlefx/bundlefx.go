// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/vblocks/pkg/middleware/auth"
	"github.com/joeydtaylor/vblocks/pkg/middleware/logger"
	"github.com/joeydtaylor/vblocks/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module groups the HTTP middleware providers: auth, access/system logging
// and the named "metrics" handler. Each needs a manifest.Config in the graph.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)

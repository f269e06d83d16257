package core

import (
	"net/http"

	"github.com/joeydtaylor/vblocks/pkg/dispatch"
	"github.com/joeydtaylor/vblocks/pkg/middleware/auth"
	"github.com/joeydtaylor/vblocks/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/vblocks/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth       *auth.Middleware
	LogMW      *logger.Middleware
	Metrics    http.Handler
	Router     httpx.Router
	Dispatcher *dispatch.Dispatcher
	SiteRoot   string // unpacked bundle; empty disables static serving
}

package core

import (
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/vblocks/pkg/manifest"
	hmetrics "github.com/joeydtaylor/vblocks/pkg/middleware/metrics"
)

const (
	PathList          = "/api/list_inference_functions"
	PathGeneric       = "/apipost/inference"
	PathTextToText    = "/apipost/inference_text_to_text"
	PathTextToTensors = "/apipost/inference_text_to_tensors"
)

type route struct {
	Method string
	Path   string
	H      http.HandlerFunc
}

// BuildRouter mounts the inference API, metrics and the static bundle on d.Router.
// The web app cannot POST under /api, hence the separate /apipost prefix.
func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	hmetrics.AddMetricsSkipPaths(cfg.Server.MetricsSkipPaths...)

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		r.Use(hmetrics.Collect(d.Auth))
	} else {
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(nil))
		}
		r.Use(hmetrics.Collect(nil))
	}

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	api := inferenceAPI{d: d.Dispatcher, maxBody: cfg.Server.MaxBodyBytes}
	routes := []route{
		{http.MethodGet, PathList, api.list},
		{http.MethodPost, PathGeneric, api.generic},
		{http.MethodPost, PathTextToText, api.textToText},
		{http.MethodPost, PathTextToTensors, api.textToTensors},
	}
	for _, rt := range routes {
		h := rt.H
		if strings.HasPrefix(rt.Path, "/apipost/") {
			h = withInferenceTimeout(h, time.Duration(cfg.Server.InferenceTimeoutMS)*time.Millisecond)
		}
		switch rt.Method {
		case http.MethodGet:
			r.Get(rt.Path, h)
		case http.MethodPost:
			r.Post(rt.Path, h)
		default:
			r.Handle(rt.Method, rt.Path, h)
		}
	}

	if d.SiteRoot != "" {
		r.Get("/*", staticHandler(d.SiteRoot))
	}
	return r.Mux()
}

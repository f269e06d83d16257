// pkg/core/handlers.go
package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/joeydtaylor/vblocks/pkg/codec"
	"github.com/joeydtaylor/vblocks/pkg/dispatch"
	"github.com/joeydtaylor/vblocks/pkg/tensor"
)

type tensorsRequest struct {
	Function string        `json:"function"`
	Tensors  []tensor.Wire `json:"tensors"`
}

type textRequest struct {
	Function string  `json:"function"`
	Text     *string `json:"text"`
}

// inferenceAPI translates HTTP bodies to dispatcher calls and Results back to
// JSON. Application failures are always 200 + {"error": ...}.
type inferenceAPI struct {
	d       *dispatch.Dispatcher
	maxBody int64
}

func (a inferenceAPI) list(w http.ResponseWriter, _ *http.Request) {
	writeValue(w, a.d.List())
}

func (a inferenceAPI) generic(w http.ResponseWriter, r *http.Request) {
	var req tensorsRequest
	if err := a.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Function == "" {
		writeError(w, missing("function"))
		return
	}
	if req.Tensors == nil {
		writeError(w, missing("tensors"))
		return
	}
	writeResult(w, a.d.Generic(r.Context(), req.Function, req.Tensors), false)
}

func (a inferenceAPI) textToText(w http.ResponseWriter, r *http.Request) {
	req, err := a.decodeText(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, a.d.TextToText(r.Context(), req.Function, *req.Text), true)
}

func (a inferenceAPI) textToTensors(w http.ResponseWriter, r *http.Request) {
	req, err := a.decodeText(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, a.d.TextToTensors(r.Context(), req.Function, *req.Text), false)
}

func (a inferenceAPI) decodeText(w http.ResponseWriter, r *http.Request) (textRequest, error) {
	var req textRequest
	if err := a.decode(w, r, &req); err != nil {
		return req, err
	}
	if req.Function == "" {
		return req, missing("function")
	}
	if req.Text == nil {
		return req, missing("text")
	}
	return req, nil
}

func (a inferenceAPI) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body
	if a.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, a.maxBody)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: body exceeds %d bytes", dispatch.ErrBadRequest, tooBig.Limit)
		}
		return fmt.Errorf("%w: read body: %w", dispatch.ErrBadRequest, err)
	}
	if err := codec.JSON.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %w", dispatch.ErrBadRequest, err)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing field %q", dispatch.ErrBadRequest, field)
}

func writeError(w http.ResponseWriter, err error) {
	writeValue(w, map[string]string{"error": err.Error()})
}

func writeResult(w http.ResponseWriter, res dispatch.Result, text bool) {
	switch {
	case res.Err != nil:
		writeValue(w, map[string]string{"error": res.Err.Detail()})
	case text:
		writeValue(w, map[string]string{"text": res.Text})
	default:
		tensors := res.Tensors
		if tensors == nil {
			tensors = []tensor.Wire{}
		}
		writeValue(w, map[string][]tensor.Wire{"tensors": tensors})
	}
}

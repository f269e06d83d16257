package main

import (
	"context"
	"strings"

	"github.com/joeydtaylor/vblocks/pkg/registry"
	"github.com/joeydtaylor/vblocks/pkg/tensor"
)

// registerDemo fills reg with small functions for trying the editor.
func registerDemo(reg *registry.Registry) error {
	regs := []func() error{
		func() error { return reg.RegisterGeneric("identity", identity) },
		func() error { return reg.RegisterGeneric("double", double) },
		func() error { return reg.RegisterTextToText("uppercase", uppercase) },
		func() error { return reg.RegisterTextToTensors("char_codes", charCodes) },
	}
	for _, r := range regs {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

func identity(_ context.Context, in []*tensor.Tensor) ([]*tensor.Tensor, error) {
	return in, nil
}

func double(_ context.Context, in []*tensor.Tensor) ([]*tensor.Tensor, error) {
	out := make([]*tensor.Tensor, 0, len(in))
	for _, t := range in {
		vals := t.Values()
		for i := range vals {
			vals[i] *= 2
		}
		d, err := tensor.New(t.Shape(), vals)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func uppercase(_ context.Context, s string) (string, error) { return strings.ToUpper(s), nil }

// charCodes returns one rank-1 tensor holding the code point of every rune.
func charCodes(_ context.Context, s string) ([]*tensor.Tensor, error) {
	runes := []rune(s)
	vals := make([]float64, len(runes))
	for i, r := range runes {
		vals[i] = float64(r)
	}
	return []*tensor.Tensor{tensor.Vector(vals)}, nil
}

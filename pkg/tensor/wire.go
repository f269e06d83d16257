package tensor

import "fmt"

// Wire is the JSON form exchanged with the web app.
type Wire struct {
	TensorValues []float64 `json:"tensorValues"`
	TensorShape  []int     `json:"tensorShape"`
}

// Decode rebuilds a tensor from its wire form.
func Decode(w Wire) (*Tensor, error) {
	return New(w.TensorShape, w.TensorValues)
}

// Encode flattens t into its wire form. Slices are never nil so a scalar
// encodes its shape as [] rather than null.
func Encode(t *Tensor) (Wire, error) {
	if err := t.Validate(); err != nil {
		return Wire{}, err
	}
	return Wire{
		TensorValues: append(make([]float64, 0, len(t.values)), t.values...),
		TensorShape:  append(make([]int, 0, len(t.shape)), t.shape...),
	}, nil
}

func DecodeAll(ws []Wire) ([]*Tensor, error) {
	out := make([]*Tensor, 0, len(ws))
	for i, w := range ws {
		t, err := Decode(w)
		if err != nil {
			return nil, fmt.Errorf("tensor %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func EncodeAll(ts []*Tensor) ([]Wire, error) {
	out := make([]Wire, 0, len(ts))
	for i, t := range ts {
		w, err := Encode(t)
		if err != nil {
			return nil, fmt.Errorf("tensor %d: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

package ml

import (
	"encoding/json"

	"agrimaint/internal/errs"
)

// EncodeParams serializes model parameters for the model store.
func EncodeParams(model any) (string, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return "", errs.Wrap(err, "encode model params")
	}
	return string(raw), nil
}

// DecodeParams restores model parameters from the model store.
func DecodeParams(paramsJSON string, model any) error {
	if err := json.Unmarshal([]byte(paramsJSON), model); err != nil {
		return errs.Wrap(err, "decode model params")
	}
	return nil
}

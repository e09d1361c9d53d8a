//go:build !onnx || !cgo
// +build !onnx !cgo

package embedding

import (
	"context"
	"errors"
)

var errONNXUnavailable = errors.New("ONNX embedder requires building with -tags=onnx, CGO_ENABLED=1, and the onnxruntime library")

// ONNXEmbedder stub type when built without the onnx tag (see onnx.go for the
// real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when ONNX support is not compiled in.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errONNXUnavailable
}

// Embed always fails on the stub.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errONNXUnavailable
}

// EmbedBatch always fails on the stub.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errONNXUnavailable
}

// Dimensions returns 0 on the stub.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op on the stub.
func (e *ONNXEmbedder) Close() error { return nil }

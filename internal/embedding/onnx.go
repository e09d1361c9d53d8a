//go:build onnx && cgo
// +build onnx,cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/smarimus/ai-finance-assistant/pkg/utils"
)

// ONNXEmbedder runs a local sentence-embedding model through ONNX Runtime.
// Requires building with -tags=onnx, CGO, and the onnxruntime shared library.
//
// Tensors are allocated once at construction; Run() reads and writes their
// backing arrays, so inference is serialized with a mutex.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	tokenizer  Tokenizer
	cache      *Cache
	dimensions int
	maxTokens  int

	mu     sync.Mutex
	inputs [3]*ort.Tensor[int64] // input_ids, attention_mask, token_type_ids
	output *ort.Tensor[float32]
}

var onnxInputNames = []string{"input_ids", "attention_mask", "token_type_ids"}

// NewONNXEmbedder loads the model at modelPath. The runtime environment is
// initialized on first use.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	e := &ONNXEmbedder{
		tokenizer:  &WordTokenizer{},
		cache:      NewCache(cacheSize),
		dimensions: dimensions,
		maxTokens:  maxTokens,
	}

	seqShape := ort.NewShape(1, int64(maxTokens))
	for i := range e.inputs {
		t, err := ort.NewTensor(seqShape, make([]int64, maxTokens))
		if err != nil {
			e.destroyTensors()
			return nil, fmt.Errorf("create %s tensor: %w", onnxInputNames[i], err)
		}
		e.inputs[i] = t
	}
	out, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	e.output = out

	session, err := ort.NewAdvancedSession(
		modelPath,
		onnxInputNames,
		[]string{"output"},
		[]ort.ArbitraryTensor{e.inputs[0], e.inputs[1], e.inputs[2]},
		[]ort.ArbitraryTensor{e.output},
		nil,
	)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	e.session = session
	return e, nil
}

// Embed returns the normalized embedding for text, served from the cache when
// the text was seen before.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	inputIDs, attentionMask, tokenTypeIDs := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputs[0].GetData(), inputIDs)
	copy(e.inputs[1].GetData(), attentionMask)
	copy(e.inputs[2].GetData(), tokenTypeIDs)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	embedding := make([]float32, e.dimensions)
	copy(embedding, e.output.GetData()[:e.dimensions])
	utils.NormalizeL2(embedding)
	e.cache.Set(text, embedding)
	return embedding, nil
}

// EmbedBatch embeds each text in order.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int { return e.dimensions }

// Close releases the session and all tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	e.destroyTensors()
	return err
}

func (e *ONNXEmbedder) destroyTensors() {
	for i, t := range e.inputs {
		if t != nil {
			_ = t.Destroy()
			e.inputs[i] = nil
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
}

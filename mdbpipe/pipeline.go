package mdbpipe

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// Transformer converts values between application and storage representations.
// TransformIncoming is applied to documents on their way into storage,
// TransformOutgoing to documents on their way back out.
// Implementations must walk nested sub-documents themselves;
// MapValues provides the usual traversal.
type Transformer interface {
	TransformIncoming(doc bson.D) (bson.D, error)
	TransformOutgoing(doc bson.D) (bson.D, error)
}

// Pipeline is an ordered sequence of registered transformers.
// A Pipeline is created empty (or via NewPipeline) and configured
// by Register calls, normally before first use.
// Registration during a transform pass is safe but does not affect
// passes already in progress.
type Pipeline struct {
	mutex        sync.RWMutex
	transformers []Transformer
}

// NewPipeline creates a Pipeline containing the specified transformers
// in argument order.
func NewPipeline(transformers ...Transformer) *Pipeline {
	p := &Pipeline{}
	p.transformers = append(p.transformers, transformers...)
	return p
}

// Register appends a transformer to the pipeline.
// Duplicates are allowed; the same transformer will run once per registration.
func (p *Pipeline) Register(transformer Transformer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.transformers = append(p.transformers, transformer)
}

// Len returns the number of registered transformers.
func (p *Pipeline) Len() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.transformers)
}

// ApplyIncoming runs the document through each transformer in registration
// order, replacing the document with each transformer's output.
// The result is ready to be handed to the Mongo driver for storage.
// Values no transformer recognizes pass through unchanged;
// if such a value is not BSON-encodable the driver will reject it later.
func (p *Pipeline) ApplyIncoming(doc bson.D) (bson.D, error) {
	var err error
	for _, transformer := range p.snapshot() {
		if doc, err = transformer.TransformIncoming(doc); err != nil {
			return nil, fmt.Errorf("transform incoming: %w", err)
		}
	}
	return doc, nil
}

// ApplyOutgoing runs the document through each transformer in registration
// order, restoring application types from their storage encodings.
func (p *Pipeline) ApplyOutgoing(doc bson.D) (bson.D, error) {
	var err error
	for _, transformer := range p.snapshot() {
		if doc, err = transformer.TransformOutgoing(doc); err != nil {
			return nil, fmt.Errorf("transform outgoing: %w", err)
		}
	}
	return doc, nil
}

// snapshot returns the transformer sequence as of the start of a pass.
// The slice is never modified in place so the copy is just the header.
func (p *Pipeline) snapshot() []Transformer {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.transformers
}

package block

import (
	"sync"

	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Registry manages all available block implementations.
type Registry interface {
	Register(block Block) error
	Get(t types.BlockType) (Block, error)
	List() []types.BlockType
	Remove(t types.BlockType) error
}

// RegistryV1 manages all available block implementations.
type RegistryV1 struct {
	blocks map[types.BlockType]Block
	mu     sync.RWMutex
}

// NewRegistry creates an empty block registry.
func NewRegistry() Registry {
	return &RegistryV1{
		blocks: make(map[types.BlockType]Block),
		mu:     sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry with every built-in block
// registered.
func NewDefaultRegistry() Registry {
	r := NewRegistry()

	for _, b := range []Block{
		NewPrice(),
		NewSMA(),
		NewEMA(),
		NewRSI(),
		NewMACD(),
		NewATR(),
		NewBollingerBands(),
		NewVWAP(),
		NewStochastic(),
		NewVolumeSpike(),
		NewCompare(),
		NewAnd(),
		NewOr(),
		NewSignal(),
	} {
		// Built-in types are unique; Register only fails on duplicates.
		_ = r.Register(b)
	}

	return r
}

// Register adds a block to the registry.
func (r *RegistryV1) Register(block Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := block.Type()
	if _, exists := r.blocks[t]; exists {
		return errors.Newf(errors.ErrCodeBlockAlreadyExists, "Register: block with type %s already registered", t)
	}

	r.blocks[t] = block

	return nil
}

// Get retrieves a block by type.
func (r *RegistryV1) Get(t types.BlockType) (Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, exists := r.blocks[t]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeBlockNotFound, "Get: block with type %s not found", t)
	}

	return block, nil
}

// List returns all registered block types.
func (r *RegistryV1) List() []types.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.BlockType, 0, len(r.blocks))
	for t := range r.blocks {
		out = append(out, t)
	}

	return out
}

// Remove removes a block from the registry.
func (r *RegistryV1) Remove(t types.BlockType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blocks[t]; !exists {
		return errors.Newf(errors.ErrCodeBlockNotFound, "Remove: block with type %s not found", t)
	}

	delete(r.blocks, t)

	return nil
}

// Package graph evaluates strategy definitions: it orders the nodes,
// threads port values across connections, applies gate short-circuiting,
// and reduces the pass to a final trading signal.
package graph

import (
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/flowquant-lab/flowquant/internal/block"
	"github.com/flowquant-lab/flowquant/internal/logger"
	"github.com/flowquant-lab/flowquant/internal/types"
	"github.com/flowquant-lab/flowquant/pkg/errors"
)

// Evaluator runs strategy graphs against bar series snapshots. It holds no
// per-pass state: a single Evaluator is safe for concurrent passes.
type Evaluator struct {
	registry block.Registry
	logger   *logger.Logger
}

// NewEvaluator creates an evaluator backed by the given block registry.
func NewEvaluator(registry block.Registry, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Evaluator{
		registry: registry,
		logger:   log,
	}
}

// Evaluate runs one full pass of the definition against the bar snapshot.
// Node failures are contained: an errored node and everything depending on
// it are marked failed, nodes behind a false gate are marked skipped, and
// all independently resolvable nodes still evaluate. The returned pass
// always carries a final signal; structural failures yield HOLD.
func (e *Evaluator) Evaluate(def *types.StrategyDefinition, bars *types.BarSeries) *types.PassResult {
	pass := &types.PassResult{FinalSignal: types.SignalHold}

	if err := def.Validate(); err != nil {
		pass.Error = err.Error()
		e.logger.Warn("rejecting invalid strategy definition",
			zap.String("strategy", def.ID), zap.Error(err))

		return pass
	}

	if bars != nil {
		if err := bars.Validate(); err != nil {
			pass.Error = err.Error()
			return pass
		}
	}

	ordered, unorderable := selectOrderer(def.Connections).Order(def.Nodes, def.Connections)

	run := &passRun{
		evaluator:  e,
		bars:       bars,
		positional: len(def.Connections) == 0,
		inbound:    make(map[string][]types.Connection),
		consumers:  make(map[string][]string),
		results:    make(map[string]*types.BlockResult, len(def.Nodes)),
		skipped:    make(map[string]string),
	}

	for _, c := range def.Connections {
		run.inbound[c.ToNodeID] = append(run.inbound[c.ToNodeID], c)
		run.consumers[c.FromNodeID] = append(run.consumers[c.FromNodeID], c.ToNodeID)
	}

	for _, node := range ordered {
		result := run.evaluateNode(node)
		run.results[node.ID] = result
		run.ordered = append(run.ordered, result)
		pass.Blocks = append(pass.Blocks, *result)
	}

	// Nodes on or behind a cycle never get an order slot. They fail
	// without aborting the rest of the pass.
	for _, node := range unorderable {
		cycleErr := errors.NewNodeError(errors.ErrCodeCyclicGraph, node.ID, "",
			"node participates in or depends on a connection cycle")
		pass.Blocks = append(pass.Blocks, types.BlockResult{
			NodeID:  node.ID,
			Type:    node.Type,
			Status:  types.BlockStatusFailed,
			Message: cycleErr.Error(),
		})
	}

	pass.Confidence = confidence(pass.Blocks)
	pass.FinalSignal = ExtractSignal(pass)

	return pass
}

// passRun is the mutable state of a single evaluation pass.
type passRun struct {
	evaluator  *Evaluator
	bars       *types.BarSeries
	positional bool
	inbound    map[string][]types.Connection
	consumers  map[string][]string
	results    map[string]*types.BlockResult
	ordered    []*types.BlockResult
	// skipped maps node id -> the gate whose false result short-circuits it.
	skipped map[string]string
	// gateTripped is the failing gate in positional mode, where every
	// subsequent node is considered downstream.
	gateTripped string
}

func (r *passRun) evaluateNode(node types.Node) *types.BlockResult {
	result := &types.BlockResult{
		NodeID: node.ID,
		Type:   node.Type,
	}

	if gate, isSkipped := r.skipOrigin(node.ID); isSkipped {
		result.Status = types.BlockStatusSkipped
		result.Message = "skipped: gate " + gate + " evaluated false"

		r.propagateSkip(node.ID, gate)

		return result
	}

	impl, err := r.evaluator.registry.Get(node.Type)
	if err != nil {
		result.Status = types.BlockStatusFailed
		result.Message = errors.NewNodeError(errors.ErrCodeUnknownBlock, node.ID, "",
			"no block registered for type "+string(node.Type)).Error()

		return result
	}

	inputs, inputErr := r.resolveInputs(node, impl)
	if inputErr != nil {
		result.Status = types.BlockStatusFailed
		result.Message = inputErr.Error()

		return result
	}

	config := mergeConfig(impl.DefaultConfig(), node.Config)
	ctx := block.Context{Bars: r.bars, Inputs: inputs}

	started := time.Now()
	outputs, evalErr := impl.Evaluate(ctx, config)
	result.ExecutionTime = time.Since(started)

	if evalErr != nil {
		result.Status = types.BlockStatusFailed
		result.Message = errors.NewNodeError(errors.ErrCodeBlockEvaluation, node.ID, "", evalErr.Error()).Error()
		r.evaluator.logger.Warn("block evaluation failed",
			zap.String("node", node.ID), zap.String("type", string(node.Type)), zap.Error(evalErr))

		return result
	}

	result.Outputs = outputs

	if block.IsGate(node.Type) && !outputs[block.PortResult].Bool {
		// Gate condition did not hold: the gate reports failed and
		// everything behind it is skipped, never invoked.
		result.Status = types.BlockStatusFailed
		result.Message = "condition evaluated false"

		if r.positional {
			r.gateTripped = node.ID
		} else {
			r.propagateSkip(node.ID, node.ID)
		}

		return result
	}

	result.Status = types.BlockStatusPassed

	return result
}

// skipOrigin reports whether the node sits behind a tripped gate and which
// gate tripped.
func (r *passRun) skipOrigin(nodeID string) (string, bool) {
	if gate, ok := r.skipped[nodeID]; ok {
		return gate, true
	}

	if r.positional && r.gateTripped != "" {
		return r.gateTripped, true
	}

	return "", false
}

// propagateSkip marks every transitive consumer of a node as skipped.
func (r *passRun) propagateSkip(nodeID, gate string) {
	for _, consumer := range r.consumers[nodeID] {
		if _, done := r.skipped[consumer]; done {
			continue
		}

		r.skipped[consumer] = gate
		r.propagateSkip(consumer, gate)
	}
}

// resolveInputs collects the node's input values. With explicit connections
// each inbound edge must reference an output the producer actually emitted;
// a dangling reference fails the consumer only. Without connections the
// most recent prior node emitting a matching port name feeds each input.
func (r *passRun) resolveInputs(node types.Node, impl block.Block) (map[string]types.PortValue, error) {
	inputs := make(map[string]types.PortValue)

	if !r.positional {
		for _, c := range r.inbound[node.ID] {
			producer, evaluated := r.results[c.FromNodeID]
			if !evaluated || producer.Status != types.BlockStatusPassed {
				return nil, errors.NewNodeErrorf(errors.ErrCodeUnresolvedInput, node.ID, c.ToPort,
					"input %q references node %q which produced no value", c.ToPort, c.FromNodeID)
			}

			value, produced := producer.Outputs[c.FromPort]
			if !produced {
				return nil, errors.NewNodeErrorf(errors.ErrCodeUnresolvedInput, node.ID, c.ToPort,
					"input %q references port %q which node %q does not emit", c.ToPort, c.FromPort, c.FromNodeID)
			}

			inputs[c.ToPort] = value
		}

		return inputs, nil
	}

	for _, port := range impl.InputPorts() {
		if value, ok := r.latestOutput(port); ok {
			inputs[port] = value
			continue
		}

		// Operand ports thread from the primary outputs of the most
		// recent prior nodes: "a"/"input" from the latest, "b" from the
		// one before it.
		switch port {
		case block.PortA, block.PortInput:
			if value, ok := r.recentResult(0); ok {
				inputs[port] = value
			}
		case block.PortB:
			if value, ok := r.recentResult(1); ok {
				inputs[port] = value
			}
		}
	}

	return inputs, nil
}

// recentResult returns the nth most recent primary ("result") output among
// passed nodes, newest first.
func (r *passRun) recentResult(nth int) (types.PortValue, bool) {
	seen := 0

	for i := len(r.ordered) - 1; i >= 0; i-- {
		res := r.ordered[i]
		if res.Status != types.BlockStatusPassed {
			continue
		}

		value, exists := res.Outputs[block.PortResult]
		if !exists {
			continue
		}

		if seen == nth {
			return value, true
		}

		seen++
	}

	return types.PortValue{}, false
}

// latestOutput scans already-evaluated nodes, most recent first, for an
// output port with the given name.
func (r *passRun) latestOutput(port string) (types.PortValue, bool) {
	var (
		found types.PortValue
		ok    bool
	)

	for _, res := range r.ordered {
		if res.Status != types.BlockStatusPassed {
			continue
		}

		if v, exists := res.Outputs[port]; exists {
			found = v
			ok = true
		}
	}

	return found, ok
}

// mergeConfig overlays node configuration on top of the block defaults.
func mergeConfig(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))

	for k, v := range defaults {
		merged[k] = v
	}

	for k, v := range overrides {
		merged[k] = v
	}

	return merged
}

// confidence is the fraction of invoked (non-skipped) blocks that passed.
func confidence(blocks []types.BlockResult) optional.Option[float64] {
	invoked, passed := 0, 0

	for _, b := range blocks {
		if b.Status == types.BlockStatusSkipped {
			continue
		}

		invoked++

		if b.Status == types.BlockStatusPassed {
			passed++
		}
	}

	if invoked == 0 {
		return optional.None[float64]()
	}

	return optional.Some(float64(passed) / float64(invoked))
}

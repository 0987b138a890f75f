package tools

import (
	"context"
	"encoding/json"

	"fleet-relay/internal/fleet"
)

// typedTool 带强类型参数的内置工具
type typedTool[A any] struct {
	kind        Kind
	description string
	parameters  map[string]any
	store       fleet.Store
	run         func(dcs []fleet.Datacenter, args A) any
}

func (t *typedTool[A]) Kind() Kind                 { return t.kind }
func (t *typedTool[A]) Name() string               { return t.kind.String() }
func (t *typedTool[A]) Description() string        { return t.description }
func (t *typedTool[A]) Parameters() map[string]any { return t.parameters }

// decode 解析参数，无法解析时使用零值（等价于空对象）
func (t *typedTool[A]) decode(raw json.RawMessage) A {
	var args A
	if len(raw) == 0 {
		return args
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		var zero A
		return zero
	}
	return args
}

// canonicalArgs 规整后的参数，用作缓存键
func (t *typedTool[A]) canonicalArgs(raw json.RawMessage) []byte {
	b, err := json.Marshal(t.decode(raw))
	if err != nil {
		return nil
	}
	return b
}

func (t *typedTool[A]) Execute(ctx context.Context, raw json.RawMessage) (any, error) {
	args := t.decode(raw)

	dcs, err := t.store.Datacenters(ctx)
	if err != nil {
		return nil, err
	}
	if len(dcs) == 0 {
		return emptyStoreResult(), nil
	}
	return t.run(dcs, args), nil
}

// newBuiltinTool 按种类构造内置工具
func newBuiltinTool(kind Kind, store fleet.Store) Tool {
	switch kind {
	case KindQueryDatacenters:
		return &typedTool[QueryArgs]{kind: kind, description: queryDescription, parameters: queryParameters(), store: store, run: queryDatacenters}
	case KindMostGPUs:
		return &typedTool[MostGPUsArgs]{kind: kind, description: mostGPUsDescription, parameters: mostGPUsParameters(), store: store, run: datacenterWithMostGPUs}
	case KindTotalPower:
		return &typedTool[PowerArgs]{kind: kind, description: powerDescription, parameters: powerParameters(), store: store, run: totalPowerConsumption}
	case KindUnderutilized:
		return &typedTool[UnderutilizedArgs]{kind: kind, description: underutilizedDescription, parameters: underutilizedParameters(), store: store, run: underutilizedGPUs}
	}
	return nil
}

// NewBuiltinRegistry 创建包含全部内置工具的注册表
func NewBuiltinRegistry(store fleet.Store) (*ToolRegistry, error) {
	registry := NewToolRegistry()
	for _, kind := range AllKinds() {
		if err := registry.RegisterTool(newBuiltinTool(kind, store)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Manifest 返回发送给上游模型的固定工具清单
func Manifest() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(AllKinds()))
	for _, kind := range AllKinds() {
		t := newBuiltinTool(kind, nil)
		defs = append(defs, ToolDefinition{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
	}
	return defs
}

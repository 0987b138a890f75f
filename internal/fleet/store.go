package fleet

import (
	"context"

	"fleet-relay/internal/common/errors"
)

// Store 数据中心数据的只读访问接口。
// 所有引擎都按 ID 升序返回记录，"并列时取第一个"之类的规则在引擎之间一致。
type Store interface {
	Datacenters(ctx context.Context) ([]Datacenter, error)
	Signals(ctx context.Context) ([]Signal, error)
	Demands(ctx context.Context) ([]DemandRequest, error)
	Close() error
}

// 存储引擎名称
const (
	EngineTinySQL = "tinysql"
	EngineMemory  = "memory"
)

// Open 按引擎名称创建存储
func Open(ctx context.Context, engine string, fixtures Fixtures) (Store, error) {
	switch engine {
	case EngineMemory:
		return NewMemoryStore(fixtures), nil
	case EngineTinySQL, "":
		return OpenSQLStore(ctx, fixtures)
	default:
		return nil, errors.NewErrorWithDetails(errors.ErrCodeConfigInvalid, "无效的存储引擎", engine)
	}
}

// MemoryStore 直接持有静态数据的内存存储
type MemoryStore struct {
	fixtures Fixtures
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(fixtures Fixtures) *MemoryStore {
	return &MemoryStore{fixtures: fixtures.SortedByID()}
}

func (s *MemoryStore) Datacenters(ctx context.Context) ([]Datacenter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Datacenter(nil), s.fixtures.Datacenters...), nil
}

func (s *MemoryStore) Signals(ctx context.Context) ([]Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Signal(nil), s.fixtures.Signals...), nil
}

func (s *MemoryStore) Demands(ctx context.Context) ([]DemandRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]DemandRequest(nil), s.fixtures.Demands...), nil
}

func (s *MemoryStore) Close() error { return nil }

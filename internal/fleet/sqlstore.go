package fleet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tinysql "github.com/SimonWaldherr/tinySQL"

	"fleet-relay/internal/common/errors"
	"fleet-relay/internal/util"
)

const tenant = "default"

// 表结构
var schema = []string{
	"CREATE TABLE IF NOT EXISTS datacenters (id TEXT, name TEXT, location TEXT, region TEXT, status TEXT, gpu_type TEXT, capacity_total INT, capacity_used INT, power_mw FLOAT, pue FLOAT, utilization FLOAT)",
	"CREATE TABLE IF NOT EXISTS signals (id TEXT, datacenter_id TEXT, kind TEXT, severity TEXT, message TEXT, ts TEXT)",
	"CREATE TABLE IF NOT EXISTS demands (id TEXT, customer TEXT, gpu_type TEXT, quantity INT, region TEXT, status TEXT, requested_at TEXT)",
}

// SQLStore 基于 tinySQL 内存库的存储。每个进程启动时重新建表并写入静态数据。
type SQLStore struct {
	mu sync.Mutex
	db *tinysql.DB
}

// OpenSQLStore 创建内存数据库、建表并写入数据
func OpenSQLStore(ctx context.Context, fixtures Fixtures) (*SQLStore, error) {
	s := &SQLStore{db: tinysql.NewDB()}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range schema {
		if err := s.execLocked(ctx, q); err != nil {
			return nil, err
		}
	}

	for _, dc := range fixtures.Datacenters {
		q := fmt.Sprintf("INSERT INTO datacenters VALUES ('%s', '%s', '%s', '%s', '%s', '%s', %d, %d, %s, %s, %s)",
			escapeSQ(dc.ID), escapeSQ(dc.Name), escapeSQ(dc.Location), escapeSQ(dc.Region),
			escapeSQ(dc.Status), escapeSQ(dc.GPUType), dc.CapacityTotal, dc.CapacityUsed,
			floatLit(dc.PowerMW), floatLit(dc.PUE), floatLit(dc.Utilization))
		if err := s.execLocked(ctx, q); err != nil {
			return nil, err
		}
	}
	for _, sig := range fixtures.Signals {
		q := fmt.Sprintf("INSERT INTO signals VALUES ('%s', '%s', '%s', '%s', '%s', '%s')",
			escapeSQ(sig.ID), escapeSQ(sig.DatacenterID), escapeSQ(sig.Kind), escapeSQ(sig.Severity),
			escapeSQ(sig.Message), sig.Timestamp.UTC().Format(time.RFC3339))
		if err := s.execLocked(ctx, q); err != nil {
			return nil, err
		}
	}
	for _, d := range fixtures.Demands {
		q := fmt.Sprintf("INSERT INTO demands VALUES ('%s', '%s', '%s', %d, '%s', '%s', '%s')",
			escapeSQ(d.ID), escapeSQ(d.Customer), escapeSQ(d.GPUType), d.Quantity,
			escapeSQ(d.Region), escapeSQ(d.Status), d.RequestedAt.UTC().Format(time.RFC3339))
		if err := s.execLocked(ctx, q); err != nil {
			return nil, err
		}
	}

	util.Debugw("数据中心存储已初始化", map[string]interface{}{
		"engine":      EngineTinySQL,
		"datacenters": len(fixtures.Datacenters),
		"signals":     len(fixtures.Signals),
		"demands":     len(fixtures.Demands),
	})
	return s, nil
}

// escapeSQ 转义单引号
func escapeSQ(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func floatLit(f float64) string {
	lit := strconv.FormatFloat(f, 'f', -1, 64)
	// 保证按浮点列解析
	if !strings.Contains(lit, ".") {
		lit += ".0"
	}
	return lit
}

// rowGetter 按列名读取当前行的值
type rowGetter func(col string) any

func (s *SQLStore) execLocked(ctx context.Context, q string) error {
	return s.scanLocked(ctx, q, nil)
}

// scanLocked 执行语句并逐行回调，调用方需持有锁
func (s *SQLStore) scanLocked(ctx context.Context, q string, visit func(get rowGetter)) error {
	if s.db == nil {
		return errors.NewError(errors.ErrCodeStoreFailed, "存储已关闭")
	}
	stmt, err := tinysql.ParseSQL(q)
	if err != nil {
		return errors.WrapStoreError("SQL解析失败", err).WithDetails(q)
	}
	rs, err := tinysql.Execute(ctx, s.db, tenant, stmt)
	if err != nil {
		return errors.WrapStoreError("SQL执行失败", err).WithDetails(q)
	}
	if visit == nil || rs == nil {
		return nil
	}
	for _, row := range rs.Rows {
		visit(func(col string) any {
			v, ok := tinysql.GetVal(row, col)
			if !ok {
				return nil
			}
			return v
		})
	}
	return nil
}

func (s *SQLStore) scan(ctx context.Context, q string, visit func(get rowGetter)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanLocked(ctx, q, visit)
}

func (s *SQLStore) Datacenters(ctx context.Context) ([]Datacenter, error) {
	var out []Datacenter
	err := s.scan(ctx, "SELECT id, name, location, region, status, gpu_type, capacity_total, capacity_used, power_mw, pue, utilization FROM datacenters ORDER BY id", func(get rowGetter) {
		out = append(out, Datacenter{
			ID:            strVal(get("id")),
			Name:          strVal(get("name")),
			Location:      strVal(get("location")),
			Region:        strVal(get("region")),
			Status:        strVal(get("status")),
			GPUType:       strVal(get("gpu_type")),
			CapacityTotal: intVal(get("capacity_total")),
			CapacityUsed:  intVal(get("capacity_used")),
			PowerMW:       floatVal(get("power_mw")),
			PUE:           floatVal(get("pue")),
			Utilization:   floatVal(get("utilization")),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Signals(ctx context.Context) ([]Signal, error) {
	var out []Signal
	err := s.scan(ctx, "SELECT id, datacenter_id, kind, severity, message, ts FROM signals ORDER BY id", func(get rowGetter) {
		out = append(out, Signal{
			ID:           strVal(get("id")),
			DatacenterID: strVal(get("datacenter_id")),
			Kind:         strVal(get("kind")),
			Severity:     strVal(get("severity")),
			Message:      strVal(get("message")),
			Timestamp:    timeVal(get("ts")),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Demands(ctx context.Context) ([]DemandRequest, error) {
	var out []DemandRequest
	err := s.scan(ctx, "SELECT id, customer, gpu_type, quantity, region, status, requested_at FROM demands ORDER BY id", func(get rowGetter) {
		out = append(out, DemandRequest{
			ID:          strVal(get("id")),
			Customer:    strVal(get("customer")),
			GPUType:     strVal(get("gpu_type")),
			Quantity:    intVal(get("quantity")),
			Region:      strVal(get("region")),
			Status:      strVal(get("status")),
			RequestedAt: timeVal(get("requested_at")),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close 释放数据库句柄
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = nil
	return nil
}

// 取值辅助函数，tinySQL 的数值列可能以 int、int64 或 float64 返回

func strVal(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func intVal(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func floatVal(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func timeVal(v any) time.Time {
	t, err := time.Parse(time.RFC3339, strVal(v))
	if err != nil {
		return time.Time{}
	}
	return t
}

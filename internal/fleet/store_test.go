package fleet

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	fixtures := DefaultFixtures()
	store := NewMemoryStore(fixtures)
	defer store.Close()

	dcs, err := store.Datacenters(context.Background())
	if err != nil {
		t.Fatalf("读取数据中心失败: %v", err)
	}
	if len(dcs) != len(fixtures.Datacenters) {
		t.Fatalf("期望 %d 个数据中心，实际为 %d", len(fixtures.Datacenters), len(dcs))
	}

	// 修改返回值不影响存储内部数据
	dcs[0].Name = "被修改"
	again, _ := store.Datacenters(context.Background())
	if again[0].Name != fixtures.Datacenters[0].Name {
		t.Errorf("存储内部数据被外部修改: %s", again[0].Name)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore(DefaultFixtures())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Datacenters(ctx); err == nil {
		t.Error("上下文已取消时应该返回错误")
	}
}

func TestSQLStore_RoundTrip(t *testing.T) {
	fixtures := DefaultFixtures()
	// 带单引号的值需要正确转义
	fixtures.Datacenters[1].Location = "O'Fallon, MO"

	store, err := OpenSQLStore(context.Background(), fixtures)
	if err != nil {
		t.Fatalf("创建 tinySQL 存储失败: %v", err)
	}
	defer store.Close()

	dcs, err := store.Datacenters(context.Background())
	if err != nil {
		t.Fatalf("读取数据中心失败: %v", err)
	}
	if !reflect.DeepEqual(dcs, fixtures.Datacenters) {
		t.Errorf("数据中心读写不一致:\n期望 %+v\n实际 %+v", fixtures.Datacenters, dcs)
	}

	signals, err := store.Signals(context.Background())
	if err != nil {
		t.Fatalf("读取信号失败: %v", err)
	}
	if len(signals) != len(fixtures.Signals) {
		t.Fatalf("期望 %d 条信号，实际为 %d", len(fixtures.Signals), len(signals))
	}
	if !signals[0].Timestamp.Equal(fixtures.Signals[0].Timestamp) {
		t.Errorf("时间戳不一致: 期望 %v，实际 %v", fixtures.Signals[0].Timestamp, signals[0].Timestamp)
	}

	demands, err := store.Demands(context.Background())
	if err != nil {
		t.Fatalf("读取需求失败: %v", err)
	}
	if len(demands) != len(fixtures.Demands) || demands[0].Quantity != fixtures.Demands[0].Quantity {
		t.Errorf("需求读写不一致: %+v", demands)
	}
}

func TestSQLStore_Empty(t *testing.T) {
	store, err := OpenSQLStore(context.Background(), Fixtures{})
	if err != nil {
		t.Fatalf("创建空存储失败: %v", err)
	}
	dcs, err := store.Datacenters(context.Background())
	if err != nil {
		t.Fatalf("读取空表失败: %v", err)
	}
	if len(dcs) != 0 {
		t.Errorf("期望空结果，实际为 %d 条", len(dcs))
	}
}

func TestSQLStore_Closed(t *testing.T) {
	store, err := OpenSQLStore(context.Background(), DefaultFixtures())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	store.Close()

	if _, err := store.Datacenters(context.Background()); err == nil {
		t.Error("关闭后读取应该返回错误")
	}
}

func TestOpen(t *testing.T) {
	for _, engine := range []string{EngineMemory, EngineTinySQL} {
		store, err := Open(context.Background(), engine, DefaultFixtures())
		if err != nil {
			t.Fatalf("引擎 %s 创建失败: %v", engine, err)
		}
		store.Close()
	}

	if _, err := Open(context.Background(), "postgres", DefaultFixtures()); err == nil {
		t.Error("未知引擎应该返回错误")
	}
}

func TestStores_SameOrderAcrossEngines(t *testing.T) {
	// 插入顺序与 ID 顺序不同
	fixtures := Fixtures{
		Datacenters: []Datacenter{
			{ID: "dc-c", Name: "Gamma", CapacityUsed: 300},
			{ID: "dc-a", Name: "Alpha", CapacityUsed: 100},
			{ID: "dc-b", Name: "Beta", CapacityUsed: 300},
		},
		Signals: []Signal{
			{ID: "sig-2", DatacenterID: "dc-a", Kind: "thermal"},
			{ID: "sig-1", DatacenterID: "dc-b", Kind: "network"},
		},
	}
	want := []string{"Alpha", "Beta", "Gamma"}

	for _, engine := range []string{EngineMemory, EngineTinySQL} {
		t.Run(engine, func(t *testing.T) {
			store, err := Open(context.Background(), engine, fixtures)
			if err != nil {
				t.Fatalf("引擎 %s 创建失败: %v", engine, err)
			}
			defer store.Close()

			dcs, err := store.Datacenters(context.Background())
			if err != nil {
				t.Fatalf("读取数据中心失败: %v", err)
			}
			var names []string
			for _, dc := range dcs {
				names = append(names, dc.Name)
			}
			if !reflect.DeepEqual(names, want) {
				t.Errorf("数据中心顺序 = %v，期望 %v", names, want)
			}

			signals, err := store.Signals(context.Background())
			if err != nil {
				t.Fatalf("读取信号失败: %v", err)
			}
			if len(signals) != 2 || signals[0].ID != "sig-1" {
				t.Errorf("信号应按 ID 排序: %+v", signals)
			}
		})
	}

	// 调用方的切片不被重新排序
	if fixtures.Datacenters[0].ID != "dc-c" {
		t.Errorf("原始数据被修改: %+v", fixtures.Datacenters)
	}
}

func TestDatacenter_IdleGPUs(t *testing.T) {
	dc := Datacenter{CapacityTotal: 100, CapacityUsed: 30}
	if dc.IdleGPUs() != 70 {
		t.Errorf("期望空闲 70，实际为 %d", dc.IdleGPUs())
	}
	over := Datacenter{CapacityTotal: 10, CapacityUsed: 12}
	if over.IdleGPUs() != 0 {
		t.Errorf("超额使用时空闲应为 0，实际为 %d", over.IdleGPUs())
	}
}

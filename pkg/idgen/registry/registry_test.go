package registry_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/registry"
	"katydid-common-uid/pkg/idgen/snowflake"
)

// ============================================================================
// 1. 工厂测试
// ============================================================================

// TestNewGenerator 测试按类型创建生成器
func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		genType core.GeneratorType
		config  any
		wantErr error
	}{
		{"Snowflake", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 1, DatacenterID: 2}, nil},
		{"配置类型错误", core.GeneratorTypeSnowflake, snowflake.Config{}, core.ErrInvalidConfig},
		{"配置为nil", core.GeneratorTypeSnowflake, (*snowflake.Config)(nil), core.ErrNilConfig},
		{"未知类型", core.GeneratorType("uuid"), &snowflake.Config{}, core.ErrInvalidGeneratorType},
		{"身份越界", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 40}, core.ErrInvalidWorkerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := registry.NewGenerator(tt.genType, tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewGenerator() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGenerator() error = %v", err)
			}
			if gen.GetWorkerID() != 1 || gen.GetDatacenterID() != 2 {
				t.Errorf("identity = (%d, %d), want (1, 2)", gen.GetWorkerID(), gen.GetDatacenterID())
			}
		})
	}
}

// ============================================================================
// 2. Registry基础功能测试
// ============================================================================

// TestRegistry_Create 测试创建生成器
func TestRegistry_Create(t *testing.T) {
	r := registry.NewRegistry()
	config := &snowflake.Config{WorkerID: 1, DatacenterID: 1}

	t.Run("正常创建", func(t *testing.T) {
		gen, err := r.Create("orders", core.GeneratorTypeSnowflake, config)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if gen == nil {
			t.Fatal("Create() returned nil generator")
		}
	})

	t.Run("重复键", func(t *testing.T) {
		_, err := r.Create("orders", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 2})
		if !errors.Is(err, core.ErrGeneratorAlreadyExists) {
			t.Errorf("Create() error = %v, want ErrGeneratorAlreadyExists", err)
		}
	})

	t.Run("身份重复", func(t *testing.T) {
		_, err := r.Create("payments", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 1, DatacenterID: 1})
		if !errors.Is(err, core.ErrIdentityInUse) {
			t.Errorf("Create() error = %v, want ErrIdentityInUse", err)
		}
		if r.Has("payments") {
			t.Error("失败的创建不应注册生成器")
		}
	})

	t.Run("无效类型", func(t *testing.T) {
		_, err := r.Create("test2", core.GeneratorType("invalid"), config)
		if !errors.Is(err, core.ErrInvalidGeneratorType) {
			t.Errorf("Create() error = %v, want ErrInvalidGeneratorType", err)
		}
	})

	t.Run("无效键", func(t *testing.T) {
		for _, key := range []string{"", "has space", "a/b", strings.Repeat("k", 257)} {
			_, err := r.Create(key, core.GeneratorTypeSnowflake, config)
			if !errors.Is(err, core.ErrInvalidKey) {
				t.Errorf("Create(%q) error = %v, want ErrInvalidKey", key, err)
			}
		}
	})
}

// TestRegistry_GetOrCreate 测试获取或创建
func TestRegistry_GetOrCreate(t *testing.T) {
	r := registry.NewRegistry()
	config := &snowflake.Config{WorkerID: 3, DatacenterID: 4}

	first, err := r.GetOrCreate("users", core.GeneratorTypeSnowflake, config)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := r.GetOrCreate("users", core.GeneratorTypeSnowflake, config)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first != second {
		t.Error("GetOrCreate() 应返回同一实例")
	}

	got, err := r.Get("users")
	if err != nil || got != first {
		t.Errorf("Get() = %v, %v", got, err)
	}

	if _, err := r.Get("missing"); !errors.Is(err, core.ErrGeneratorNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrGeneratorNotFound", err)
	}
}

// TestRegistry_RemoveAndList 测试移除与列举
func TestRegistry_RemoveAndList(t *testing.T) {
	r := registry.NewRegistry()
	for i, key := range []string{"c", "a", "b"} {
		if _, err := r.Create(key, core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: int64(i)}); err != nil {
			t.Fatalf("Create(%s) error = %v", key, err)
		}
	}

	if got := strings.Join(r.ListKeys(), ","); got != "a,b,c" {
		t.Errorf("ListKeys() = %s, want a,b,c", got)
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}

	if err := r.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := r.Remove("a"); !errors.Is(err, core.ErrGeneratorNotFound) {
		t.Errorf("Remove() twice error = %v, want ErrGeneratorNotFound", err)
	}

	// 移除后身份可复用（"a" 使用 WorkerID 1）
	if _, err := r.Create("d", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 1}); err != nil {
		t.Errorf("Create() after Remove error = %v", err)
	}

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Count() after Clear = %d", r.Count())
	}
}

// TestRegistry_MaxGenerators 测试容量限制
func TestRegistry_MaxGenerators(t *testing.T) {
	r := registry.NewRegistry()

	tests := []struct {
		name    string
		max     int
		wantErr bool
	}{
		{"零", 0, true},
		{"负数", -1, true},
		{"超过绝对上限", 1025, true},
		{"正常", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetMaxGenerators(tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetMaxGenerators(%d) error = %v, wantErr %v", tt.max, err, tt.wantErr)
			}
		})
	}
	if r.GetMaxGenerators() != 2 {
		t.Fatalf("GetMaxGenerators() = %d, want 2", r.GetMaxGenerators())
	}

	for i := 0; i < 2; i++ {
		if _, err := r.Create(fmt.Sprintf("g%d", i), core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: int64(i)}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	_, err := r.Create("g2", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 2})
	if !errors.Is(err, core.ErrMaxGeneratorsReached) {
		t.Errorf("Create() over limit error = %v, want ErrMaxGeneratorsReached", err)
	}
	if err := r.SetMaxGenerators(1); err == nil {
		t.Error("SetMaxGenerators() below current count should fail")
	}
}

// TestRegistry_Reconfigure 身份修改只能经由注册表，并同样检查唯一性
func TestRegistry_Reconfigure(t *testing.T) {
	r := registry.NewRegistry()
	orders, err := r.Create("orders", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 1, DatacenterID: 1})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := r.Create("users", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 2, DatacenterID: 1}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 返回的视图不暴露身份修改方法
	if _, ok := orders.(core.ConfigurableGenerator); ok {
		t.Error("registry should not hand out a ConfigurableGenerator")
	}
	got, _ := r.Get("orders")
	if _, ok := got.(core.ConfigurableGenerator); ok {
		t.Error("Get() should not hand out a ConfigurableGenerator")
	}

	tests := []struct {
		name       string
		key        string
		workerID   int64
		datacenter int64
		wantErr    error
		wantWorker int64
	}{
		{"与其他键冲突", "orders", 2, 1, core.ErrIdentityInUse, 1},
		{"越界", "orders", 32, 1, core.ErrInvalidWorkerID, 1},
		{"不存在", "missing", 3, 3, core.ErrGeneratorNotFound, 1},
		{"保持自身身份", "orders", 1, 1, nil, 1},
		{"正常修改", "orders", 3, 1, nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Reconfigure(tt.key, tt.workerID, tt.datacenter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Reconfigure() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Reconfigure() error = %v", err)
			}
			if orders.GetWorkerID() != tt.wantWorker || orders.GetDatacenterID() != 1 {
				t.Errorf("identity = (%d, %d), want (%d, 1)",
					orders.GetWorkerID(), orders.GetDatacenterID(), tt.wantWorker)
			}
		})
	}

	// 原身份释放后可被新生成器使用
	if _, err := r.Create("payments", core.GeneratorTypeSnowflake, &snowflake.Config{WorkerID: 1, DatacenterID: 1}); err != nil {
		t.Errorf("Create() with released identity error = %v", err)
	}
}

// TestGetRegistry 测试全局单例
func TestGetRegistry(t *testing.T) {
	if registry.GetRegistry() != registry.GetRegistry() {
		t.Error("GetRegistry应该返回相同的单例实例")
	}
}

// TestRegistry_Concurrent 并发创建同一身份只有一个成功
func TestRegistry_Concurrent(t *testing.T) {
	r := registry.NewRegistry()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(fmt.Sprintf("gen-%d", i), core.GeneratorTypeSnowflake,
				&snowflake.Config{WorkerID: 5, DatacenterID: 5})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", succeeded)
	}
}

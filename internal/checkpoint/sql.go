package checkpoint

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// record 高水位表记录
type record struct {
	Name          string `gorm:"primaryKey;size:128"`
	LastTimestamp int64  `gorm:"not null"`
	UpdatedAt     time.Time
}

func (record) TableName() string {
	return "uid_checkpoints"
}

// SQLStore 基于gorm的高水位存储
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore 使用已有连接创建存储，并迁移表结构
func NewSQLStore(db *gorm.DB, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("checkpoint: migrate: %w", err)
	}
	return &SQLStore{db: db, logger: logger}, nil
}

// OpenSQL 按方言打开数据库
func OpenSQL(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", driver, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("checkpoint: ping %s: %w", driver, err)
	}
	return NewSQLStore(db, logger)
}

// Load 读取高水位
func (s *SQLStore) Load(ctx context.Context, name string) (int64, error) {
	var rec record
	res := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&rec)
	if res.Error != nil {
		return 0, fmt.Errorf("checkpoint: load %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return rec.LastTimestamp, nil
}

// Save 写入高水位
// 说明：先做条件更新，未命中时插入；已存在更大的值则什么都不做
func (s *SQLStore) Save(ctx context.Context, name string, ms int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&record{}).
			Where("name = ? AND last_timestamp < ?", name, ms).
			Updates(map[string]any{"last_timestamp": ms, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		rec := record{Name: name, LastTimestamp: ms, UpdatedAt: time.Now()}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", name, err)
	}
	return nil
}

// Close 关闭底层连接
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

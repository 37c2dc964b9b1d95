// Package cache хранит снимки отчетов для чтения в обход базы.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
)

// ReportCache - контракт кеша отчетов. Промах возвращает nil, nil.
type ReportCache interface {
	Get(ctx context.Context, id int64) (*models.EmergencyReport, error)
	Set(ctx context.Context, report *models.EmergencyReport) error
	Invalidate(ctx context.Context, id int64) error
}

func reportKey(id int64) string {
	return "report:" + strconv.FormatInt(id, 10)
}

// RedisReportCache кеширует отчеты в Redis в виде JSON
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache создает кеш поверх клиента Redis
func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

// Get пытается получить отчет из Redis
func (c *RedisReportCache) Get(ctx context.Context, id int64) (*models.EmergencyReport, error) {
	val, err := c.client.Get(ctx, reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	report := &models.EmergencyReport{}
	if err := json.Unmarshal(val, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report from cache: %w", err)
	}
	return report, nil
}

// Set сохраняет отчет в Redis
func (c *RedisReportCache) Set(ctx context.Context, report *models.EmergencyReport) error {
	val, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for cache: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(report.ID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// Invalidate удаляет отчет из Redis
func (c *RedisReportCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, reportKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}

// MemoryReportCache - кеш в памяти процесса, используется без Redis
type MemoryReportCache struct {
	store *gocache.Cache
}

// NewMemoryReportCache создает кеш с временем жизни ttl
func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	return &MemoryReportCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryReportCache) Get(_ context.Context, id int64) (*models.EmergencyReport, error) {
	v, ok := c.store.Get(reportKey(id))
	if !ok {
		return nil, nil
	}
	return v.(*models.EmergencyReport).Clone(), nil
}

func (c *MemoryReportCache) Set(_ context.Context, report *models.EmergencyReport) error {
	c.store.SetDefault(reportKey(report.ID), report.Clone())
	return nil
}

func (c *MemoryReportCache) Invalidate(_ context.Context, id int64) error {
	c.store.Delete(reportKey(id))
	return nil
}

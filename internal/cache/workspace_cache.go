// Package cache provides a Redis-backed read-through cache for workspace
// records. The approval gate consults the active workspace on every mutating
// request, so those lookups are cached with a short TTL and invalidated when
// a platform admin changes a workspace's approval status.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// DefaultTTL bounds staleness if an invalidation is lost.
const DefaultTTL = 5 * time.Minute

// WorkspaceCache caches workspace records in Redis. A nil *WorkspaceCache is
// valid and behaves as a permanent cache miss, so callers don't need to
// branch on whether Redis is configured.
type WorkspaceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWorkspaceCache creates a cache on the given Redis client. Pass a zero
// ttl to use DefaultTTL.
func NewWorkspaceCache(client *redis.Client, ttl time.Duration) *WorkspaceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &WorkspaceCache{client: client, ttl: ttl}
}

func workspaceKey(id string) string {
	return "vertex:workspace:" + id
}

// Get returns the cached workspace, or nil on a miss.
func (c *WorkspaceCache) Get(ctx context.Context, workspaceID string) (*models.Workspace, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, workspaceKey(workspaceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace from cache: %w", err)
	}

	var ws models.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		// A corrupt entry is treated as a miss rather than an error.
		return nil, nil
	}
	return &ws, nil
}

// Set stores a workspace with the configured TTL.
func (c *WorkspaceCache) Set(ctx context.Context, ws *models.Workspace) error {
	if c == nil || ws == nil {
		return nil
	}

	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace: %w", err)
	}

	if err := c.client.Set(ctx, workspaceKey(ws.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write workspace to cache: %w", err)
	}
	return nil
}

// Invalidate drops a workspace from the cache. Called on approval status
// transitions and workspace updates.
func (c *WorkspaceCache) Invalidate(ctx context.Context, workspaceID string) error {
	if c == nil {
		return nil
	}

	if err := c.client.Del(ctx, workspaceKey(workspaceID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate workspace cache: %w", err)
	}
	return nil
}

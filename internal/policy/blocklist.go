// Package policy implements the team blocklist collaborator.
package policy

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"search-orchestrator/internal/common/database"
	"search-orchestrator/internal/retrieval"
)

// RedisBlocklist answers blocklist checks from team-scoped Redis sets. A set
// member is either a full URL or a bare hostname; hostname entries block every
// URL on that host.
type RedisBlocklist struct {
	redis *database.RedisClient
}

func NewRedisBlocklist(redis *database.RedisClient) *RedisBlocklist {
	return &RedisBlocklist{redis: redis}
}

// Key returns the Redis set holding one team's blocked entries.
func Key(teamID string) string {
	if teamID == "" {
		teamID = "default"
	}
	return fmt.Sprintf("blocklist:%s", teamID)
}

// Block adds URL or hostname entries to a team's blocklist set.
func (b *RedisBlocklist) Block(ctx context.Context, teamID string, entries ...string) error {
	if len(entries) == 0 {
		return nil
	}
	if err := b.redis.SAdd(ctx, Key(teamID), entries...); err != nil {
		return fmt.Errorf("blocklist update failed: %w", err)
	}
	return nil
}

func (b *RedisBlocklist) IsBlocked(ctx context.Context, rawURL string, flags retrieval.TeamFlags) (bool, error) {
	key := Key(flags.TeamID)

	blocked, err := b.redis.SIsMember(ctx, key, rawURL)
	if err != nil {
		return false, fmt.Errorf("blocklist lookup failed: %w", err)
	}
	if blocked {
		return true, nil
	}

	host := hostOf(rawURL)
	if host == "" {
		return false, nil
	}
	blocked, err = b.redis.SIsMember(ctx, key, host)
	if err != nil {
		return false, fmt.Errorf("blocklist lookup failed: %w", err)
	}
	return blocked, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

// StaticBlocklist holds a fixed set of blocked URLs and hostnames. Used when
// no Redis is configured and in tests.
type StaticBlocklist struct {
	entries map[string]bool
}

func NewStaticBlocklist(entries []string) *StaticBlocklist {
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[strings.ToLower(e)] = true
	}
	return &StaticBlocklist{entries: set}
}

func (b *StaticBlocklist) IsBlocked(_ context.Context, rawURL string, _ retrieval.TeamFlags) (bool, error) {
	if b.entries[strings.ToLower(rawURL)] {
		return true, nil
	}
	host := hostOf(rawURL)
	return host != "" && b.entries[host], nil
}

package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:points"

// Member is one scored member of the cached leaderboard.
type Member struct {
	UserID uint
	Points int
}

// LeaderboardCache keeps the point leaderboard in a Redis sorted set so
// read-heavy leaderboard requests skip the SQL aggregation.
type LeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// Rebuild atomically replaces the cached leaderboard with the given members.
func (c *LeaderboardCache) Rebuild(ctx context.Context, members []Member) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	if len(members) > 0 {
		zs := make([]redis.Z, len(members))
		for i, m := range members {
			zs[i] = redis.Z{
				Score:  float64(m.Points),
				Member: strconv.FormatUint(uint64(m.UserID), 10),
			}
		}
		pipe.ZAdd(ctx, leaderboardKey, zs...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// SetScore upserts one member's score.
func (c *LeaderboardCache) SetScore(ctx context.Context, userID uint, points int) error {
	return c.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(points),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
}

// Top returns the highest-scored members, best first.
func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]Member, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(results))
	for _, z := range results {
		id, err := strconv.ParseUint(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		members = append(members, Member{UserID: uint(id), Points: int(z.Score)})
	}
	return members, nil
}

// Rank returns a member's 1-indexed rank, or 0 when absent.
func (c *LeaderboardCache) Rank(ctx context.Context, userID uint) (int, error) {
	rank, err := c.client.ZRevRank(ctx, leaderboardKey, strconv.FormatUint(uint64(userID), 10)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(rank) + 1, nil
}

// Size returns the number of cached members.
func (c *LeaderboardCache) Size(ctx context.Context) (int64, error) {
	return c.client.ZCard(ctx, leaderboardKey).Result()
}

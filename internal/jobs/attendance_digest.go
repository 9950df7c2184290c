package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LAKSHMI-M7/industry5.0/internal/config"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

// AttendanceDigest is the cached per-day attendance summary served on the
// admin stats endpoint between recomputes.
type AttendanceDigest struct {
	Date       string `json:"date"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Leave      int    `json:"leave"`
	Total      int    `json:"total"`
	ComputedAt int64  `json:"computedAt"`
}

func digestKey(day time.Time) string {
	return fmt.Sprintf("attendance_digest:%s", day.Format("2006-01-02"))
}

// LoadDigest reads the cached digest for the given day. Missing cache or a
// nil client is not an error; callers fall back to counting directly.
func LoadDigest(ctx context.Context, redisClient *redis.Client, day time.Time) (AttendanceDigest, bool, error) {
	if redisClient == nil {
		return AttendanceDigest{}, false, nil
	}
	value, err := redisClient.Get(ctx, digestKey(day)).Result()
	if err == redis.Nil {
		return AttendanceDigest{}, false, nil
	}
	if err != nil {
		return AttendanceDigest{}, false, err
	}
	var digest AttendanceDigest
	if err := json.Unmarshal([]byte(value), &digest); err != nil {
		return AttendanceDigest{}, false, err
	}
	return digest, true, nil
}

func StartAttendanceDigestJob(ctx context.Context, cfg config.Config, store *repository.Store, redisClient *redis.Client) {
	if !cfg.DigestJobEnabled {
		return
	}
	if redisClient == nil {
		log.Printf("attendance digest job disabled: redis not configured")
		return
	}
	interval := cfg.DigestJobInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	timeout := cfg.DigestJobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				err := refreshDigest(tickCtx, store, redisClient, interval)
				cancel()
				if err != nil {
					log.Printf("attendance digest job error: %v", err)
				}
			}
		}
	}()
}

func refreshDigest(ctx context.Context, store *repository.Store, redisClient *redis.Client, interval time.Duration) error {
	day := model.Day(time.Now())
	counts, err := store.CountAttendanceByStatus(ctx, day)
	if err != nil {
		return err
	}

	digest := AttendanceDigest{
		Date:       day.Format("2006-01-02"),
		Present:    counts[model.AttendancePresent],
		Absent:     counts[model.AttendanceAbsent],
		Leave:      counts[model.AttendanceLeave],
		ComputedAt: time.Now().UTC().Unix(),
	}
	digest.Total = digest.Present + digest.Absent + digest.Leave

	data, err := json.Marshal(digest)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, digestKey(day), data, 2*interval).Err()
}

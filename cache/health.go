package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// healthSentinelKey is the key the probe writes and reads back.
	healthSentinelKey = "health:check"
	// healthSentinelTTL keeps probe entries from outliving the check.
	healthSentinelTTL = 10 * time.Second
)

// HealthStatus is the outcome of one sentinel round trip.
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Message   string            `json:"message"`
	Latency   time.Duration     `json:"latency"`
	CheckedAt time.Time         `json:"checked_at"`
	Details   map[string]string `json:"details,omitempty"`
}

// CheckHealth verifies the cache can serve reads after writes: it stores a
// short-lived sentinel carrying a fresh nonce, reads it back, and reports
// healthy only when the exact payload returns. The probe never raises; the
// failure reason lands in Message.
func (rc *RedisCache) CheckHealth(ctx context.Context) (status HealthStatus) {
	status.CheckedAt = time.Now()
	start := time.Now()
	defer func() {
		status.Latency = time.Since(start)
		if !status.Healthy {
			rc.logger.WithField("message", status.Message).Warn("cache health check failed")
		}
	}()

	if err := rc.validator.ValidateContext(ctx); err != nil {
		status.Message = fmt.Sprintf("health check aborted: %v", err)
		return status
	}

	// The nonce makes each probe verify its own write rather than a
	// leftover sentinel from an earlier check.
	payload, err := json.Marshal(map[string]string{
		"status": "ok",
		"nonce":  uuid.NewString(),
	})
	if err != nil {
		status.Message = fmt.Sprintf("failed to build sentinel payload: %v", err)
		return status
	}

	if err := rc.client.SetWithRetry(ctx, healthSentinelKey, payload, healthSentinelTTL); err != nil {
		status.Message = fmt.Sprintf("redis error: %v", err)
		return status
	}

	got, err := rc.client.GetWithRetry(ctx, healthSentinelKey)
	if err != nil {
		status.Message = "cache set succeeded but get failed"
		return status
	}

	if got != string(payload) {
		status.Message = "sentinel value mismatch"
		return status
	}

	status.Healthy = true
	status.Message = "cache is healthy"
	status.Details = map[string]string{
		"addr": rc.config.RedisAddr,
		"db":   strconv.Itoa(rc.config.RedisDB),
	}

	rc.logger.WithFields(logrus.Fields{
		"latency": time.Since(start).String(),
	}).Debug("cache health check passed")
	return status
}

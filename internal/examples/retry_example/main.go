package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kengibson1111/go-readthrough-cache/internal"
)

func main() {
	fmt.Println("=== Redis Retry Mechanism Example ===")
	fmt.Println("This example demonstrates retry logic with exponential backoff")
	fmt.Println()

	// Create configurations with different retry strategies
	configs := createRetryConfigurations()

	for i, config := range configs {
		fmt.Printf("=== Configuration %d: %s ===\n", i+1, config.name)
		fmt.Printf("Max Attempts: %d\n", config.config.RetryConfig.MaxAttempts)
		fmt.Printf("Initial Delay: %v\n", config.config.RetryConfig.InitialDelay)
		fmt.Printf("Max Delay: %v\n", config.config.RetryConfig.MaxDelay)
		fmt.Printf("Multiplier: %.1f\n", config.config.RetryConfig.Multiplier)
		fmt.Printf("Jitter: %t\n", config.config.RetryConfig.Jitter)
		fmt.Println()

		demonstrateRetryBehavior(config.config, config.name)
		fmt.Println()
	}

	// Show what retries look like against a dead server
	fmt.Println("=== Unreachable Server Example ===")
	demonstrateRetryExhaustion()

	fmt.Println()
	fmt.Println("=== Retry Mechanism Example Complete ===")
}

type retryConfig struct {
	name   string
	config *internal.Config
}

func createRetryConfigurations() []retryConfig {
	// Configuration 1: Conservative retry
	conservativeConfig := internal.DefaultConfig()
	conservativeConfig.RedisAddr = "localhost:6379"
	conservativeConfig.RetryConfig = &internal.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
		RetryableOps: []string{"ping", "get", "set", "del"},
	}

	// Configuration 2: Aggressive retry
	aggressiveConfig := internal.DefaultConfig()
	aggressiveConfig.RedisAddr = "localhost:6379"
	aggressiveConfig.RetryConfig = &internal.RetryConfig{
		MaxAttempts:  7,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   1.5,
		Jitter:       true,
		RetryableOps: []string{"ping", "get", "set", "del", "scan"},
	}

	// Configuration 3: Fast retry with jitter
	fastConfig := internal.DefaultConfig()
	fastConfig.RedisAddr = "localhost:6379"
	fastConfig.RetryConfig = &internal.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 25 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.5,
		Jitter:       true,
		RetryableOps: []string{"ping", "get", "set"},
	}

	return []retryConfig{
		{"Conservative Retry", conservativeConfig},
		{"Aggressive Retry", aggressiveConfig},
		{"Fast Retry with Jitter", fastConfig},
	}
}

func demonstrateRetryBehavior(config *internal.Config, configName string) {
	client, err := internal.NewRedisClient(config)
	if err != nil {
		log.Printf("Failed to create client for %s: %v", configName, err)
		return
	}
	defer client.Close()

	ctx := context.Background()

	// Healthy server: operations succeed on the first attempt
	fmt.Println("1. Testing successful operation...")
	start := time.Now()
	err = client.HealthWithRetry(ctx)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("✗ Health check failed: %v (took %v)\n", err, duration)
		return
	}
	fmt.Printf("✓ Health check succeeded on first attempt (took %v)\n", duration)

	// Round trip with retry wrapping
	fmt.Println("2. Testing SET/GET operations with retry...")
	testKey := fmt.Sprintf("retry-test:%d", time.Now().UnixNano())
	testValue := "retry-test-value"

	start = time.Now()
	err = client.SetWithRetry(ctx, testKey, testValue, 1*time.Minute)
	setDuration := time.Since(start)
	if err != nil {
		fmt.Printf("✗ SET failed: %v (took %v)\n", err, setDuration)
		return
	}
	fmt.Printf("✓ SET succeeded (took %v)\n", setDuration)

	start = time.Now()
	value, err := client.GetWithRetry(ctx, testKey)
	getDuration := time.Since(start)
	if err != nil {
		fmt.Printf("✗ GET failed: %v (took %v)\n", err, getDuration)
		return
	}
	fmt.Printf("✓ GET succeeded: '%s' (took %v)\n", value, getDuration)

	if _, err := client.DelWithRetry(ctx, testKey); err != nil {
		log.Printf("Warning: cleanup failed: %v", err)
	}
}

// demonstrateRetryExhaustion runs retries against a port nothing listens on,
// so every attempt fails and the backoff schedule becomes visible in the
// total duration.
func demonstrateRetryExhaustion() {
	config := internal.DefaultConfig()
	config.RedisAddr = "localhost:1"
	config.DialTimeout = 200 * time.Millisecond
	config.ReadTimeout = 200 * time.Millisecond
	config.WriteTimeout = 200 * time.Millisecond
	config.RetryConfig = &internal.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
		RetryableOps: []string{"ping", "get", "set"},
	}

	client, err := internal.NewRedisClient(config)
	if err != nil {
		log.Printf("Failed to create client: %v", err)
		return
	}
	defer client.Close()

	ctx := context.Background()

	fmt.Println("Attempting GET against an unreachable server...")
	fmt.Println("Expected: 3 attempts with 100ms and 200ms waits between them")

	start := time.Now()
	_, err = client.GetWithRetry(ctx, "unreachable:key")
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("✓ Failed as expected after %v: %v\n", duration, err)
	} else {
		fmt.Println("✗ Unexpected success against an unreachable server")
	}

	// Context cancellation cuts the retry loop short
	fmt.Println("Attempting GET with a 150ms deadline...")
	deadlineCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()

	start = time.Now()
	_, err = client.GetWithRetry(deadlineCtx, "unreachable:key")
	duration = time.Since(start)

	if err != nil {
		fmt.Printf("✓ Aborted after %v: %v\n", duration, err)
	}
}

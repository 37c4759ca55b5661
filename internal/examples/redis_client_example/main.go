package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kengibson1111/go-readthrough-cache/internal"
)

func main() {
	fmt.Println("=== Redis Client Low-Level Example ===")
	fmt.Println("This example demonstrates low-level Redis client operations")
	fmt.Println()

	// Create Redis client configuration
	config := internal.DefaultConfig()
	config.RedisAddr = "localhost:6379"
	config.DefaultTTL = 30 * time.Minute

	// Configure retry behavior
	retryConfig := internal.DefaultRetryConfig()
	retryConfig.MaxAttempts = 5
	retryConfig.InitialDelay = 50 * time.Millisecond
	retryConfig.MaxDelay = 2 * time.Second
	retryConfig.Multiplier = 2.0
	retryConfig.Jitter = true
	config.RetryConfig = retryConfig

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Redis Address: %s\n", config.RedisAddr)
	fmt.Printf("  Database: %d\n", config.RedisDB)
	fmt.Printf("  Pool Size: %d\n", config.PoolSize)
	fmt.Printf("  Default TTL: %v\n", config.DefaultTTL)
	fmt.Printf("  Max Retries: %d\n", retryConfig.MaxAttempts)
	fmt.Println()

	// Create Redis client
	client, err := internal.NewRedisClient(config)
	if err != nil {
		log.Fatalf("Failed to create Redis client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("Error closing client: %v", err)
		}
	}()

	ctx := context.Background()

	// Test basic connectivity
	fmt.Println("1. Testing basic connectivity...")
	if err := client.HealthWithRetry(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Println("✓ Redis client connected successfully")
	fmt.Println()

	// Demonstrate basic operations with retry
	fmt.Println("2. Demonstrating basic operations with retry logic...")

	// SET operation
	key := "example:test-key"
	value := "Hello, Redis Cache!"
	ttl := 5 * time.Minute

	fmt.Printf("Setting key '%s' with TTL %v...\n", key, ttl)
	err = client.SetWithRetry(ctx, key, value, ttl)
	if err != nil {
		log.Fatalf("Failed to set key: %v", err)
	}
	fmt.Println("✓ Key set successfully")

	// GET operation
	fmt.Printf("Getting key '%s'...\n", key)
	retrievedValue, err := client.GetWithRetry(ctx, key)
	if err != nil {
		log.Fatalf("Failed to get key: %v", err)
	}
	fmt.Printf("✓ Retrieved value: '%s'\n", retrievedValue)

	// Verify value matches
	if retrievedValue == value {
		fmt.Println("✓ Value matches original")
	} else {
		fmt.Printf("✗ Value mismatch! Expected: '%s', Got: '%s'\n", value, retrievedValue)
	}
	fmt.Println()

	// Demonstrate pattern scanning
	fmt.Println("3. Demonstrating pattern scanning...")

	// Set multiple keys under one prefix
	testKeys := []string{"example:batch:key1", "example:batch:key2", "example:batch:key3"}
	testValues := []string{"value1", "value2", "value3"}

	fmt.Printf("Setting %d keys...\n", len(testKeys))
	for i, testKey := range testKeys {
		err := client.SetWithRetry(ctx, testKey, testValues[i], 2*time.Minute)
		if err != nil {
			log.Printf("Warning: Failed to set key %s: %v", testKey, err)
		}
	}
	fmt.Println("✓ Batch set completed")

	fmt.Println("Scanning for keys matching 'example:batch:*'...")
	keys, err := client.KeysWithRetry(ctx, "example:batch:*")
	if err != nil {
		log.Printf("Warning: scan failed: %v", err)
	} else {
		fmt.Printf("✓ Found %d keys\n", len(keys))
		for _, foundKey := range keys {
			fmt.Printf("  - %s\n", foundKey)
		}
	}
	fmt.Println()

	// Demonstrate connection information
	fmt.Println("4. Demonstrating connection information...")

	connInfo, err := client.GetConnectionInfo(ctx)
	if err != nil {
		log.Printf("Warning: Failed to get connection info: %v", err)
	} else {
		fmt.Println("✓ Connection information:")
		fmt.Printf("  Address: %v\n", connInfo["addr"])
		fmt.Printf("  Database: %v\n", connInfo["db"])
		fmt.Printf("  Pool Size: %v\n", connInfo["pool_size"])
		fmt.Printf("  Pool Hits: %v\n", connInfo["pool_hits"])
		fmt.Printf("  Pool Misses: %v\n", connInfo["pool_misses"])
		fmt.Printf("  Total Connections: %v\n", connInfo["pool_total_conns"])
		fmt.Printf("  Idle Connections: %v\n", connInfo["pool_idle_conns"])
	}
	fmt.Println()

	// Cleanup operations
	fmt.Println("5. Cleaning up test data...")

	allKeys := append([]string{key}, testKeys...)
	fmt.Printf("Deleting %d keys...\n", len(allKeys))
	deletedCount, err := client.DelWithRetry(ctx, allKeys...)
	if err != nil {
		log.Printf("Warning: Failed to delete keys: %v", err)
	} else {
		fmt.Printf("✓ Deleted %d keys\n", deletedCount)
	}

	fmt.Println()
	fmt.Println("=== Redis Client Low-Level Example Complete ===")
}

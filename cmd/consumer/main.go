package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do"
	"github.com/serroba/shorter/internal/container"
	"github.com/serroba/shorter/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Store:          getEnv("STORE", container.StoreRedis),
		Branch:         getEnv("BRANCH", "main"),
		LinksPath:      getEnv("LINKS_PATH", "shortlinks.json"),
		AuthorDomain:   getEnv("AUTHOR_DOMAIN", "users.noreply.shorter.local"),
		GitHubOwner:    getEnv("GITHUB_OWNER", ""),
		GitHubRepo:     getEnv("GITHUB_REPO", ""),
		GitHubToken:    getEnv("GITHUB_TOKEN", ""),
		GitHubBaseURL:  getEnv("GITHUB_BASE_URL", "https://api.github.com"),
		RetryAttempts:  getEnvInt("RETRY_ATTEMPTS", 3),
		PollInterval:   getEnv("POLL_INTERVAL", "1s"),
		ObjectCacheTTL: getEnv("OBJECT_CACHE_TTL", "0s"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.DocumentStorePackage(injector)
	container.PublisherGroupPackage(injector)
	container.SubscriberPackage(injector)
	container.MutatorPackage(injector)
	container.ExpirationPackage(injector)
	container.AuditPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return v
}

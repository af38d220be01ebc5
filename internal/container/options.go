package container

import (
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Store backends for the shortlink document.
const (
	StoreGitHub   = "github"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Options configures both the server and the consumer. The server reads them from flags
// and SERVICE_* environment variables; the consumer from plain environment variables.
type Options struct {
	Port      int    `default:"8888"           help:"Port to listen on"                  short:"p"`
	RedisAddr string `default:"localhost:6379" help:"Redis server address"               short:"r"`
	LogFormat string `default:"console"        help:"Log output format, console or json"`

	DatabaseURL string `help:"PostgreSQL connection string, enables the postgres store and commit audit"`

	Store        string `default:"memory"                      help:"Where the shortlink document lives: github, redis, postgres or memory"`
	Branch       string `default:"main"                        help:"Branch holding the shortlink document"`
	LinksPath    string `default:"shortlinks.json"             help:"Path of the shortlink document"`
	CommitURL    string `help:"Commit link template, %s is replaced by the commit ref"`
	AuthorDomain string `default:"users.noreply.shorter.local" help:"Email domain for commit authors"`

	GitHubOwner   string `help:"Owner of the GitHub repository holding the document" name:"github-owner"`
	GitHubRepo    string `help:"Name of the GitHub repository holding the document"  name:"github-repo"`
	GitHubToken   string `help:"GitHub token with contents write access"             name:"github-token"`
	GitHubBaseURL string `default:"https://api.github.com" help:"GitHub API base URL" name:"github-base-url"`

	RetryAttempts  int    `default:"1"  help:"Attempts per mutation when the branch moves underneath it"`
	PollInterval   string `default:"1s" help:"How often due expirations are published"`
	ObjectCacheTTL string `default:"0s" help:"Cache immutable objects in Redis for this long, 0s disables"`
}

// Durations parses the duration options. Days and weeks are accepted ("1d", "2w").
func (o *Options) Durations() (pollInterval, objectCacheTTL time.Duration, err error) {
	if pollInterval, err = parseDuration("poll interval", o.PollInterval); err != nil {
		return 0, 0, err
	}

	if objectCacheTTL, err = parseDuration("object cache ttl", o.ObjectCacheTTL); err != nil {
		return 0, 0, err
	}

	return pollInterval, objectCacheTTL, nil
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := str2duration.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, value, err)
	}

	return d, nil
}

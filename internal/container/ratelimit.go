package container

import (
	"github.com/samber/do"
	"github.com/serroba/shorter/internal/ratelimit"
	"github.com/serroba/shorter/internal/store"
)

// RateLimitPackage provides the policy limiter, counting in Redis so that every server
// instance shares the budget.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		redisClient := do.MustInvoke[*RedisConn](i)

		return ratelimit.NewPolicyLimiter(store.NewRateLimitRedisStore(redisClient.Client), ratelimit.DefaultPolicy()), nil
	})
}

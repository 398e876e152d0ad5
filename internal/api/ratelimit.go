package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/claimlens/pkg/redis"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, error)
}

// NewLimiter returns a redis-backed limiter when redis is enabled,
// an in-process limiter otherwise, and nil when rps is 0.
func NewLimiter(client *redis.Client, rps int) Limiter {
	if rps <= 0 {
		return nil
	}
	if client != nil && client.Enabled() {
		return &redisLimiter{limiter: redis.NewRateLimiter(client, "claimlens"), rps: rps}
	}
	return newLocalLimiter(rps)
}

// redisLimiter shares the sliding window across API replicas
type redisLimiter struct {
	limiter *redis.RateLimiter
	rps     int
}

func (l *redisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	allowed, _, err := l.limiter.Allow(ctx, redis.APIRateLimit(client, l.rps))
	return allowed, err
}

// bucketIdleTTL is how long an unused client bucket is kept
const bucketIdleTTL = 10 * time.Minute

// localLimiter keeps one token bucket per client in memory.
// Buckets idle for bucketIdleTTL are evicted during Allow.
type localLimiter struct {
	rps int
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(rps int) *localLimiter {
	return &localLimiter{
		rps:     rps,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (l *localLimiter) Allow(_ context.Context, client string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= bucketIdleTTL {
		l.sweep(now)
	}
	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps)}
		l.buckets[client] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1), nil
}

// sweep drops idle buckets; l.mu must be held
func (l *localLimiter) sweep(now time.Time) {
	for client, b := range l.buckets {
		if now.Sub(b.lastSeen) >= bucketIdleTTL {
			delete(l.buckets, client)
		}
	}
	l.lastSweep = now
}

// TrustedProxies lists the peers whose X-Forwarded-For header is honored
type TrustedProxies []*net.IPNet

// ParseTrustedProxies parses IPs and CIDRs (TRUSTED_PROXIES)
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", e)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		proxies = append(proxies, n)
	}
	return proxies, nil
}

func (t TrustedProxies) trusts(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientKey identifies the caller for rate limiting.
// X-Forwarded-For is read only when the direct peer is a trusted proxy; the
// key is then the right-most address not belonging to a trusted proxy.
func (t TrustedProxies) ClientKey(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if len(t) == 0 || !t.trusts(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !t.trusts(hop) {
			return hop
		}
	}
	return peer
}

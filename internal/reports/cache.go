package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/veridian-genomics/revenue-tracker/internal/transactions"
	"github.com/veridian-genomics/revenue-tracker/pkg/logger"
	"github.com/veridian-genomics/revenue-tracker/pkg/redis"
)

const ledgerVersionCounter = "ledger_version"

// Cache stores computed reports in Redis. Cache keys carry the ledger version
// counter, so bumping the counter after any ledger or tier write orphans
// every stale entry without explicit deletes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCache returns a report cache. A nil client disables caching; every
// method is safe on a nil *Cache.
func NewCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logg: logg}
}

// Bump advances the ledger version, invalidating all cached reports.
func (c *Cache) Bump(ctx context.Context) {
	if c == nil {
		return
	}
	if _, err := c.client.Incr(ctx, c.client.CounterKey(ledgerVersionCounter)); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "report cache version bump failed: "+err.Error())
	}
}

// Lookup returns a cached report for the filter when one exists for the
// current ledger version. Cache failures degrade to a miss.
func (c *Cache) Lookup(ctx context.Context, filter transactions.Filter) (*Report, bool) {
	if c == nil {
		return nil, false
	}
	key, ok := c.key(ctx, filter)
	if !ok {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) && c.logg != nil {
			c.logg.Warn(ctx, "report cache lookup failed: "+err.Error())
		}
		return nil, false
	}
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false
	}
	return &report, true
}

// Store writes a computed report under the current ledger version.
func (c *Cache) Store(ctx context.Context, filter transactions.Filter, report *Report) {
	if c == nil || report == nil {
		return
	}
	key, ok := c.key(ctx, filter)
	if !ok {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "report cache store failed: "+err.Error())
	}
}

func (c *Cache) key(ctx context.Context, filter transactions.Filter) (string, bool) {
	version, err := c.client.Get(ctx, c.client.CounterKey(ledgerVersionCounter))
	if err != nil {
		if !redis.IsMiss(err) {
			return "", false
		}
		version = "0"
	}
	digest, err := filterDigest(filter)
	if err != nil {
		return "", false
	}
	return c.client.ReportKey("royalties", "v"+version, digest), true
}

func filterDigest(filter transactions.Filter) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"from":        formatDate(filter.FromDate),
		"to":          formatDate(filter.ToDate),
		"in_progress": strconv.FormatBool(filter.InProgressOnly),
		"outstanding": strconv.FormatBool(filter.Outstanding),
		"include_ip":  strconv.FormatBool(filter.IncludeInProgress),
		"customer":    uuidString(filter.CustomerID),
		"vendor":      uuidString(filter.VendorID),
		"type":        typeString(filter),
		"institution": institutionString(filter),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8]), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func typeString(f transactions.Filter) string {
	if f.TransactionType == nil {
		return ""
	}
	return f.TransactionType.String()
}

func institutionString(f transactions.Filter) string {
	if f.InstitutionType == nil {
		return ""
	}
	return f.InstitutionType.String()
}

package sources

import (
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/stats"
)

// ClientOptions configure a network-backed source adapter.
type ClientOptions struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	BackoffFactor  float64
	RateLimitDelay time.Duration
}

// DefaultClientOptions returns the standard network adapter settings.
func DefaultClientOptions(baseURL string) ClientOptions {
	return ClientOptions{
		BaseURL:        baseURL,
		Timeout:        10 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		BackoffFactor:  2.0,
		RateLimitDelay: 500 * time.Millisecond,
	}
}

func (o *ClientOptions) applyDefaults() {
	defaults := DefaultClientOptions(o.BaseURL)
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaults.MaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaults.RetryDelay
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = defaults.BackoffFactor
	}
	if o.RateLimitDelay <= 0 {
		o.RateLimitDelay = defaults.RateLimitDelay
	}
}

// newRestyClient builds the shared HTTP client for network adapters:
// bounded retries on transport errors, 429 and 5xx, with exponential
// backoff plus jitter. Other client errors are not retried.
func newRestyClient(opts ClientOptions, logger *logrus.Logger) *resty.Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", "gridstats-agent/1.0")
	client.SetHeader("Accept", "application/json")

	client.SetRetryCount(opts.MaxRetries - 1) // resty counts retries, not attempts
	client.SetRetryWaitTime(opts.RetryDelay)
	client.SetRetryMaxWaitTime(time.Duration(float64(opts.RetryDelay) * math.Pow(opts.BackoffFactor, float64(opts.MaxRetries))))
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
	})
	client.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		retryCount := resp.Request.Attempt - 1
		delay := time.Duration(float64(opts.RetryDelay) * math.Pow(opts.BackoffFactor, float64(retryCount)))
		jitter := time.Duration(rand.Float64() * float64(delay) * 0.1)
		logger.WithFields(logrus.Fields{
			"attempt": resp.Request.Attempt,
			"delay":   (delay + jitter).String(),
		}).Warn("request failed, retrying")
		return delay + jitter, nil
	})

	return client
}

// tableFromJSONRows converts decoded JSON objects into a stats table.
// Identity keys route into typed fields; numeric values become stat
// columns; everything else is dropped.
func tableFromJSONRows(rows []map[string]interface{}) *stats.Table {
	table := stats.NewTable()
	for _, raw := range rows {
		row := stats.Row{Stats: make(map[string]float64)}
		for key, value := range raw {
			canonical := stats.CanonicalColumn(key)
			switch canonical {
			case "player_name":
				if s, ok := value.(string); ok {
					row.PlayerName = s
				}
			case "team":
				if s, ok := value.(string); ok {
					row.Team = s
				}
			case "position":
				if s, ok := value.(string); ok {
					row.Position = s
				}
			case "opponent":
				if s, ok := value.(string); ok {
					row.Opponent = s
				}
			case "home_away":
				if s, ok := value.(string); ok {
					row.HomeAway = s
				}
			case "season":
				if n, ok := value.(float64); ok {
					row.Season = int(n)
				}
			case "week":
				if n, ok := value.(float64); ok {
					row.Week = int(n)
				}
			default:
				if n, ok := value.(float64); ok {
					row.Stats[canonical] = n
				}
			}
		}
		table.Append(row)
	}
	return table
}

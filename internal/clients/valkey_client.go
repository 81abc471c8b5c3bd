package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/storyguard/config"
)

const (
	VALKEY_AUDIT_REQUESTS_KEY = "audit:processed_requests"

	processedTTLSeconds = 86400
	valkeyMaxRetries    = 2
	valkeyRetryDelay    = 250 * time.Millisecond
)

type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.Mutex
}

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	client, err := connectValkey(cfg)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func connectValkey(cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return client, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Client.Close()
}

// MarkProcessed records an audit request id. The set expires a day after
// the last write.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	err := vc.withRetry(ctx, "mark processed", func(ctx context.Context, client valkey.Client) error {
		cmds := []valkey.Completed{
			client.B().Sadd().Key(VALKEY_AUDIT_REQUESTS_KEY).Member(requestID).Build(),
			client.B().Expire().Key(VALKEY_AUDIT_REQUESTS_KEY).Seconds(processedTTLSeconds).Build(),
		}
		for _, res := range client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[ValkeyClient] Failed to mark request %s processed: %w", requestID, err)
	}

	slog.Debug("[ValkeyClient] Marked audit request processed",
		slog.String("request_id", requestID))
	return nil
}

// IsProcessed reports false when Valkey cannot answer, so a request is
// audited twice rather than never.
func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) bool {
	var seen bool
	err := vc.withRetry(ctx, "is processed", func(ctx context.Context, client valkey.Client) error {
		ok, err := client.Do(ctx, client.B().Sismember().Key(VALKEY_AUDIT_REQUESTS_KEY).Member(requestID).Build()).AsBool()
		if err != nil {
			return err
		}
		seen = ok
		return nil
	})
	if err != nil {
		return false
	}
	return seen
}

// withRetry runs op against the current client, reconnecting when the
// failure looks like a dropped connection.
func (vc *ValkeyClient) withRetry(ctx context.Context, op string, fn func(context.Context, valkey.Client) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(valkeyMaxRetries, retry.NewConstant(valkeyRetryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		vc.mu.Lock()
		client := vc.Client
		vc.mu.Unlock()

		err := fn(ctx, client)
		if err == nil {
			return nil
		}

		slog.Warn("[ValkeyClient] Command failed",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return retry.RetryableError(err)
	})
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}

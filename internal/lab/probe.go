package lab

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const (
	// ReadyTimeout bounds how long `lab up` waits for each service probe.
	ReadyTimeout = 60 * time.Second

	probeInterval = 500 * time.Millisecond
	probeAttempt  = 2 * time.Second
)

// WaitReady polls a service's readiness probe every 500ms until it succeeds
// or the timeout elapses. The probe runs against the published host port.
func WaitReady(ctx context.Context, ready *ReadyConfig, hostPort int, timeout time.Duration) error {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timeoutCh:
			if lastErr != nil {
				return fmt.Errorf("not ready after %v: %w", timeout, lastErr)
			}
			return fmt.Errorf("not ready after %v", timeout)

		case <-ticker.C:
			if err := probeOnce(ctx, ready, hostPort); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
	}
}

// probeOnce runs a single probe attempt with its own short deadline, so a
// hanging service cannot stall the poll loop.
func probeOnce(parent context.Context, ready *ReadyConfig, hostPort int) error {
	ctx, cancel := context.WithTimeout(parent, probeAttempt)
	defer cancel()

	addr := fmt.Sprintf("127.0.0.1:%d", hostPort)

	switch ready.Type {
	case ReadyRedis:
		return probeRedis(ctx, addr)
	case ReadyPostgres:
		return probePostgres(ctx, ready, hostPort)
	case ReadyHTTP:
		return probeHTTP(ctx, ready, addr)
	case ReadyTCP:
		return probeTCP(addr)
	default:
		return fmt.Errorf("unknown readiness probe type %q", ready.Type)
	}
}

func probeRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func probePostgres(ctx context.Context, ready *ReadyConfig, hostPort int) error {
	user := ready.User
	if user == "" {
		user = "postgres"
	}
	database := ready.Database
	if database == "" {
		database = user
	}

	dsn := fmt.Sprintf("postgres://%s:%s@127.0.0.1:%d/%s",
		url.QueryEscape(user), url.QueryEscape(ready.Password), hostPort, url.PathEscape(database))

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("postgres connect failed: %w", err)
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func probeHTTP(ctx context.Context, ready *ReadyConfig, addr string) error {
	path := ready.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("http probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("http probe returned %s", resp.Status)
	}
	return nil
}

func probeTCP(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, probeAttempt)
	if err != nil {
		return fmt.Errorf("tcp dial failed: %w", err)
	}
	conn.Close()
	return nil
}

package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/esports-match-sync/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	maxTracedQueryLength = 512
	dbPingTimeout        = 5 * time.Second
)

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn, params, err := postgresDSN(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary)
	if err != nil {
		return nil, err
	}

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(params["dbname"]),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	// Sync runs are few and short; a small pool keeps headroom on shared databases.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", params["host"], err)
	}
	return db, nil
}

// postgresDSN turns DB_URL (URL or key=value form) into a lib/pq key=value DSN and fills
// in connection defaults the operator did not set. Values containing spaces are not supported.
func postgresDSN(raw, serviceName string, disablePreparedBinary bool) (string, map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, fmt.Errorf("DB_URL is required")
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		converted, err := pq.ParseURL(raw)
		if err != nil {
			return "", nil, fmt.Errorf("parse DB_URL: %w", err)
		}
		raw = converted
	}

	params := make(map[string]string)
	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return "", nil, fmt.Errorf("parse DB_URL: malformed parameter %q", field)
		}
		params[key] = strings.Trim(value, `'"`)
	}

	setDefault := func(key, value string) {
		if _, ok := params[key]; !ok && value != "" {
			params[key] = value
		}
	}
	setDefault("application_name", serviceName)
	setDefault("connect_timeout", "5")
	if disablePreparedBinary {
		setDefault("disable_prepared_binary_result", "yes")
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quoteDSNValue(params[key]))
	}
	return strings.Join(parts, " "), params, nil
}

func quoteDSNValue(v string) string {
	if v == "" || strings.ContainsAny(v, `'\`) {
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
	}
	return v
}

// traceQuery collapses whitespace and caps the statement recorded on db spans.
func traceQuery(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) <= maxTracedQueryLength {
		return q
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(q[cut]) {
		cut--
	}
	return q[:cut] + "..."
}

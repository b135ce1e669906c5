package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mikey/llm-review-triage/internal/core"
	"go.uber.org/zap"
)

const tableName = "category_cache"

// sqlStore holds the queries shared by the SQL backends. Times are stored
// as unix seconds so both dialects compare them the same way.
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
	upsert func(entry *core.CategoryCacheEntry, labels string) sq.Sqlizer
}

func (s *sqlStore) get(ctx context.Context, batchKey string) (*core.CategoryCacheEntry, error) {
	query, args, err := sq.Select("labels", "created_at", "expires_at").
		From(tableName).
		Where(sq.Eq{"batch_key": batchKey}).
		Where(sq.Gt{"expires_at": time.Now().Unix()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var labels string
	var createdAt, expiresAt int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&labels, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	decoded, err := decodeLabels(labels)
	if err != nil {
		return nil, err
	}

	return &core.CategoryCacheEntry{
		BatchKey:  batchKey,
		Labels:    decoded,
		CreatedAt: time.Unix(createdAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
	}, nil
}

func (s *sqlStore) set(ctx context.Context, entry *core.CategoryCacheEntry) error {
	labels, err := encodeLabels(entry.Labels)
	if err != nil {
		return err
	}

	query, args, err := s.upsert(entry, labels).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (s *sqlStore) delete(ctx context.Context, batchKey string) error {
	query, args, err := sq.Delete(tableName).Where(sq.Eq{"batch_key": batchKey}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *sqlStore) cleanup(ctx context.Context) error {
	query, args, err := sq.Delete(tableName).Where(sq.LtOrEq{"expires_at": time.Now().Unix()}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cleanup: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

func encodeLabels(labels []core.CategoryLabel) (string, error) {
	data, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(data), nil
}

func decodeLabels(data string) ([]core.CategoryLabel, error) {
	var labels []core.CategoryLabel
	if err := json.Unmarshal([]byte(data), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode cached labels: %w", err)
	}
	return labels, nil
}

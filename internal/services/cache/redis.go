package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"

	"gardenvision/internal/config"
	"gardenvision/internal/logger"
	"gardenvision/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "prediction:"

// RedisService caches prediction results keyed by the MD5 of the uploaded bytes.
type RedisService struct {
	client *redis.Client
	cfg    config.RedisConfig
	logger *logger.Logger
}

func NewRedisService(cfg config.RedisConfig, logger *logger.Logger) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// ImageHash returns the hex MD5 of data.
func ImageHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Key returns the redis key for an image hash.
func Key(hash string) string {
	return keyPrefix + hash
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetPrediction returns the cached prediction or nil on a miss.
func (s *RedisService) GetPrediction(ctx context.Context, hash string) (*models.Prediction, error) {
	data, err := s.client.Get(ctx, Key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var prediction models.Prediction
	if err := json.Unmarshal(data, &prediction); err != nil {
		s.logger.Zap().Error("failed to unmarshal cached prediction",
			zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	return &prediction, nil
}

// SetPrediction stores prediction for the configured TTL.
func (s *RedisService) SetPrediction(ctx context.Context, hash string, prediction *models.Prediction) error {
	data, err := json.Marshal(prediction)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, Key(hash), data, s.cfg.TTL).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

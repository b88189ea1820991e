package email

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// GormStore keeps verifications in the email_verifications table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the verification for email.
func (s *GormStore) Get(ctx context.Context, email string) (*domain.EmailVerification, error) {
	var v domain.EmailVerification
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&v).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &v, nil
}

// Save inserts v or replaces the row for the same email.
func (s *GormStore) Save(ctx context.Context, v *domain.EmailVerification) error {
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var existing domain.EmailVerification
		err := tx.Where("email = ?", v.Email).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			v.ID = 0
			return tx.Create(v).Error
		case err != nil:
			return err
		}
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
		return tx.Save(v).Error
	})
	return pkg.MapDBError(err)
}

// Delete removes the verification for email.
func (s *GormStore) Delete(ctx context.Context, email string) error {
	result := s.db.WithContext(ctx).Where("email = ?", email).Delete(&domain.EmailVerification{})
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const redisKeyPrefix = "flyingpig:email_verification:"

// redisRecord is the stored form. domain.EmailVerification hides the code
// hash from JSON.
type redisRecord struct {
	Email      string     `json:"email"`
	CodeHash   string     `json:"code_hash"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Attempts   int        `json:"attempts"`
	LastSentAt time.Time  `json:"last_sent_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RedisStore keeps verifications as JSON strings that expire on their own.
type RedisStore struct {
	client    redis.Cmdable
	retention time.Duration
	now       func() time.Time
}

// NewRedisStore creates a RedisStore. Verified records are kept for
// retention after verification.
func NewRedisStore(client redis.Cmdable, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention, now: time.Now}
}

func redisKey(email string) string {
	return redisKeyPrefix + email
}

// Get returns the verification for email.
func (s *RedisStore) Get(ctx context.Context, email string) (*domain.EmailVerification, error) {
	data, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "redis error", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "corrupt verification record", err)
	}
	v := &domain.EmailVerification{
		Email:      rec.Email,
		CodeHash:   rec.CodeHash,
		ExpiresAt:  rec.ExpiresAt,
		Attempts:   rec.Attempts,
		LastSentAt: rec.LastSentAt,
		VerifiedAt: rec.VerifiedAt,
	}
	v.CreatedAt = rec.CreatedAt
	return v, nil
}

// Save stores v until it can no longer be used.
func (s *RedisStore) Save(ctx context.Context, v *domain.EmailVerification) error {
	now := s.now()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	ttl := s.ttl(v, now)
	if ttl <= 0 {
		return s.client.Del(ctx, redisKey(v.Email)).Err()
	}
	data, err := json.Marshal(redisRecord{
		Email:      v.Email,
		CodeHash:   v.CodeHash,
		ExpiresAt:  v.ExpiresAt,
		Attempts:   v.Attempts,
		LastSentAt: v.LastSentAt,
		VerifiedAt: v.VerifiedAt,
		CreatedAt:  v.CreatedAt,
	})
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "encode verification record", err)
	}
	if err := s.client.Set(ctx, redisKey(v.Email), data, ttl).Err(); err != nil {
		return domain.NewAppError(domain.CodeInternal, "redis error", err)
	}
	return nil
}

// ttl is the time left until the code expires, or until the verified
// window closes once the code is confirmed.
func (s *RedisStore) ttl(v *domain.EmailVerification, now time.Time) time.Duration {
	if v.VerifiedAt != nil {
		return v.VerifiedAt.Add(s.retention).Sub(now)
	}
	return v.ExpiresAt.Sub(now)
}

// Delete removes the verification for email.
func (s *RedisStore) Delete(ctx context.Context, email string) error {
	n, err := s.client.Del(ctx, redisKey(email)).Result()
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "redis error", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

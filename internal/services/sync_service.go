package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/daftari/backend/internal/models"
	"github.com/daftari/backend/internal/storages"
)

const shareCodeTTL = 10 * time.Minute

var (
	ErrSharingUnavailable = fmt.Errorf("sharing is unavailable")
	ErrShareCodeNotFound  = fmt.Errorf("invalid or expired share code")
)

// SyncService turns the full ledger state into a transportable blob and back.
type SyncService struct {
	store  storages.Storage
	redis  *redis.Client
	logger *logrus.Logger
}

func NewSyncService(store storages.Storage, redis *redis.Client, log *logrus.Logger) *SyncService {
	return &SyncService{store: store, redis: redis, logger: log}
}

// Export serializes the current state into a URL-safe payload.
func (s *SyncService) Export(ctx context.Context) (string, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return EncodeForTransport(*snap)
}

// Import replaces the full state with the decoded payload. A payload that
// fails to decode leaves the stored state untouched.
func (s *SyncService) Import(ctx context.Context, payload string) error {
	snap, err := DecodeFromTransport(payload)
	if err != nil {
		return err
	}
	if snap.GlobalUsdRate <= 0 {
		snap.GlobalUsdRate = models.DefaultUsdRate
	}
	return s.store.Replace(ctx, &snap)
}

// QRCodePNG renders the payload as a base64 PNG QR code.
func (s *SyncService) QRCodePNG(payload string) (string, error) {
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CreateShareCode parks the current state behind a short-lived one-time code.
func (s *SyncService) CreateShareCode(ctx context.Context) (string, error) {
	if s.redis == nil {
		return "", ErrSharingUnavailable
	}

	payload, err := s.Export(ctx)
	if err != nil {
		return "", err
	}

	code := generateShareCode()
	key := fmt.Sprintf("sync:%s", code)
	if err := s.redis.Set(ctx, key, payload, shareCodeTTL).Err(); err != nil {
		return "", err
	}

	s.logger.WithField("code", code).Info("share code created")
	return code, nil
}

// ResolveShareCode imports the state parked behind a code and burns the code.
func (s *SyncService) ResolveShareCode(ctx context.Context, code string) error {
	if s.redis == nil {
		return ErrSharingUnavailable
	}

	key := fmt.Sprintf("sync:%s", code)
	payload, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrShareCodeNotFound
	}
	if err != nil {
		return err
	}

	if err := s.Import(ctx, payload); err != nil {
		return err
	}

	s.redis.Del(ctx, key)
	return nil
}

// EncodeForTransport wraps a snapshot as compact JSON in URL-safe base64.
func EncodeForTransport(snap models.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeFromTransport is the inverse of EncodeForTransport. Anything that is
// not valid base64-wrapped snapshot JSON is rejected.
func DecodeFromTransport(payload string) (models.Snapshot, error) {
	var snap models.Snapshot

	data, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return snap, fmt.Errorf("malformed sync payload: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("malformed sync payload: %w", err)
	}
	return snap, nil
}

func generateShareCode() string {
	b := make([]byte, 6)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

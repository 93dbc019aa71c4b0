package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wenlng/go-captcha/v2/rotate"
	xdraw "golang.org/x/image/draw"
)

// CaptchaService exposes methods to generate and verify rotate captchas for admin login.
//
// Generate returns a challenge ID with the master and thumb images; the client rotates
// the thumb and submits the angle with the challenge ID. A challenge is consumed by its
// first verification, successful or not.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

// ChallengeStore keeps the target angle of each outstanding challenge
type ChallengeStore interface {
	Set(ctx context.Context, id string, targetAngle int, ttl time.Duration) error
	// Take returns and removes the target angle
	Take(ctx context.Context, id string) (int, bool, error)
}

type captchaServiceImpl struct {
	rotator rotate.Captcha
	store   ChallengeStore
	ttl     time.Duration
	padding int
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode.
// padding is the accepted angle difference in degrees; imgSizePx is the square image size.
func NewCaptchaServiceRotate(store ChallengeStore, ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if ttl <= 0 {
		ttl = utils.CaptchaTTL
	}
	if store == nil {
		store = NewMemoryChallengeStore()
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator: builder.Make(),
		store:   store,
		ttl:     ttl,
		padding: padding,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate captcha: %w", err)
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("captcha generator returned no block data")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	if err := s.store.Set(ctx, challengeID, block.Angle, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store captcha challenge: %w", err)
	}

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	target, ok, err := s.store.Take(ctx, challengeID)
	if err != nil || !ok {
		return false
	}

	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

type redisChallengeStore struct {
	rdb *redis.Client
}

// NewRedisChallengeStore shares captcha challenges across instances
func NewRedisChallengeStore(rdb *redis.Client) ChallengeStore {
	return &redisChallengeStore{rdb: rdb}
}

func (s *redisChallengeStore) Set(ctx context.Context, id string, targetAngle int, ttl time.Duration) error {
	return s.rdb.Set(ctx, utils.CaptchaKeyPrefix+id, targetAngle, ttl).Err()
}

func (s *redisChallengeStore) Take(ctx context.Context, id string) (int, bool, error) {
	val, err := s.rdb.GetDel(ctx, utils.CaptchaKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	angle, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt captcha challenge %s: %w", id, err)
	}
	return angle, true, nil
}

type memoryEntry struct {
	targetAngle int
	expiresAt   time.Time
}

type memoryChallengeStore struct {
	mu sync.Mutex
	m  map[string]memoryEntry
}

// NewMemoryChallengeStore keeps challenges in process. Expired entries are swept on write.
func NewMemoryChallengeStore() ChallengeStore {
	return &memoryChallengeStore{m: make(map[string]memoryEntry)}
}

func (s *memoryChallengeStore) Set(_ context.Context, id string, targetAngle int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, v := range s.m {
		if now.After(v.expiresAt) {
			delete(s.m, k)
		}
	}
	s.m[id] = memoryEntry{targetAngle: targetAngle, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memoryChallengeStore) Take(_ context.Context, id string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return 0, false, nil
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false, nil
	}
	return e.targetAngle, true, nil
}

// generateRotateBackgrounds renders small noisy gradients and scales them to size
func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		small := newNoiseGradientImage(size/4+1, size/4+1, i)
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), small, small.Bounds(), xdraw.Over, nil)
		imgs = append(imgs, dst)
	}
	return imgs
}

func newNoiseGradientImage(w, h, variant int) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	hue := uint8(60 * (variant % 4))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			t := math.Min(math.Sqrt(dx*dx+dy*dy)/float64(w/2), 1)
			base := uint8(200 - int(150*t))
			noise := uint8(rand.Intn(30))
			rgba.Set(x, y, color.RGBA{R: base + noise/3, G: base ^ hue, B: 255 - base/2, A: 255})
		}
	}
	return rgba
}

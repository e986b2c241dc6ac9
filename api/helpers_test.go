package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lotbid/adapters/auth"
	"lotbid/adapters/database"
	"lotbid/adapters/kafka"
	"lotbid/models"
)

var testNow = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

const (
	testJWTSecret    = "0123456789abcdef0123456789abcdef"
	testBridgeSecret = "bridge-secret"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.SettledEvent
}

func (p *recordingPublisher) PublishSettled(_ context.Context, event kafka.SettledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []kafka.SettledEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.SettledEvent(nil), p.events...)
}

type testEnv struct {
	impl      *ServerImpl
	db        *gorm.DB
	router    *gin.Engine
	jwt       *auth.JWTVerifier
	publisher *recordingPublisher
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupServer 以 in-memory sqlite 建立完整的服務，時間固定在 testNow
func setupServer(t *testing.T, configure ...func(*ServerConfig, *Dependencies)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	verifier, err := auth.NewJWTVerifier([]byte(testJWTSecret),
		auth.WithJWTIssuer("lotbid"),
		auth.WithJWTClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	config := ServerConfig{
		Bridge:   BridgeConfig{Secret: testBridgeSecret},
		Realtime: RealtimeConfig{CountdownInterval: time.Hour},
	}
	publisher := &recordingPublisher{}
	deps := Dependencies{
		DB:        db,
		Verifier:  verifier,
		Publisher: publisher,
		Logger:    discardLogger(),
		Clock:     func() time.Time { return testNow },
	}
	for _, fn := range configure {
		fn(&config, &deps)
	}

	impl, err := NewServerWithDependencies(config, deps)
	require.NoError(t, err)
	impl.Start()
	t.Cleanup(impl.Close)

	router := gin.New()
	router.ContextWithFallback = true
	impl.RegisterRoutes(router)
	return &testEnv{impl: impl, db: db, router: router, jwt: verifier, publisher: publisher}
}

// token 建立使用者並簽發 token
func (env *testEnv) token(t *testing.T, name, role string) (string, models.User) {
	t.Helper()
	user := models.User{Name: name, Role: role}
	require.NoError(t, env.db.Create(&user).Error)
	token, err := env.jwt.MintToken(auth.Identity{UserID: user.ID, Name: name, Role: role})
	require.NoError(t, err)
	return token, user
}

func (env *testEnv) createListing(t *testing.T, status models.Status, startPrice int64) models.Listing {
	t.Helper()
	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	listing := models.Listing{
		Lot:        "LOT-" + uuid.NewString()[:8],
		Title:      "1991 Honda NSX",
		Make:       "Honda",
		Model:      "NSX",
		Year:       1991,
		Status:     status,
		StartPrice: decimal.NewFromInt(startPrice),
		StartTime:  &start,
		EndTime:    &end,
	}
	require.NoError(t, env.db.Create(&listing).Error)
	return listing
}

func (env *testEnv) createBid(t *testing.T, listingID, userID uuid.UUID, amount int64, offset time.Duration) models.Bid {
	t.Helper()
	bid := models.Bid{
		ListingID: listingID,
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: testNow.Add(offset),
	}
	require.NoError(t, env.db.Create(&bid).Error)
	return bid
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

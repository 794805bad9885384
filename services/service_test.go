package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"idea-feedback-system/middleware"
	"idea-feedback-system/models"
	"idea-feedback-system/solana"
	"idea-feedback-system/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret")

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.Post{},
		&models.Comment{},
		&models.PrizePool{},
		&models.Ranking{},
		&models.Tip{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// fakeAttestor is a TxAttestor backed by an in-memory set of known
// signatures.
type fakeAttestor struct {
	known map[string]bool
	err   error
	calls int
}

func (f *fakeAttestor) GetTransaction(ctx context.Context, txSignature string) (*solana.TransactionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.known[txSignature] {
		return &solana.TransactionResult{Slot: 1}, nil
	}
	return nil, solana.ErrTxNotFound
}

// newTestApp wires the real routes against an in-memory DB, mirroring main.go.
func newTestApp(t *testing.T, db *gorm.DB, attestor TxAttestor) *fiber.App {
	t.Helper()

	walletService := NewWalletService(db, testSecret)
	postService := NewPostService(db)
	prizeService := NewPrizeService(db)
	tipService := NewTipService(db, attestor)

	walletAuth := middleware.WalletAuthMiddleware(db, testSecret)

	app := fiber.New()

	app.Post("/api/wallet/connect", walletService.Connect)
	app.Get("/api/wallet/me", walletAuth, walletService.Me)
	app.Get("/api/wallet/:walletAddress/earnings", walletService.GetEarnings)

	app.Get("/api/posts", postService.GetPosts)
	app.Get("/api/posts/:id", postService.GetPost)
	app.Get("/api/posts/:postId/comments", postService.GetComments)
	app.Get("/api/posts/:postId/rankings", prizeService.GetRankings)
	app.Post("/api/posts", walletAuth, postService.CreatePost)
	app.Post("/api/posts/:postId/comments", walletAuth, postService.CreateComment)
	app.Post("/api/posts/:postId/rank", walletAuth, prizeService.RankComment)

	app.Get("/api/prizes/:prizePoolId/status", prizeService.GetPoolStatus)
	app.Post("/api/prizes/:prizePoolId/distribute", walletAuth, prizeService.DistributePrizes)
	app.Post("/api/prizes/:rankingId/claim", walletAuth, prizeService.ClaimPrize)
	app.Delete("/api/rankings/:id", walletAuth, prizeService.RemoveRanking)

	app.Post("/api/tips/send", walletAuth, tipService.SendTip)
	app.Get("/api/tips/comment/:commentId", tipService.GetCommentTips)
	app.Get("/api/tips/:walletAddress", tipService.GetTipHistory)

	return app
}

func createWallet(t *testing.T, db *gorm.DB, address string) models.Wallet {
	t.Helper()
	wallet := models.Wallet{
		ID:      uuid.NewString(),
		Address: address,
		Type:    models.WalletTypePhantom,
	}
	require.NoError(t, db.Create(&wallet).Error)
	return wallet
}

func tokenFor(t *testing.T, wallet models.Wallet) string {
	t.Helper()
	token, err := utils.IssueWalletToken(testSecret, wallet.Address, wallet.ID, time.Hour)
	require.NoError(t, err)
	return token
}

// doJSON drives a route and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func d(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount)
}

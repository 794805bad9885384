package services

import (
	"time"

	"idea-feedback-system/models"
	"idea-feedback-system/solana"
	"idea-feedback-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionTTL = 7 * 24 * time.Hour

type WalletService struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func NewWalletService(db *gorm.DB, jwtSecret []byte) *WalletService {
	return &WalletService{DB: db, JWTSecret: jwtSecret}
}

// Connect verifies a wallet signature over the client-provided message and
// issues a session token. The wallet row is created on the first verified
// connect; the stored address is the trust boundary every later ownership
// check compares against.
func (s *WalletService) Connect(c *fiber.Ctx) error {
	var req struct {
		Address   string            `json:"address"`
		Type      models.WalletType `json:"type"`
		Signature string            `json:"signature"`
		Message   string            `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Address == "" || req.Signature == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Address, signature and message required"})
	}

	if req.Type == "" {
		req.Type = models.WalletTypePhantom
	}
	if !models.IsValidWalletType(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown wallet type"})
	}

	if !solana.VerifySignature(req.Address, req.Signature, req.Message) {
		zap.S().Warnf("[Wallet] Signature verification failed for %s", req.Address)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid wallet signature"})
	}

	var wallet models.Wallet
	err := s.DB.Where("address = ?", req.Address).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		wallet = models.Wallet{
			ID:      uuid.NewString(),
			Address: req.Address,
			Type:    req.Type,
		}
		if err := s.DB.Create(&wallet).Error; err != nil {
			zap.S().Errorf("[Wallet] Failed to create wallet: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create wallet"})
		}
		zap.S().Infof("[Wallet] Created wallet %s (%s)", wallet.Address, wallet.Type)
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	token, err := utils.IssueWalletToken(s.JWTSecret, wallet.Address, wallet.ID, sessionTTL)
	if err != nil {
		zap.S().Errorf("[Wallet] Failed to sign session token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue session token"})
	}

	return c.JSON(fiber.Map{
		"wallet": wallet,
		"token":  token,
	})
}

// Me returns the authenticated wallet.
func (s *WalletService) Me(c *fiber.Ctx) error {
	walletID := c.Locals("wallet_id").(string)

	var wallet models.Wallet
	if err := s.DB.First(&wallet, "id = ?", walletID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{"wallet": wallet})
}

// GetEarnings summarizes what a wallet has made: claimed prize money plus the
// running tip aggregates. Totals are computed from current rows on every call.
func (s *WalletService) GetEarnings(c *fiber.Ctx) error {
	address := c.Params("walletAddress")

	var wallet models.Wallet
	if err := s.DB.Where("address = ?", address).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var prizesClaimed decimal.Decimal
	if err := s.DB.Model(&models.Ranking{}).
		Joins("JOIN comments ON comments.id = rankings.comment_id").
		Where("comments.wallet_id = ? AND rankings.claimed = ?", wallet.ID, true).
		Select("COALESCE(SUM(rankings.prize_amount), 0)").
		Scan(&prizesClaimed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute prize earnings"})
	}

	var prizesPending decimal.Decimal
	if err := s.DB.Model(&models.Ranking{}).
		Joins("JOIN comments ON comments.id = rankings.comment_id").
		Joins("JOIN prize_pools ON prize_pools.id = rankings.prize_pool_id").
		Where("comments.wallet_id = ? AND rankings.claimed = ? AND prize_pools.distributed = ?", wallet.ID, false, true).
		Select("COALESCE(SUM(rankings.prize_amount), 0)").
		Scan(&prizesPending).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute pending prizes"})
	}

	return c.JSON(fiber.Map{
		"wallet": wallet.Address,
		"earnings": fiber.Map{
			"prizes_claimed": prizesClaimed,
			"prizes_pending": prizesPending,
			"tips_received":  wallet.TipsReceived,
			"tips_given":     wallet.TipsGiven,
			"total":          prizesClaimed.Add(wallet.TipsReceived),
		},
	})
}

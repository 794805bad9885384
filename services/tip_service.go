package services

import (
	"context"
	"errors"
	"fmt"

	"idea-feedback-system/models"
	"idea-feedback-system/solana"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxAttestor confirms a transaction signature exists on-chain. Satisfied by
// *solana.Client; tests swap in a fake chain.
type TxAttestor interface {
	GetTransaction(ctx context.Context, txSignature string) (*solana.TransactionResult, error)
}

type TipService struct {
	DB       *gorm.DB
	Attestor TxAttestor
}

func NewTipService(db *gorm.DB, attestor TxAttestor) *TipService {
	return &TipService{DB: db, Attestor: attestor}
}

// SendTip records a verified peer tip on a comment. The chain lookup happens
// before the mutating transaction begins, so no row lock is held across
// network I/O. The tip insert and both wallet counter increments commit or
// roll back together; the unique tx_signature index makes retried submissions
// record exactly once.
func (s *TipService) SendTip(c *fiber.Ctx) error {
	fromAddress := c.Locals("wallet_address").(string)

	var req struct {
		CommentID   string          `json:"comment_id"`
		Amount      decimal.Decimal `json:"amount"`
		TxSignature string          `json:"tx_signature"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.CommentID == "" || req.TxSignature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	if !req.Amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be greater than 0"})
	}

	var comment models.Comment
	if err := s.DB.Preload("Wallet").First(&comment, "id = ?", req.CommentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if comment.Wallet.Address == fromAddress {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot tip your own comment"})
	}

	var existing models.Tip
	err := s.DB.Where("tx_signature = ?", req.TxSignature).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Transaction already recorded"})
	}
	if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	// Attestation is a pure lookup with no retry: the chain simply may not
	// have seen the signature yet, and the client is told to come back.
	if _, err := s.Attestor.GetTransaction(c.Context(), req.TxSignature); err != nil {
		if errors.Is(err, solana.ErrTxNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Transaction not found on blockchain",
				"message": "Please wait a few seconds and try again",
			})
		}
		zap.S().Errorf("[Tips] Transaction verification error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to verify transaction"})
	}

	tip := models.Tip{
		ID:          uuid.NewString(),
		CommentID:   req.CommentID,
		FromWallet:  fromAddress,
		ToWallet:    comment.Wallet.Address,
		Amount:      req.Amount,
		TxSignature: req.TxSignature,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tip).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Wallet{}).
			Where("address = ?", fromAddress).
			Update("tips_given", gorm.Expr("tips_given + ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sender wallet %s missing", fromAddress)
		}

		res = tx.Model(&models.Wallet{}).
			Where("address = ?", comment.Wallet.Address).
			Update("tips_received", gorm.Expr("tips_received + ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipient wallet %s missing", comment.Wallet.Address)
		}

		return nil
	})
	if err != nil {
		// A concurrent submission of the same signature won the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Transaction already recorded"})
		}
		zap.S().Errorf("[Tips] Failed to record tip: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send tip"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"tip":     tip,
		"message": fmt.Sprintf("Successfully tipped %s USDC", req.Amount),
	})
}

// GetTipHistory lists a wallet's tips filtered by direction, 100 most recent,
// recomputing totals from the fetched rows on every call.
func (s *TipService) GetTipHistory(c *fiber.Ctx) error {
	walletAddress := c.Params("walletAddress")
	direction := c.Query("type", "all") // sent | received | all

	query := s.DB.Model(&models.Tip{}).
		Preload("Comment.Post").
		Order("created_at DESC").
		Limit(100)

	switch direction {
	case "sent":
		query = query.Where("from_wallet = ?", walletAddress)
	case "received":
		query = query.Where("to_wallet = ?", walletAddress)
	default:
		query = query.Where("from_wallet = ? OR to_wallet = ?", walletAddress, walletAddress)
	}

	var tips []models.Tip
	if err := query.Find(&tips).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tip history"})
	}

	sent := decimal.Zero
	received := decimal.Zero
	for _, t := range tips {
		if t.FromWallet == walletAddress {
			sent = sent.Add(t.Amount)
		}
		if t.ToWallet == walletAddress {
			received = received.Add(t.Amount)
		}
	}

	return c.JSON(fiber.Map{
		"tips": tips,
		"stats": fiber.Map{
			"sent":     sent,
			"received": received,
			"net":      received.Sub(sent),
			"count":    len(tips),
		},
	})
}

// GetCommentTips lists all tips on one comment with a running total.
func (s *TipService) GetCommentTips(c *fiber.Ctx) error {
	commentID := c.Params("commentId")

	var tips []models.Tip
	if err := s.DB.Where("comment_id = ?", commentID).
		Order("created_at DESC").
		Find(&tips).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch comment tips"})
	}

	total := decimal.Zero
	for _, t := range tips {
		total = total.Add(t.Amount)
	}

	return c.JSON(fiber.Map{
		"tips":  tips,
		"total": total,
		"count": len(tips),
	})
}

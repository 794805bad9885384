package services

import (
	"errors"
	"fmt"
	"time"

	"idea-feedback-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrizeService struct {
	DB *gorm.DB
}

func NewPrizeService(db *gorm.DB) *PrizeService {
	return &PrizeService{DB: db}
}

// lockForUpdate takes a row lock on dialects that support it. SQLite (the
// test driver) has no FOR UPDATE and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// RankComment assigns a rank (and the matching prize amount) to a comment.
// Post owner only, and only once the pool has closed. The readable
// precondition checks run first for good error messages; the transaction then
// re-checks `distributed` under a row lock and lets the composite unique
// indexes arbitrate races on the rank and comment slots.
func (s *PrizeService) RankComment(c *fiber.Ctx) error {
	postID := c.Params("postId")
	walletAddress := c.Locals("wallet_address").(string)
	walletID := c.Locals("wallet_id").(string)

	var req struct {
		CommentID string `json:"comment_id"`
		Rank      int    `json:"rank"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.CommentID == "" || req.Rank == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Comment ID and rank required"})
	}

	// Fixed route-layer cap, independent of the pool's winnersCount.
	if req.Rank < 1 || req.Rank > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rank must be between 1 and 5"})
	}

	var post models.Post
	err := s.DB.Preload("Wallet").Preload("PrizePool.Rankings").First(&post, "id = ?", postID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if post.Wallet.Address != walletAddress {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only post owner can rank comments"})
	}

	if post.PrizePool == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Post does not have a prize pool"})
	}
	pool := post.PrizePool

	if !pool.HasEnded(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Cannot rank comments before prize pool ends",
			"ends_at": pool.EndsAt,
		})
	}

	if pool.Distributed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize pool already distributed"})
	}

	var comment models.Comment
	if err := s.DB.Preload("Wallet").First(&comment, "id = ?", req.CommentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comment not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if comment.PostID != postID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Comment does not belong to this post"})
	}

	for _, r := range pool.Rankings {
		if r.Rank == req.Rank {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":      fmt.Sprintf("Rank %d is already assigned", req.Rank),
				"comment_id": r.CommentID,
			})
		}
		if r.CommentID == req.CommentID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Comment is already ranked",
				"rank":  r.Rank,
			})
		}
	}

	prizeAmount, ok := pool.Distribution.AmountFor(req.Rank)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rank for this prize pool"})
	}

	ranking := models.Ranking{
		ID:          uuid.NewString(),
		PrizePoolID: pool.ID,
		CommentID:   req.CommentID,
		WalletID:    walletID,
		Rank:        req.Rank,
		PrizeAmount: prizeAmount,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.PrizePool
		if err := lockForUpdate(tx).
			First(&locked, "id = ?", pool.ID).Error; err != nil {
			return err
		}
		if locked.Distributed {
			return errDistributed
		}
		return tx.Create(&ranking).Error
	})
	if err != nil {
		if errors.Is(err, errDistributed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize pool already distributed"})
		}
		// Concurrent assignment lost the race against one of the unique slots.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rank or comment already assigned"})
		}
		zap.S().Errorf("[Rankings] Failed to create ranking: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rank comment"})
	}

	ranking.Comment = comment
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ranking": ranking,
		"message": fmt.Sprintf("Comment ranked #%d for %s USDC", req.Rank, prizeAmount),
	})
}

// GetRankings lists a post's rankings with a pool summary.
func (s *PrizeService) GetRankings(c *fiber.Ctx) error {
	postID := c.Params("postId")

	var pool models.PrizePool
	err := s.DB.
		Preload("Rankings", func(db *gorm.DB) *gorm.DB {
			return db.Order("rankings.rank ASC")
		}).
		Preload("Rankings.Comment.Wallet").
		First(&pool, "post_id = ?", postID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize pool not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{
		"rankings": pool.Rankings,
		"prize_pool": fiber.Map{
			"total_amount":  pool.TotalAmount,
			"winners_count": pool.WinnersCount,
			"distribution":  pool.Distribution,
			"ends_at":       pool.EndsAt,
			"distributed":   pool.Distributed,
		},
	})
}

// RemoveRanking deletes a ranking. Post owner only, and blocked once the pool
// is distributed or that specific ranking is claimed — the ranking-level flag
// matters on its own, not just the pool flag.
func (s *PrizeService) RemoveRanking(c *fiber.Ctx) error {
	id := c.Params("id")
	walletAddress := c.Locals("wallet_address").(string)

	var ranking models.Ranking
	err := s.DB.Preload("PrizePool.Post.Wallet").First(&ranking, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ranking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if ranking.PrizePool.Post.Wallet.Address != walletAddress {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only post owner can remove rankings"})
	}

	if ranking.PrizePool.Distributed || ranking.Claimed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot remove ranking after distribution"})
	}

	// A distribute or claim may land between the read above and the delete, so
	// both flags are re-checked under row locks inside the transaction.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Ranking
		if err := lockForUpdate(tx).First(&locked, "id = ?", id).Error; err != nil {
			return err
		}
		if locked.Claimed {
			return errClaimed
		}
		var pool models.PrizePool
		if err := lockForUpdate(tx).First(&pool, "id = ?", locked.PrizePoolID).Error; err != nil {
			return err
		}
		if pool.Distributed {
			return errDistributed
		}
		return tx.Delete(&models.Ranking{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, errDistributed) || errors.Is(err, errClaimed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot remove ranking after distribution"})
		}
		zap.S().Errorf("[Rankings] Failed to delete ranking %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove ranking"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Ranking removed successfully"})
}

var (
	errDistributed = errors.New("prize pool already distributed")
	errClaimed     = errors.New("prize already claimed")
)

// DistributePrizes marks a pool distributed. Owner only, pool must be closed,
// and every advertised winner slot must be filled — there is no partial
// payout. The flag flips false -> true exactly once: the row lock plus
// re-check makes a second concurrent call fail like a sequential one.
//
// The on-chain transfer is still simulated; the recorded distributeTx is a
// placeholder, not proof that funds moved.
func (s *PrizeService) DistributePrizes(c *fiber.Ctx) error {
	poolID := c.Params("prizePoolId")
	walletAddress := c.Locals("wallet_address").(string)

	var pool models.PrizePool
	err := s.DB.
		Preload("Post.Wallet").
		Preload("Rankings", func(db *gorm.DB) *gorm.DB {
			return db.Order("rankings.rank ASC")
		}).
		Preload("Rankings.Comment.Wallet").
		First(&pool, "id = ?", poolID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize pool not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if pool.Post.Wallet.Address != walletAddress {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only post owner can distribute prizes"})
	}

	if !pool.HasEnded(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Cannot distribute prizes before end date",
			"ends_at": pool.EndsAt,
		})
	}

	if pool.Distributed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prizes already distributed"})
	}

	if len(pool.Rankings) != len(pool.Distribution) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Not all winners have been ranked",
			"ranked":   len(pool.Rankings),
			"required": len(pool.Distribution),
		})
	}

	distributeTx := fmt.Sprintf("simulated_tx_%d", time.Now().UnixMilli())

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.PrizePool
		if err := lockForUpdate(tx).
			First(&locked, "id = ?", poolID).Error; err != nil {
			return err
		}
		if locked.Distributed {
			return errDistributed
		}
		return tx.Model(&locked).Updates(map[string]interface{}{
			"distributed":   true,
			"ended":         true,
			"distribute_tx": distributeTx,
		}).Error
	})
	if err != nil {
		if errors.Is(err, errDistributed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prizes already distributed"})
		}
		zap.S().Errorf("[Prizes] Distribute failed for pool %s: %v", poolID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to distribute prizes"})
	}

	winners := make([]fiber.Map, 0, len(pool.Rankings))
	for _, r := range pool.Rankings {
		winners = append(winners, fiber.Map{
			"rank":   r.Rank,
			"wallet": r.Comment.Wallet.Address,
			"amount": r.PrizeAmount,
		})
	}

	zap.S().Infof("[Prizes] Pool %s distributed (%d winners)", poolID, len(winners))

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Prizes distributed successfully",
		"rankings": winners,
	})
}

// ClaimPrize marks one ranking claimed. Winner only, pool must already be
// distributed, and each ranking can be claimed once.
func (s *PrizeService) ClaimPrize(c *fiber.Ctx) error {
	rankingID := c.Params("rankingId")
	walletAddress := c.Locals("wallet_address").(string)

	var ranking models.Ranking
	err := s.DB.Preload("Comment.Wallet").Preload("PrizePool").First(&ranking, "id = ?", rankingID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ranking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if ranking.Comment.Wallet.Address != walletAddress {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only winner can claim prize"})
	}

	if ranking.Claimed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Prize already claimed",
			"claim_tx": ranking.ClaimTx,
		})
	}

	if !ranking.PrizePool.Distributed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prizes not yet distributed"})
	}

	claimTx := fmt.Sprintf("claim_tx_%d", time.Now().UnixMilli())

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Ranking
		if err := lockForUpdate(tx).
			First(&locked, "id = ?", rankingID).Error; err != nil {
			return err
		}
		if locked.Claimed {
			return errClaimed
		}
		return tx.Model(&locked).Updates(map[string]interface{}{
			"claimed":  true,
			"claim_tx": claimTx,
		}).Error
	})
	if err != nil {
		if errors.Is(err, errClaimed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize already claimed"})
		}
		zap.S().Errorf("[Prizes] Claim failed for ranking %s: %v", rankingID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim prize"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("Claimed prize of %s USDC", ranking.PrizeAmount),
		"claim_tx": claimTx,
	})
}

// GetPoolStatus is the read-only projection of a pool: rankings, completeness
// and whether distribution can run right now.
func (s *PrizeService) GetPoolStatus(c *fiber.Ctx) error {
	poolID := c.Params("prizePoolId")

	var pool models.PrizePool
	err := s.DB.
		Preload("Rankings", func(db *gorm.DB) *gorm.DB {
			return db.Order("rankings.rank ASC")
		}).
		Preload("Rankings.Comment.Wallet").
		First(&pool, "id = ?", poolID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Prize pool not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	complete := len(pool.Rankings) == len(pool.Distribution)

	var timeRemaining int64
	if pool.EndsAt.After(now) {
		timeRemaining = pool.EndsAt.Sub(now).Milliseconds()
	}

	rankings := make([]fiber.Map, 0, len(pool.Rankings))
	for _, r := range pool.Rankings {
		rankings = append(rankings, fiber.Map{
			"rank":       r.Rank,
			"amount":     r.PrizeAmount,
			"winner":     r.Comment.Wallet.Address,
			"claimed":    r.Claimed,
			"claim_tx":   r.ClaimTx,
			"comment_id": r.CommentID,
		})
	}

	return c.JSON(fiber.Map{
		"prize_pool": fiber.Map{
			"id":            pool.ID,
			"total_amount":  pool.TotalAmount,
			"winners_count": pool.WinnersCount,
			"distribution":  pool.Distribution,
			"ends_at":       pool.EndsAt,
			"ended":         pool.HasEnded(now),
			"distributed":   pool.Distributed,
			"distribute_tx": pool.DistributeTx,
		},
		"rankings": rankings,
		"status": fiber.Map{
			"rankings_complete": complete,
			"can_distribute":    !pool.Distributed && pool.HasEnded(now) && complete,
			"time_remaining":    timeRemaining,
		},
	})
}

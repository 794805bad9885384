package services

import (
	"time"

	"idea-feedback-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxWinners caps how deep a distribution table may go. The rank route only
// ever accepts ranks 1..5, so a pool advertising more winners could never be
// filled; reject it up front.
const maxWinners = 5

type PostService struct {
	DB *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{DB: db}
}

type prizePoolInput struct {
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	WinnersCount int                 `json:"winners_count"`
	Distribution models.Distribution `json:"distribution"`
	EndsAt       time.Time           `json:"ends_at"`
}

// CreatePost publishes a project, optionally attaching a prize pool. The
// distribution table is validated here — the only moment it can be: it is
// immutable once the pool row exists.
func (s *PostService) CreatePost(c *fiber.Ctx) error {
	walletID := c.Locals("wallet_id").(string)

	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		ImageURL    string          `json:"image_url"`
		ProjectLink string          `json:"project_link"`
		Category    string          `json:"category"`
		PrizePool   *prizePoolInput `json:"prize_pool"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" || req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and description required"})
	}

	post := models.Post{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ProjectLink: req.ProjectLink,
		Category:    req.Category,
		WalletID:    walletID,
	}

	var pool *models.PrizePool
	if req.PrizePool != nil {
		p := req.PrizePool
		if !p.TotalAmount.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize pool total must be positive"})
		}
		if p.WinnersCount < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Winners count must be positive"})
		}
		if p.WinnersCount > maxWinners {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Winners count cannot exceed 5"})
		}
		if !p.EndsAt.After(time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prize pool end date must be in the future"})
		}
		if err := p.Distribution.Validate(p.WinnersCount, p.TotalAmount); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid prize distribution", "details": err.Error()})
		}

		pool = &models.PrizePool{
			ID:           uuid.NewString(),
			PostID:       post.ID,
			TotalAmount:  p.TotalAmount,
			WinnersCount: p.WinnersCount,
			Distribution: p.Distribution,
			EndsAt:       p.EndsAt,
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if pool != nil {
			if err := tx.Create(pool).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.S().Errorf("[Posts] Failed to create post: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
	}

	post.PrizePool = pool
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// GetPosts lists posts, newest first, optionally filtered by category.
func (s *PostService) GetPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	query := s.DB.Model(&models.Post{}).
		Preload("Wallet").
		Preload("PrizePool").
		Order("created_at DESC")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var posts []models.Post
	if err := query.Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}

	return c.JSON(fiber.Map{"posts": posts, "count": len(posts)})
}

// GetPost returns a single post with its prize pool and comments.
func (s *PostService) GetPost(c *fiber.Ctx) error {
	id := c.Params("id")

	var post models.Post
	err := s.DB.
		Preload("Wallet").
		Preload("PrizePool").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Wallet").
		First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	return c.JSON(fiber.Map{"post": post})
}

// CreateComment adds feedback to a post.
func (s *PostService) CreateComment(c *fiber.Ctx) error {
	walletID := c.Locals("wallet_id").(string)
	postID := c.Params("postId")

	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content required"})
	}

	var post models.Post
	if err := s.DB.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := s.DB.First(&parent, "id = ? AND post_id = ?", *req.ParentID, postID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Parent comment not found on this post"})
		}
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		WalletID: walletID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}

	if err := s.DB.Create(&comment).Error; err != nil {
		zap.S().Errorf("[Comments] Failed to create comment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create comment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// GetComments lists a post's comments, oldest first.
func (s *PostService) GetComments(c *fiber.Ctx) error {
	postID := c.Params("postId")

	var post models.Post
	if err := s.DB.First(&post, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var comments []models.Comment
	if err := s.DB.Preload("Wallet").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch comments"})
	}

	return c.JSON(fiber.Map{"comments": comments, "count": len(comments)})
}

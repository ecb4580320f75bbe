package services

import (
	"errors"
	"log"
	"time"

	"league-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	type Req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Season      string `json:"season"`
		Level       string `json:"level"`
		StartDate   string `json:"start_date"` // RFC3339
		EndDate     string `json:"end_date"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Name == "" || req.StartDate == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and start_date are required"})
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
	}
	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date (use RFC3339)"})
		}
	}

	tournamentSlug := slug.Make(req.Name)
	if req.Season != "" {
		tournamentSlug = slug.Make(req.Name + " " + req.Season)
	}
	var count int64
	s.DB.Model(&models.Tournament{}).Where("slug = ?", tournamentSlug).Count(&count)
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "a tournament with this name and season already exists"})
	}

	tournament := models.Tournament{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        tournamentSlug,
		Description: req.Description,
		Season:      req.Season,
		Level:       req.Level,
		Status:      models.TournamentDraft,
		StartDate:   startDate,
		EndDate:     endDate,
	}
	if err := s.DB.Create(&tournament).Error; err != nil {
		log.Printf("ERROR creating tournament: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create tournament"})
	}
	return c.Status(201).JSON(tournament)
}

func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	query := s.DB.Order("start_date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if season := c.Query("season"); season != "" {
		query = query.Where("season = ?", season)
	}
	var tournaments []models.Tournament
	if err := query.Find(&tournaments).Error; err != nil {
		log.Printf("ERROR fetching tournaments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var tournament models.Tournament
	err := s.DB.Preload("Rules", func(db *gorm.DB) *gorm.DB {
		return db.Order("priority ASC")
	}).First(&tournament, "id = ? OR slug = ?", id, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		log.Printf("ERROR fetching tournament %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var activeRules int64
	s.DB.Model(&models.EligibilityRule{}).
		Where("tournament_id = ? AND is_active = ?", tournament.ID, true).
		Count(&activeRules)
	tournament.ActiveRulesCount = activeRules

	return c.JSON(tournament)
}

func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	switch req.Status {
	case models.TournamentDraft, models.TournamentPublished, models.TournamentActive,
		models.TournamentCompleted, models.TournamentCancelled:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid status"})
	}

	result := s.DB.Model(&models.Tournament{}).
		Where("id = ?", c.Params("id")).
		Update("status", req.Status)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}

	var updated models.Tournament
	s.DB.First(&updated, "id = ?", c.Params("id"))
	return c.JSON(updated)
}

func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.EligibilityRule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.EligibilityOverride{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tournament{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, "tournament not found")
		}
		return nil
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		log.Printf("ERROR deleting tournament %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.JSON(fiber.Map{"message": "tournament deleted"})
}

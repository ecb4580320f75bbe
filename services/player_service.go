package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"league-management-system/models"
	"league-management-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// RegisterPlayer creates a player record in DRAFT status and assigns a UPID.
func (s *PlayerService) RegisterPlayer(c *fiber.Ctx) error {
	type Req struct {
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		DateOfBirth   string `json:"date_of_birth"` // 2006-01-02
		Gender        string `json:"gender"`
		Nationality   string `json:"nationality"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
		WardID        string `json:"ward_id"`
		GuardianName  string `json:"guardian_name"`
		GuardianPhone string `json:"guardian_phone"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "first_name and last_name are required"})
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date_of_birth (use 2006-01-02)"})
		}
		dob = &parsed
	}

	var wardID *string
	if req.WardID != "" {
		if err := s.DB.First(&models.Ward{}, "id = ?", req.WardID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "ward_id not found"})
		}
		wardID = &req.WardID
	}

	// Minors must have a guardian on record before the registration can be
	// approved; capture whatever is provided at this stage.
	player := models.Player{
		ID:                     uuid.NewString(),
		UPID:                   generateUPID(),
		FirstName:              strings.TrimSpace(req.FirstName),
		LastName:               strings.TrimSpace(req.LastName),
		DateOfBirth:            dob,
		Gender:                 strings.ToUpper(req.Gender),
		Nationality:            req.Nationality,
		Phone:                  req.Phone,
		Email:                  req.Email,
		RegistrationStatus:     models.RegistrationDraft,
		PlayerStatus:           models.PlayerStatusActive,
		IsActive:               true,
		MedicalClearanceStatus: models.MedicalPending,
		GuardianName:           req.GuardianName,
		GuardianPhone:          req.GuardianPhone,
		WardID:                 wardID,
	}
	if err := s.DB.Create(&player).Error; err != nil {
		log.Printf("ERROR creating player: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create player"})
	}
	return c.Status(201).JSON(player)
}

func generateUPID() string {
	// e.g., UPID-2026-9F3A1C2B
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("UPID-%d-%s", time.Now().Year(), short)
}

func (s *PlayerService) GetPlayer(c *fiber.Ctx) error {
	id := c.Params("id")
	var player models.Player
	err := s.DB.Preload("Ward.SubCounty.County").
		First(&player, "id = ? OR upid = ?", id, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		log.Printf("ERROR fetching player %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(player)
}

// SearchPlayers lists players, optionally filtered by a name/UPID search
// term, registration status, or ward.
func (s *PlayerService) SearchPlayers(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.Player{}).Limit(limit)
	if q := c.Query("q"); q != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(upid) LIKE ?",
			term, term, term,
		)
	}
	if status := c.Query("registration_status"); status != "" {
		db = db.Where("registration_status = ?", strings.ToUpper(status))
	}
	if wardID := c.Query("ward_id"); wardID != "" {
		db = db.Where("ward_id = ?", wardID)
	}

	var players []models.Player
	if err := db.Order("created_at DESC").Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}
	return c.JSON(players)
}

// SubmitRegistration moves a DRAFT or INCOMPLETE registration to SUBMITTED.
func (s *PlayerService) SubmitRegistration(c *fiber.Ctx) error {
	id := c.Params("id")
	var player models.Player
	if err := s.DB.First(&player, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if player.RegistrationStatus != models.RegistrationDraft &&
		player.RegistrationStatus != models.RegistrationIncomplete {
		return c.Status(400).JSON(fiber.Map{
			"error":   "only DRAFT or INCOMPLETE registrations can be submitted",
			"current": player.RegistrationStatus,
		})
	}
	if err := s.DB.Model(&player).Update("registration_status", models.RegistrationSubmitted).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "submit failed"})
	}
	return c.JSON(fiber.Map{"message": "registration submitted", "player": player})
}

// ReviewRegistration applies an admin review decision to a submitted
// registration.
func (s *PlayerService) ReviewRegistration(c *fiber.Ctx) error {
	type Req struct {
		Action string `json:"action"` // start_review, approve, reject, suspend, reinstate, mark_incomplete
		Reason string `json:"reason"`
	}
	id := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var newStatus string
	switch req.Action {
	case "start_review":
		newStatus = models.RegistrationInReview
	case "approve":
		newStatus = models.RegistrationApproved
	case "reject":
		newStatus = models.RegistrationRejected
	case "suspend":
		newStatus = models.RegistrationSuspended
	case "reinstate":
		newStatus = models.RegistrationApproved
	case "mark_incomplete":
		newStatus = models.RegistrationIncomplete
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid action"})
	}

	if err := s.DB.Model(&player).Update("registration_status", newStatus).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "review failed"})
	}
	log.Printf("Registration review: player %s %s -> %s (%s)", player.UPID, req.Action, newStatus, req.Reason)
	return c.JSON(fiber.Map{"message": "registration " + req.Action, "registration_status": newStatus})
}

// UploadDocument stores a document scan (R2 when configured, local uploads
// dir otherwise) and creates a PENDING document record.
func (s *PlayerService) UploadDocument(c *fiber.Ctx) error {
	playerID := c.Params("id")
	docType := strings.ToUpper(c.FormValue("document_type"))
	if !models.KnownDocumentTypes[docType] {
		return c.Status(400).JSON(fiber.Map{"error": "unknown document_type"})
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	file, err := c.FormFile("file")
	if err != nil || file.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}
	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}

	var fileURL string
	key := fmt.Sprintf("documents/%s/%s%s", strings.ToLower(docType), uuid.NewString(), ext)
	if utils.R2Enabled() {
		fileURL, err = utils.UploadFileToR2(file, key)
		if err != nil {
			log.Printf("ERROR uploading document for player %s: %v", playerID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload document"})
		}
	} else {
		dest := utils.UploadPath(key)
		if err := utils.SaveFile(file, dest); err != nil {
			log.Printf("ERROR saving document for player %s: %v", playerID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to store document"})
		}
		fileURL = "/" + dest
	}

	doc := models.PlayerDocument{
		ID:                 uuid.NewString(),
		PlayerID:           player.ID,
		DocumentType:       docType,
		FileURL:            fileURL,
		VerificationStatus: models.VerificationPending,
	}
	if err := s.DB.Create(&doc).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to record document"})
	}
	return c.Status(201).JSON(doc)
}

func (s *PlayerService) GetPlayerDocuments(c *fiber.Ctx) error {
	var docs []models.PlayerDocument
	if err := s.DB.Where("player_id = ?", c.Params("id")).
		Order("created_at DESC").Find(&docs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch documents"})
	}
	return c.JSON(docs)
}

// ReviewDocument records a verification decision on an uploaded document.
func (s *PlayerService) ReviewDocument(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"` // VERIFIED or REJECTED
		Notes  string `json:"notes"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	status := strings.ToUpper(req.Status)
	if status != models.VerificationVerified && status != models.VerificationRejected {
		return c.Status(400).JSON(fiber.Map{"error": "status must be VERIFIED or REJECTED"})
	}

	var doc models.PlayerDocument
	if err := s.DB.First(&doc, "id = ?", c.Params("document_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "document not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"verification_status": status,
		"reviewed_at":         &now,
		"reviewer_notes":      req.Notes,
	}
	if userID, ok := c.Locals("user_id").(string); ok {
		updates["reviewed_by"] = userID
	}
	if err := s.DB.Model(&doc).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "review failed"})
	}
	return c.JSON(doc)
}

// RecordConsent upserts the latest grant state for one consent type.
func (s *PlayerService) RecordConsent(c *fiber.Ctx) error {
	type Req struct {
		ConsentType string `json:"consent_type"`
		Granted     *bool  `json:"granted"`
		GrantedBy   string `json:"granted_by"` // SELF or GUARDIAN
	}
	playerID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	consentType := strings.ToUpper(req.ConsentType)
	if !models.KnownConsentTypes[consentType] {
		return c.Status(400).JSON(fiber.Map{"error": "unknown consent_type"})
	}
	if req.Granted == nil {
		return c.Status(400).JSON(fiber.Map{"error": "granted is required"})
	}

	if err := s.DB.First(&models.Player{}, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	grantedBy := strings.ToUpper(req.GrantedBy)
	if grantedBy == "" {
		grantedBy = "SELF"
	}
	var grantedAt *time.Time
	if *req.Granted {
		now := time.Now()
		grantedAt = &now
	}

	var consent models.PlayerConsent
	err := s.DB.Where("player_id = ? AND consent_type = ?", playerID, consentType).
		First(&consent).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		consent = models.PlayerConsent{
			ID:          uuid.NewString(),
			PlayerID:    playerID,
			ConsentType: consentType,
			Granted:     *req.Granted,
			GrantedBy:   grantedBy,
			GrantedAt:   grantedAt,
		}
		if err := s.DB.Create(&consent).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to record consent"})
		}
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	default:
		updates := map[string]interface{}{
			"granted":    *req.Granted,
			"granted_by": grantedBy,
			"granted_at": grantedAt,
		}
		if err := s.DB.Model(&consent).Updates(updates).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to update consent"})
		}
	}
	return c.Status(201).JSON(consent)
}

func (s *PlayerService) GetPlayerConsents(c *fiber.Ctx) error {
	var consents []models.PlayerConsent
	if err := s.DB.Where("player_id = ?", c.Params("id")).Find(&consents).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch consents"})
	}
	return c.JSON(consents)
}

// UpdateMedicalClearance records the result of a medical review.
func (s *PlayerService) UpdateMedicalClearance(c *fiber.Ctx) error {
	type Req struct {
		Status        string `json:"status"`
		ClearanceDate string `json:"clearance_date"` // 2006-01-02
		ExpiryDate    string `json:"expiry_date"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	status := strings.ToUpper(req.Status)
	switch status {
	case models.MedicalPending, models.MedicalValid, models.MedicalRejected, models.MedicalExpired:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid medical status"})
	}

	var player models.Player
	if err := s.DB.First(&player, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	updates := map[string]interface{}{"medical_clearance_status": status}
	if req.ClearanceDate != "" {
		t, err := time.Parse("2006-01-02", req.ClearanceDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid clearance_date (use 2006-01-02)"})
		}
		updates["medical_clearance_date"] = &t
	}
	if req.ExpiryDate != "" {
		t, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid expiry_date (use 2006-01-02)"})
		}
		updates["medical_expiry_date"] = &t
	}
	if err := s.DB.Model(&player).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	s.DB.First(&player, "id = ?", player.ID)
	return c.JSON(player)
}

// UpdatePlayerStatus changes the sporting status (transfers, discipline).
func (s *PlayerService) UpdatePlayerStatus(c *fiber.Ctx) error {
	type Req struct {
		PlayerStatus string `json:"player_status"`
		Reason       string `json:"reason"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	status := strings.ToUpper(req.PlayerStatus)
	switch status {
	case models.PlayerStatusActive, models.PlayerStatusInactive,
		models.PlayerStatusTransferred, models.PlayerStatusRetired, models.PlayerStatusBanned:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid player_status"})
	}

	result := s.DB.Model(&models.Player{}).
		Where("id = ?", c.Params("id")).
		Update("player_status", status)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "player not found"})
	}
	log.Printf("Player %s status -> %s (%s)", c.Params("id"), status, req.Reason)
	return c.JSON(fiber.Map{"message": "player status updated", "player_status": status})
}

package services

import (
	"log"
	"strings"

	"league-management-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type GeographyService struct {
	DB *gorm.DB
}

func NewGeographyService(db *gorm.DB) *GeographyService {
	return &GeographyService{DB: db}
}

var titleCaser = cases.Title(language.English)

// canonicalName normalizes imported unit names ("NAIROBI WEST", "kasarani")
// to a single display casing.
func canonicalName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

func (s *GeographyService) GetCounties(c *fiber.Ctx) error {
	var counties []models.County
	if err := s.DB.Order("code ASC").Find(&counties).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch counties"})
	}
	return c.JSON(counties)
}

func (s *GeographyService) GetSubCounties(c *fiber.Ctx) error {
	query := s.DB.Order("name ASC")
	if countyID := c.Query("county_id"); countyID != "" {
		query = query.Where("county_id = ?", countyID)
	}
	var subCounties []models.SubCounty
	if err := query.Find(&subCounties).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch sub-counties"})
	}
	return c.JSON(subCounties)
}

func (s *GeographyService) GetWards(c *fiber.Ctx) error {
	query := s.DB.Order("name ASC")
	if subCountyID := c.Query("sub_county_id"); subCountyID != "" {
		query = query.Where("sub_county_id = ?", subCountyID)
	}
	var wards []models.Ward
	if err := query.Find(&wards).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch wards"})
	}
	return c.JSON(wards)
}

// SeedGeography imports a county → sub-county → ward tree. Existing county
// codes are skipped so the endpoint can be re-run with an extended payload.
func (s *GeographyService) SeedGeography(c *fiber.Ctx) error {
	type WardReq struct {
		Name string `json:"name"`
	}
	type SubCountyReq struct {
		Name  string    `json:"name"`
		Wards []WardReq `json:"wards"`
	}
	type CountyReq struct {
		Code        string         `json:"code"`
		Name        string         `json:"name"`
		SubCounties []SubCountyReq `json:"sub_counties"`
	}
	type Req struct {
		Counties []CountyReq `json:"counties"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if len(req.Counties) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "counties must not be empty"})
	}

	created := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, countyReq := range req.Counties {
			if countyReq.Code == "" || countyReq.Name == "" {
				continue
			}
			var existing models.County
			if err := tx.First(&existing, "code = ?", countyReq.Code).Error; err == nil {
				continue
			}
			county := models.County{
				ID:   uuid.NewString(),
				Code: countyReq.Code,
				Name: canonicalName(countyReq.Name),
			}
			if err := tx.Create(&county).Error; err != nil {
				return err
			}
			created++
			for _, subReq := range countyReq.SubCounties {
				subCounty := models.SubCounty{
					ID:       uuid.NewString(),
					CountyID: county.ID,
					Name:     canonicalName(subReq.Name),
				}
				if err := tx.Create(&subCounty).Error; err != nil {
					return err
				}
				for _, wardReq := range subReq.Wards {
					ward := models.Ward{
						ID:          uuid.NewString(),
						SubCountyID: subCounty.ID,
						Name:        canonicalName(wardReq.Name),
					}
					if err := tx.Create(&ward).Error; err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR seeding geography: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "seed failed"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "geography seeded", "counties_created": created})
}

package outlets

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
)

type seedOutlet struct {
	name       string
	mediaType  enums.MediaType
	website    string
	email      string
	telegram   string
	audience   int
	reach      int
	base       string
	multiplier string
	premium    bool
	rating     string
	categories []string
}

var seedCategories = []models.Category{
	{Name: "Технологии и IT", Slug: "tech", Description: "СМИ, специализирующиеся на технологиях, IT и инновациях"},
	{Name: "Бизнес и Финансы", Slug: "business", Description: "Деловые издания и финансовая пресса"},
	{Name: "Стартапы", Slug: "startups", Description: "Издания о стартапах и предпринимательстве"},
	{Name: "Маркетинг", Slug: "marketing", Description: "Маркетинговые и рекламные издания"},
	{Name: "Общие новости", Slug: "general", Description: "Общие новостные издания"},
	{Name: "Отраслевые", Slug: "industry", Description: "Отраслевые специализированные издания"},
}

var seedCatalog = []seedOutlet{
	{"VC.ru", enums.MediaTypeOnline, "https://vc.ru", "tips@vc.ru", "", 2000000, 5000000, "5000", "1.5", true, "4.8", []string{"tech", "business", "startups"}},
	{"Habr", enums.MediaTypeOnline, "https://habr.com", "press@habr.com", "", 3000000, 8000000, "4000", "1.4", true, "4.7", []string{"tech"}},
	{"RB.ru", enums.MediaTypeOnline, "https://rb.ru", "editor@rb.ru", "", 1500000, 3000000, "3500", "1.3", true, "4.5", []string{"business", "startups"}},
	{"РБК", enums.MediaTypeOnline, "https://rbc.ru", "news@rbc.ru", "", 10000000, 25000000, "8000", "2.0", true, "4.9", []string{"business", "general"}},
	{"Ведомости", enums.MediaTypeNewspaper, "https://vedomosti.ru", "info@vedomosti.ru", "", 5000000, 12000000, "7000", "1.8", true, "4.7", []string{"business"}},
	{"Коммерсантъ", enums.MediaTypeNewspaper, "https://kommersant.ru", "redakciya@kommersant.ru", "", 4000000, 10000000, "7500", "1.9", true, "4.8", []string{"business", "general"}},
	{"Rusbase", enums.MediaTypeOnline, "https://rusbase.com", "hello@rusbase.com", "@rusbase", 800000, 2000000, "3000", "1.2", false, "4.4", []string{"tech", "startups", "business"}},
	{"Forbes Russia", enums.MediaTypeMagazine, "https://forbes.ru", "info@forbes.ru", "", 6000000, 15000000, "9000", "2.2", true, "4.9", []string{"business", "general"}},
	{"Sostav.ru", enums.MediaTypeOnline, "https://sostav.ru", "news@sostav.ru", "", 500000, 1200000, "2500", "1.0", false, "4.2", []string{"marketing", "business"}},
	{"Cossa", enums.MediaTypeOnline, "https://www.cossa.ru", "editor@cossa.ru", "", 400000, 1000000, "2000", "1.0", false, "4.1", []string{"marketing", "tech"}},
	{"ТАСС", enums.MediaTypeAgency, "https://tass.ru", "info@tass.ru", "", 15000000, 40000000, "10000", "2.5", true, "4.9", []string{"general"}},
	{"Интерфакс", enums.MediaTypeAgency, "https://interfax.ru", "pr@interfax.ru", "", 12000000, 35000000, "9500", "2.4", true, "4.8", []string{"general", "business"}},
	{"CNews", enums.MediaTypeOnline, "https://cnews.ru", "info@cnews.ru", "", 1000000, 2500000, "3000", "1.0", false, "4.3", []string{"tech", "business"}},
	{"Securitylab", enums.MediaTypeOnline, "https://www.securitylab.ru", "editor@securitylab.ru", "", 600000, 1500000, "2500", "1.0", false, "4.2", []string{"tech"}},
	{"Roem.ru", enums.MediaTypeOnline, "https://roem.ru", "info@roem.ru", "@roemru", 500000, 1200000, "2000", "1.0", false, "4.1", []string{"tech", "startups"}},
}

// SeedResult counts the rows inserted by Seed.
type SeedResult struct {
	Categories int
	Outlets    int
}

// Seed inserts the starter categories and catalog. Rows already present by
// slug (categories) or name (outlets) are left untouched.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var result SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bySlug := make(map[string]models.Category, len(seedCategories))
		for _, c := range seedCategories {
			var existing models.Category
			err := tx.Where("slug = ?", c.Slug).First(&existing).Error
			switch {
			case err == nil:
				bySlug[c.Slug] = existing
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := c
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				bySlug[c.Slug] = row
				result.Categories++
			default:
				return err
			}
		}

		for _, o := range seedCatalog {
			var count int64
			if err := tx.Model(&models.MediaOutlet{}).Where("name = ?", o.name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			row := &models.MediaOutlet{
				Name:               o.name,
				MediaType:          o.mediaType,
				Website:            o.website,
				Email:              o.email,
				Telegram:           o.telegram,
				AudienceSize:       o.audience,
				MonthlyReach:       o.reach,
				BasePrice:          decimal.RequireFromString(o.base),
				PriorityMultiplier: decimal.RequireFromString(o.multiplier),
				IsPremium:          o.premium,
				IsActive:           true,
				Rating:             decimal.RequireFromString(o.rating),
			}
			for _, slug := range o.categories {
				if c, ok := bySlug[slug]; ok {
					row.Categories = append(row.Categories, c)
				}
			}
			if err := tx.Omit("Categories.*").Create(row).Error; err != nil {
				return err
			}
			result.Outlets++
		}
		return nil
	})
	return result, err
}

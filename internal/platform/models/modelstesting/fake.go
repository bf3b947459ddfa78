package modelstesting

import (
	"math/rand"
	"time"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FakeListing returns fixed price models.Listing with fake data.
func FakeListing(ops ...func(l *models.Listing)) models.Listing {
	listing := models.Listing{
		ItemID:        lo.ToPtr(faker.UUIDDigit()),
		Title:         "Milwaukee " + faker.Word() + " " + faker.Word(),
		Price:         decimal.NewFromInt(int64(15 + rand.Intn(200))),
		URL:           faker.URL() + "/" + faker.UUIDDigit(),
		BuyingOptions: []models.BuyingOption{models.FixedPrice},
		Condition:     lo.ToPtr(faker.Word()),
		Category:      lo.ToPtr(faker.Word()),
	}

	for _, op := range ops {
		op(&listing)
	}

	return listing
}

// FakeComp returns models.ResaleComp with fake data.
func FakeComp(ops ...func(c *models.ResaleComp)) models.ResaleComp {
	comp := models.ResaleComp{
		AvgResalePrice: decimal.NewFromInt(int64(20 + rand.Intn(300))),
		Volume30d:      1 + rand.Intn(15),
		FetchedAt:      time.Now().UTC().Truncate(time.Second),
	}

	for _, op := range ops {
		op(&comp)
	}

	return comp
}

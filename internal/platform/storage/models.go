package storage

import (
	"fmt"
	"time"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/shopspring/decimal"

	pgmodels "github.com/MichalMitros/marketguard/internal/platform/storage/gen/postgres/public/model"
)

//go:generate make -C ../../../ generate-db

// legacy cache files carry naive ISO timestamps written in UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// compEntry is serialized comp shared by the file and Redis stores.
type compEntry struct {
	AvgResalePrice float64 `json:"avg_resale_price"`
	Volume30d      int     `json:"volume_30d"`
	Timestamp      string  `json:"ts"`
}

func toEntry(comp models.ResaleComp) compEntry {
	return compEntry{
		AvgResalePrice: comp.AvgResalePrice.InexactFloat64(),
		Volume30d:      comp.Volume30d,
		Timestamp:      comp.FetchedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromEntry(entry compEntry) (*models.ResaleComp, error) {
	fetchedAt, err := parseTimestamp(entry.Timestamp)
	if err != nil {
		return nil, err
	}

	return &models.ResaleComp{
		AvgResalePrice: decimal.NewFromFloat(entry.AvgResalePrice).Round(2),
		Volume30d:      entry.Volume30d,
		FetchedAt:      fetchedAt,
	}, nil
}

func parseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("can't parse timestamp %q", ts)
}

func toDBComp(key string, comp models.ResaleComp) pgmodels.ResaleComp {
	return pgmodels.ResaleComp{
		Query:          key,
		AvgResalePrice: comp.AvgResalePrice.InexactFloat64(),
		Volume30d:      int32(comp.Volume30d),
		FetchedAt:      comp.FetchedAt.UTC(),
	}
}

func fromDBComp(comp pgmodels.ResaleComp) *models.ResaleComp {
	return &models.ResaleComp{
		AvgResalePrice: decimal.NewFromFloat(comp.AvgResalePrice).Round(2),
		Volume30d:      int(comp.Volume30d),
		FetchedAt:      comp.FetchedAt.UTC(),
	}
}

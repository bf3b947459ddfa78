package storagetesting

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	pgmodels "github.com/MichalMitros/marketguard/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/marketguard/internal/platform/storage/gen/postgres/public/table"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
)

// Open opens connection to DB. Skips the test when DATABASE_URL is not set.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	return db
}

// OpenRedis opens connection to Redis. Skips the test when REDIS_ADDR is not set.
func OpenRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("please provide redis address via REDIS_ADDR environment variable")
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("can't connect to redis at %q: %s", addr, err)
	}

	return client
}

// InsertComps is a helper test function to insert comps.
func InsertComps(t *testing.T, exc qrm.Executable, comps ...pgmodels.ResaleComp) {
	t.Helper()

	if len(comps) == 0 {
		return
	}

	toInsert := make([]pgmodels.ResaleComp, 0, len(comps))
	toInsert = append(toInsert, comps...)

	_, err := table.ResaleComp.INSERT(table.ResaleComp.AllColumns).MODELS(toInsert).Exec(exc)
	if err != nil {
		t.Fatal("can't insert comps", err)
	}
}

// GetComps is a helper test function to get all comps.
func GetComps(t *testing.T, queryable qrm.Queryable) []pgmodels.ResaleComp {
	t.Helper()

	comps := []pgmodels.ResaleComp{}
	err := table.ResaleComp.SELECT(table.ResaleComp.AllColumns).
		WHERE(table.ResaleComp.Query.IS_NOT_NULL()).
		ORDER_BY(table.ResaleComp.Query.ASC()).
		Query(queryable, &comps)
	if err != nil {
		t.Fatal("can't get comps", err)
	}

	return comps
}

// CleanupData is a helper test function to delete all comps.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.ResaleComp.DELETE().WHERE(table.ResaleComp.Query.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete comps data", err)
	}
}

// CleanupRedis is a helper test function to delete provided keys.
func CleanupRedis(t *testing.T, client *redis.Client, keys ...string) {
	t.Helper()

	if len(keys) == 0 {
		return
	}

	if err := client.Del(context.Background(), keys...).Err(); err != nil {
		t.Fatal("can't delete redis keys", err)
	}
}


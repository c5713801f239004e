package db

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/naseer2426/telegram-proxy/internal/relay"
)

// dryRunDB builds SQL against the postgres dialect without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=proxy dbname=proxy sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return database
}

func testEntry() relay.Entry {
	return relay.Entry{
		RequestID:      "req-1",
		Route:          relay.RouteSendMessage,
		ClientIP:       "8.8.8.8",
		Country:        "US",
		City:           "Mountain View",
		OS:             "Unknown OS",
		UpstreamStatus: http.StatusForbidden,
		Error:          "telegram returned non-2xx status: 403",
	}
}

func TestNewRelayLog_MapsEntry(t *testing.T) {
	row := newRelayLog(testEntry())
	if row.RequestID != "req-1" || row.Route != "sendMessage" || row.ClientIP != "8.8.8.8" {
		t.Errorf("identity fields not mapped: %+v", row)
	}
	if row.Country != "US" || row.City != "Mountain View" || row.OS != "Unknown OS" {
		t.Errorf("client fields not mapped: %+v", row)
	}
	if row.UpstreamStatus != http.StatusForbidden || row.Error == "" {
		t.Errorf("outcome fields not mapped: %+v", row)
	}
}

func TestRelayLog_InsertStatement(t *testing.T) {
	database := dryRunDB(t)

	stmt := database.Create(newRelayLog(testEntry())).Statement
	sql := stmt.SQL.String()
	if !strings.HasPrefix(sql, `INSERT INTO "relay_logs"`) {
		t.Errorf("unexpected insert statement %q", sql)
	}
	for _, col := range []string{`"request_id"`, `"client_ip"`, `"upstream_status"`, `"error"`} {
		if !strings.Contains(sql, col) {
			t.Errorf("insert statement missing column %s: %q", col, sql)
		}
	}
}

func TestStore_Record(t *testing.T) {
	store := NewStore(dryRunDB(t))
	if err := store.Record(context.Background(), testEntry()); err != nil {
		t.Errorf("Record: %v", err)
	}
}

func TestOpen_MissingDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

package services_test

import (
	"strings"
	"testing"

	"ctflab/database"
	"ctflab/logger"
	"ctflab/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type fixture struct {
	db    *gorm.DB
	store *database.Store
	log   *logger.Logger
	logs  *observer.ObservedLogs

	alice models.User
	bob   models.User

	sqli   models.Challenge // interactive_id = sqlInjection, 100 分, 2 个提示
	xss    models.Challenge // 无 interactive_id，靠旧标题匹配
	packet models.Challenge // 15 分
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", gormLogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 共享内存库，单连接避免并发写锁冲突
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.MigrateTables(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	core, logs := observer.New(zap.DebugLevel)

	f := &fixture{
		db:    db,
		store: database.NewStore(db),
		log:   logger.FromZap(zap.New(core)),
		logs:  logs,
	}

	f.alice = models.User{Username: "alice", Email: "alice@example.com", Password: "password123", Role: models.RolePlayer, Status: models.StatusActive}
	f.bob = models.User{Username: "bob", Email: "bob@example.com", Password: "password123", Role: models.RolePlayer, Status: models.StatusInactive}
	mustCreate(t, db, &f.alice)
	mustCreate(t, db, &f.bob)

	sqlKey, packetKey := "sqlInjection", "packetBasic"
	f.sqli = models.Challenge{Title: "SQL Injection Login Bypass", InteractiveID: &sqlKey, Category: "web", ScoreBase: 100, Flag: "FLAG{sql_master}", IsActive: true}
	f.xss = models.Challenge{Title: "XSS Cookie Stealer", Category: "web", ScoreBase: 50, Flag: "ctf{x}", IsActive: true}
	f.packet = models.Challenge{Title: "Packet Sniffer Basic", InteractiveID: &packetKey, Category: "network", ScoreBase: 15, Flag: "FLAG{pcap}", IsActive: true}
	mustCreate(t, db, &f.sqli)
	mustCreate(t, db, &f.xss)
	mustCreate(t, db, &f.packet)

	mustCreate(t, db, &models.Hint{ChallengeID: f.sqli.ID, Name: "Hint 1", Cost: 10, OrderIndex: 1})
	mustCreate(t, db, &models.Hint{ChallengeID: f.sqli.ID, Name: "Hint 2", Cost: 10, OrderIndex: 2})
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func (f *fixture) score(t *testing.T, userID uint32) int {
	t.Helper()
	var u models.User
	if err := f.db.First(&u, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u.Score
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) useHints(t *testing.T, userID, challengeID uint32, hintIDs ...uint32) {
	t.Helper()
	for i := range hintIDs {
		id := hintIDs[i]
		mustCreate(t, f.db, &models.UserHint{UserID: userID, ChallengeID: challengeID, HintOrdinal: i + 1, HintID: &id})
	}
}

func (f *fixture) hintIDs(t *testing.T, challengeID uint32) []uint32 {
	t.Helper()
	var ids []uint32
	if err := f.db.Model(&models.Hint{}).Where("challenge_id = ?", challengeID).Order("order_index").Pluck("hint_id", &ids).Error; err != nil {
		t.Fatalf("hint ids: %v", err)
	}
	return ids
}

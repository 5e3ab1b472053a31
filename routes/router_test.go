package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctflab/config"
	"ctflab/controllers"
	"ctflab/database"
	"ctflab/logger"
	"ctflab/models"
	"ctflab/services"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	hints  *services.HintService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", gormLogger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.MigrateTables(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlKey := "sqlInjection"
	seed := []interface{}{
		&models.User{Username: "alice", Email: "alice@example.com", Password: "password123", Role: models.RolePlayer, Status: models.StatusActive},
		&models.User{Username: "root", Email: "root@example.com", Password: "password123", Role: models.RoleAdmin, Status: models.StatusActive},
		&models.User{Username: "ghost", Email: "ghost@example.com", Password: "password123", Role: models.RolePlayer, Status: models.StatusInactive},
		&models.Challenge{Title: "SQL Injection Login Bypass", InteractiveID: &sqlKey, Category: "web", ScoreBase: 100, Flag: "FLAG{sql_master}", IsActive: true},
		&models.Challenge{Title: "Binary Crackme", Category: "reverse", ScoreBase: 200, Flag: "FLAG{crack}", IsActive: true},
	}
	for _, v := range seed {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed %T: %v", v, err)
		}
	}
	if err := db.Create(&models.Hint{ChallengeID: 1, Name: "Hint 1", Cost: 10, OrderIndex: 1}).Error; err != nil {
		t.Fatalf("seed hint: %v", err)
	}

	log := logger.Nop()
	store := database.NewStore(db)
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	board := services.NewLeaderboardService(db, nil, log)
	stats := services.NewStatsService(db, nil, log)
	hints := services.NewHintService(store, log)
	h := &controllers.Controller{
		DB:          db,
		Log:         log,
		Tokens:      tokens,
		Sessions:    services.NewSessions(store, log),
		Submissions: services.NewSubmissionService(store, log, board, stats),
		Hints:       hints,
		Leaderboard: board,
		Stats:       stats,
	}
	cfg := config.Config{LogMode: "test", CORSOrigins: []string{"http://localhost:3000"}}
	return &testApp{router: SetupRouter(cfg, h, tokens, log), db: db, hints: hints}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return env
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	env := a.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": "password123"})
	if env.Code != utils.CodeOK {
		t.Fatalf("login %s: %+v", email, env)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login payload: %s", env.Data)
	}
	return data.Token
}

func TestRouter_ChallengeFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "alice@example.com")

	env := app.do(t, http.MethodGet, "/api/v1/challenges?category=web", token, nil)
	var list struct {
		Total      int                      `json:"total"`
		Challenges []map[string]interface{} `json:"challenges"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil || list.Total != 1 {
		t.Fatalf("list: %s", env.Data)
	}
	if _, leaked := list.Challenges[0]["flag"]; leaked {
		t.Fatalf("flag leaked in list response")
	}

	env = app.do(t, http.MethodGet, "/api/v1/challenges/sql", token, nil)
	var detail struct {
		HintCount   int64 `json:"hint_count"`
		HintPenalty int   `json:"hint_penalty"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil || detail.HintCount != 1 || detail.HintPenalty != 10 {
		t.Fatalf("detail: %+v %s", env, env.Data)
	}

	env = app.do(t, http.MethodPost, "/api/v1/hints/sqlhint1/reveal", token, nil)
	if env.Code != utils.CodeOK || !strings.Contains(string(env.Data), `"needs_confirmation":true`) {
		t.Fatalf("unconfirmed reveal: %+v %s", env, env.Data)
	}
	env = app.do(t, http.MethodPost, "/api/v1/hints/sqlhint1/reveal", token, gin.H{"confirm": true})
	if !strings.Contains(string(env.Data), `"visible":true`) {
		t.Fatalf("confirmed reveal: %s", env.Data)
	}
	app.hints.Wait()

	env = app.do(t, http.MethodPost, "/api/v1/challenges/sqlInjection/submit", token, gin.H{"flag": ""})
	if env.Code != utils.CodeEmptyFlag {
		t.Fatalf("empty flag code = %d", env.Code)
	}
	env = app.do(t, http.MethodPost, "/api/v1/challenges/sqlInjection/submit", token, gin.H{"flag": "FLAG{sql_master}"})
	var result services.SubmitResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("submit payload: %s", env.Data)
	}
	if !result.Correct || result.Points != 90 || result.Score != 90 {
		t.Fatalf("submit result: %+v", result)
	}

	env = app.do(t, http.MethodPost, "/api/v1/challenges/nothing/submit", token, gin.H{"flag": "x"})
	if env.Code != utils.CodeNotFound {
		t.Fatalf("unknown challenge code = %d", env.Code)
	}

	env = app.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	if !strings.Contains(string(env.Data), `"score":90`) || !strings.Contains(string(env.Data), `"solved":1`) {
		t.Fatalf("me: %s", env.Data)
	}

	env = app.do(t, http.MethodGet, "/api/v1/leaderboard", token, nil)
	if !strings.Contains(string(env.Data), `"current_user"`) {
		t.Fatalf("leaderboard missing rank card: %s", env.Data)
	}
}

func TestRouter_AuthFailures(t *testing.T) {
	app := newTestApp(t)

	if env := app.do(t, http.MethodGet, "/api/v1/challenges", "", nil); env.Code == utils.CodeOK {
		t.Fatalf("anonymous list allowed")
	}
	env := app.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"email": "ghost@example.com", "password": "password123"})
	if env.Code != utils.CodeAccountInactive {
		t.Fatalf("inactive login code = %d", env.Code)
	}
	env = app.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	if env.Code != utils.CodeBadCredentials {
		t.Fatalf("bad password code = %d", env.Code)
	}

	token := app.login(t, "alice@example.com")
	if env := app.do(t, http.MethodPost, "/api/v1/users/logout", token, nil); env.Code != utils.CodeOK {
		t.Fatalf("logout: %+v", env)
	}
	env = app.do(t, http.MethodPost, "/api/v1/challenges/sql/submit", token, gin.H{"flag": "FLAG{sql_master}"})
	if env.Code != utils.CodeNotAuthenticated || env.Msg != "请先登录" {
		t.Fatalf("submit after logout: code=%d msg=%q", env.Code, env.Msg)
	}
}

func TestRouter_RegisterRejectsDuplicates(t *testing.T) {
	app := newTestApp(t)
	body := gin.H{"username": "newbie", "email": "newbie@example.com", "password": "password123"}
	if env := app.do(t, http.MethodPost, "/api/v1/users/register", "", body); env.Code != utils.CodeOK {
		t.Fatalf("register: %+v", env)
	}
	if env := app.do(t, http.MethodPost, "/api/v1/users/register", "", body); env.Code != utils.CodeDuplicateUser {
		t.Fatalf("duplicate code = %d", env.Code)
	}
	app.login(t, "newbie@example.com")
}

func TestRouter_AdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	player := app.login(t, "alice@example.com")
	admin := app.login(t, "root@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+player)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("player dashboard status = %d", w.Code)
	}

	env := app.do(t, http.MethodPost, "/api/v1/admin/challenges", admin, gin.H{
		"title": "RSA Small Exponent Attack", "category": "Crypto", "scoreBase": 150,
		"flag": "FLAG{ e=3 }", "interactiveId": "rsaAttack",
	})
	if env.Code != utils.CodeOK {
		t.Fatalf("create challenge: %+v", env)
	}
	var created models.Challenge
	if err := app.db.Where("title = ?", "RSA Small Exponent Attack").First(&created).Error; err != nil {
		t.Fatalf("load created: %v", err)
	}
	if created.Flag != "FLAG{ e=3 }" || created.Category != "crypto" || created.ScoreBase != 150 || created.Key() != "rsaAttack" {
		t.Fatalf("created challenge: %+v", created)
	}

	// 已登录玩家的会话应该能立刻看到新题
	env = app.do(t, http.MethodGet, "/api/v1/challenges/rsa", player, nil)
	if env.Code != utils.CodeOK {
		t.Fatalf("new challenge not visible: %+v", env)
	}

	if env := app.do(t, http.MethodPut, "/api/v1/admin/users/1/role", admin, gin.H{"role": "superuser"}); env.Code != utils.CodeInvalidParams {
		t.Fatalf("invalid role code = %d", env.Code)
	}
	if env := app.do(t, http.MethodPut, "/api/v1/admin/users/1/role", admin, gin.H{"role": "moderator"}); env.Code != utils.CodeOK {
		t.Fatalf("role update: %+v", env)
	}

	app.do(t, http.MethodPost, "/api/v1/challenges/sql/submit", player, gin.H{"flag": "nope"})
	env = app.do(t, http.MethodGet, "/api/v1/admin/submissions", admin, nil)
	if !strings.Contains(string(env.Data), `"total":1`) {
		t.Fatalf("submissions: %s", env.Data)
	}

	if env := app.do(t, http.MethodDelete, "/api/v1/admin/challenges/1", admin, nil); env.Code != utils.CodeOK {
		t.Fatalf("delete challenge: %+v", env)
	}
	var remaining int64
	app.db.Model(&models.Submission{}).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("submissions not removed with challenge: %d", remaining)
	}
	if env := app.do(t, http.MethodDelete, "/api/v1/admin/challenges/1", admin, nil); env.Code != utils.CodeNotFound {
		t.Fatalf("second delete code = %d", env.Code)
	}
}

func (a *testApp) status(t *testing.T, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_DemotedOrDeactivatedAdminLosesAccess(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "root@example.com")

	if code := app.status(t, http.MethodGet, "/api/v1/admin/dashboard", admin); code != http.StatusOK {
		t.Fatalf("admin dashboard status = %d", code)
	}

	if err := app.db.Model(&models.User{}).Where("email = ?", "root@example.com").Update("role", models.RolePlayer).Error; err != nil {
		t.Fatalf("demote: %v", err)
	}
	for _, path := range []string{"/api/v1/admin/dashboard", "/api/v1/admin/users"} {
		if code := app.status(t, http.MethodGet, path, admin); code != http.StatusForbidden {
			t.Fatalf("demoted admin %s status = %d", path, code)
		}
	}

	if err := app.db.Model(&models.User{}).Where("email = ?", "root@example.com").
		Updates(map[string]interface{}{"role": models.RoleAdmin, "status": models.StatusInactive}).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if code := app.status(t, http.MethodGet, "/api/v1/admin/dashboard", admin); code != http.StatusForbidden {
		t.Fatalf("inactive admin dashboard status = %d", code)
	}
}

func TestRouter_DeleteChallengeKeepsScoreEqualToSubmissionPoints(t *testing.T) {
	app := newTestApp(t)
	player := app.login(t, "alice@example.com")
	admin := app.login(t, "root@example.com")

	for _, s := range []struct{ alias, flag string }{
		{"sql", "FLAG{sql_master}"},
		{"crackme", "FLAG{crack}"},
	} {
		env := app.do(t, http.MethodPost, "/api/v1/challenges/"+s.alias+"/submit", player, gin.H{"flag": s.flag})
		if env.Code != utils.CodeOK {
			t.Fatalf("submit %s: %+v", s.alias, env)
		}
	}

	if env := app.do(t, http.MethodDelete, "/api/v1/admin/challenges/1", admin, nil); env.Code != utils.CodeOK {
		t.Fatalf("delete challenge: %+v", env)
	}

	var alice models.User
	if err := app.db.Where("email = ?", "alice@example.com").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}
	var sum int64
	if err := app.db.Model(&models.Submission{}).Where("user_id = ?", alice.ID).
		Select("COALESCE(SUM(points), 0)").Scan(&sum).Error; err != nil {
		t.Fatalf("sum: %v", err)
	}
	if alice.Score != 200 || int64(alice.Score) != sum {
		t.Fatalf("score=%d sum(points)=%d, want 200/200", alice.Score, sum)
	}

	env := app.do(t, http.MethodGet, "/api/v1/users/me", player, nil)
	if !strings.Contains(string(env.Data), `"score":200`) {
		t.Fatalf("session score not refreshed: %s", env.Data)
	}
}

func TestRouter_DeletedUserSessionIsClosed(t *testing.T) {
	app := newTestApp(t)
	player := app.login(t, "alice@example.com")
	admin := app.login(t, "root@example.com")

	if env := app.do(t, http.MethodDelete, "/api/v1/admin/users/1", admin, nil); env.Code != utils.CodeOK {
		t.Fatalf("delete user: %+v", env)
	}
	env := app.do(t, http.MethodGet, "/api/v1/challenges", player, nil)
	if env.Code != utils.CodeNotAuthenticated {
		t.Fatalf("deleted user list code = %d", env.Code)
	}
}

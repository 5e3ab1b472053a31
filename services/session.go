// file: services/session.go
package services

import (
	"context"
	"sync"
	"time"

	"ctflab/logger"
	"ctflab/models"
)

// Session 替代前端的全局变量：当前用户、题目缓存、解题进度、已展开的提示。
// 同一会话内的操作由 mu 串行化。
type Session struct {
	ID string

	mu         sync.Mutex
	user       *models.User
	challenges []models.Challenge
	progress   map[uint32]bool
	revealed   map[string]bool
}

// NewSession 供测试和内部使用，user 可为 nil（未登录）
func NewSession(id string, user *models.User, challenges []models.Challenge, solved []uint32) *Session {
	progress := make(map[uint32]bool, len(solved))
	for _, id := range solved {
		progress[id] = true
	}
	return &Session{
		ID:         id,
		user:       user,
		challenges: challenges,
		progress:   progress,
		revealed:   make(map[string]bool),
	}
}

// User 返回用户副本
func (s *Session) User() (models.User, bool) {
	if s == nil {
		return models.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Solved(challengeID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress[challengeID]
}

// Challenges 返回题目缓存副本
func (s *Session) Challenges() []models.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Challenge, len(s.challenges))
	copy(out, s.challenges)
	return out
}

func (s *Session) Challenge(ref string) (models.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := FindChallenge(s.challenges, ref)
	if !ok {
		return models.Challenge{}, false
	}
	return *ch, true
}

func (s *Session) authenticated() bool {
	return s != nil && s.user != nil
}

// Sessions 进程内会话表，key 为 JWT 的 jti
type Sessions struct {
	gw  Gateway
	log *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	revoked  map[string]time.Time // session id -> token 过期时间
}

// revokedFallbackTTL 拿不到 token 过期时间时保留吊销记录的时长
const revokedFallbackTTL = 7 * 24 * time.Hour

func NewSessions(gw Gateway, log *logger.Logger) *Sessions {
	return &Sessions{
		gw:       gw,
		log:      log.With("service", "Sessions"),
		sessions: make(map[string]*Session),
		revoked:  make(map[string]time.Time),
	}
}

// Open 登录后建立会话并从数据库加载用户、题目和解题进度
func (m *Sessions) Open(ctx context.Context, sessionID, email string) (*Session, error) {
	user, err := m.gw.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, persistErr("load user", err)
	}
	if user == nil || user.Status != models.StatusActive {
		return nil, ErrNotAuthenticated
	}
	challenges, err := m.gw.ListChallenges(ctx)
	if err != nil {
		return nil, persistErr("load challenges", err)
	}
	solved, err := m.gw.SolvedChallengeIDs(ctx, user.ID)
	if err != nil {
		return nil, persistErr("load progress", err)
	}

	sess := NewSession(sessionID, user, challenges, solved)
	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	m.log.Debug("session opened", "session_id", sessionID, "user_id", user.ID, "solved", len(solved))
	return sess, nil
}

// Get 取已有会话；进程重启后第一次访问时重新加载
func (m *Sessions) Get(ctx context.Context, sessionID, email string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	_, revoked := m.revoked[sessionID]
	m.mu.RUnlock()
	if revoked || sessionID == "" {
		return nil, ErrNotAuthenticated
	}
	if ok {
		return sess, nil
	}
	return m.Open(ctx, sessionID, email)
}

// Close 登出时丢弃会话，token 过期前同一 session id 不再重建
func (m *Sessions) Close(sessionID string, expiresAt time.Time) {
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(revokedFallbackTTL)
	}
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.revoked[sessionID] = expiresAt
	m.mu.Unlock()
}

// CloseUser 丢弃某个用户的所有会话（账号被删除时）
func (m *Sessions) CloseUser(userID uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	closed := 0
	for id, sess := range m.sessions {
		if u, ok := sess.User(); ok && u.ID == userID {
			delete(m.sessions, id)
			m.revoked[id] = time.Now().Add(revokedFallbackTTL)
			closed++
		}
	}
	return closed
}

// PruneRevoked 清理已过期 token 的吊销记录，过期 token 本身已无法通过校验
func (m *Sessions) PruneRevoked(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for id, exp := range m.revoked {
		if !now.Before(exp) {
			delete(m.revoked, id)
			pruned++
		}
	}
	return pruned
}

func (m *Sessions) RevokedLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.revoked)
}

// Reload 重新加载所有会话的题目缓存和用户镜像，管理员修改题目或用户后调用。
// 用户被删除或停用时会话直接丢弃。
func (m *Sessions) Reload(ctx context.Context) error {
	challenges, err := m.gw.ListChallenges(ctx)
	if err != nil {
		return persistErr("load challenges", err)
	}

	m.mu.RLock()
	open := make(map[string]*Session, len(m.sessions))
	for id, sess := range m.sessions {
		open[id] = sess
	}
	m.mu.RUnlock()

	for id, sess := range open {
		current, ok := sess.User()
		if !ok {
			continue
		}
		user, err := m.gw.FindUserByEmail(ctx, current.Email)
		if err != nil {
			return persistErr("reload user", err)
		}
		if user == nil || user.Status != models.StatusActive {
			m.mu.Lock()
			delete(m.sessions, id)
			m.mu.Unlock()
			m.log.Debug("session dropped on reload", "session_id", id, "user_id", current.ID)
			continue
		}
		sess.mu.Lock()
		sess.challenges = challenges
		sess.user = user
		sess.mu.Unlock()
	}
	return nil
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bizdesk/internal/data/entity"
	"bizdesk/internal/data/repository"
	"bizdesk/pkg/notify"
	"bizdesk/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeDB backs every fake repository so joins behave like the real schema.
type fakeDB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*entity.User
	sessions    map[string]*entity.Session
	creds       map[uuid.UUID]map[entity.UserRole]*entity.AdminCredential
	roleChanges []*entity.RoleChange
	companies   map[uuid.UUID]*entity.Company
	invitations map[string]*entity.Invitation
	complaints  map[uuid.UUID]*entity.Complaint

	sessionLookups int
	lookupErr      error
	roleChangeErr  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:       map[uuid.UUID]*entity.User{},
		sessions:    map[string]*entity.Session{},
		creds:       map[uuid.UUID]map[entity.UserRole]*entity.AdminCredential{},
		companies:   map[uuid.UUID]*entity.Company{},
		invitations: map[string]*entity.Invitation{},
		complaints:  map[uuid.UUID]*entity.Complaint{},
	}
}

func (db *fakeDB) repository() *repository.Repository {
	return &repository.Repository{
		User:            &fakeUserRepo{db},
		Session:         &fakeSessionRepo{db},
		OTP:             nil,
		AdminCredential: &fakeCredRepo{db},
		RoleChange:      &fakeRoleChangeRepo{db},
		Company:         &fakeCompanyRepo{db},
		Invitation:      &fakeInvitationRepo{db},
		Complaint:       &fakeComplaintRepo{db},
	}
}

func (db *fakeDB) addUser(u *entity.User) *entity.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	db.users[u.ID] = &cp
	return u
}

func (db *fakeDB) user(id uuid.UUID) *entity.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// ==================== users ====================

type fakeUserRepo struct{ db *fakeDB }

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) findBy(match func(*entity.User) bool) *entity.User {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return u.Email == email }), nil
}

func (r *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return u.Phone != nil && *u.Phone == phone }), nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var all []*entity.User
	for _, u := range r.db.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	role, company := stored.Role, stored.CompanyID
	cp := *user
	cp.Role, cp.CompanyID = role, company
	r.db.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ChangeRole(_ context.Context, change *entity.RoleChange, companyID *uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.applyRoleChange(change, companyID)
}

// applyRoleChange mirrors the repository transaction. Callers hold mu.
func (db *fakeDB) applyRoleChange(change *entity.RoleChange, companyID *uuid.UUID) error {
	if db.roleChangeErr != nil {
		return db.roleChangeErr
	}
	u, ok := db.users[change.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = change.NewRole
	if companyID != nil {
		u.CompanyID = companyID
	}
	for role := range db.creds[change.UserID] {
		if role != change.NewRole {
			delete(db.creds[change.UserID], role)
		}
	}
	db.roleChanges = append(db.roleChanges, change)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.creds, id)
	for tok, s := range r.db.sessions {
		if s.UserID == id {
			delete(r.db.sessions, tok)
		}
	}
	return nil
}

// ==================== sessions ====================

type fakeSessionRepo struct{ db *fakeDB }

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *s
	r.db.sessions[s.Token] = &cp
	return nil
}

func (r *fakeSessionRepo) FindWithUser(_ context.Context, token string) (*entity.SessionWithUser, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessionLookups++
	if r.db.lookupErr != nil {
		return nil, r.db.lookupErr
	}
	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	u, ok := r.db.users[s.UserID]
	if !ok {
		return nil, nil
	}
	found := &entity.SessionWithUser{Session: *s, User: *u}
	if u.CompanyID != nil {
		if c, ok := r.db.companies[*u.CompanyID]; ok {
			name := c.Name
			found.CompanyName = &name
		}
	}
	return found, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.sessions[token]
	delete(r.db.sessions, token)
	return ok, nil
}

func (r *fakeSessionRepo) deleteWhere(match func(*entity.Session) bool) int64 {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for tok, s := range r.db.sessions {
		if match(s) {
			delete(r.db.sessions, tok)
			n++
		}
	}
	return n
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(s *entity.Session) bool { return s.UserID == userID }), nil
}

func (r *fakeSessionRepo) DeleteByUserIDExcept(_ context.Context, userID uuid.UUID, keep string) (int64, error) {
	return r.deleteWhere(func(s *entity.Session) bool { return s.UserID == userID && s.Token != keep }), nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(s *entity.Session) bool { return s.Expired(now) }), nil
}

// ==================== admin credentials ====================

type fakeCredRepo struct{ db *fakeDB }

func (r *fakeCredRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.AdminCredential, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.AdminCredential
	for _, c := range r.db.creds[userID] {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (r *fakeCredRepo) FindByUserAndRole(_ context.Context, userID uuid.UUID, role entity.UserRole) (*entity.AdminCredential, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.creds[userID][role]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCredRepo) Upsert(_ context.Context, cred *entity.AdminCredential) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.creds[cred.UserID] == nil {
		r.db.creds[cred.UserID] = map[entity.UserRole]*entity.AdminCredential{}
	}
	cp := *cred
	r.db.creds[cred.UserID][cred.Role] = &cp
	return nil
}

type fakeRoleChangeRepo struct{ db *fakeDB }

func (r *fakeRoleChangeRepo) FindByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.RoleChange, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.RoleChange
	for i := len(r.db.roleChanges) - 1; i >= 0 && len(out) < limit; i-- {
		if r.db.roleChanges[i].UserID == userID {
			out = append(out, r.db.roleChanges[i])
		}
	}
	return out, nil
}

// ==================== companies & invitations ====================

type fakeCompanyRepo struct{ db *fakeDB }

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.companies {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	cp := *c
	r.db.companies[c.ID] = &cp
	if u, ok := r.db.users[c.OwnerID]; ok {
		id := c.ID
		u.CompanyID = &id
	}
	return nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type fakeInvitationRepo struct{ db *fakeDB }

func (r *fakeInvitationRepo) Create(_ context.Context, inv *entity.Invitation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *inv
	r.db.invitations[inv.Token] = &cp
	return nil
}

func (r *fakeInvitationRepo) FindByToken(_ context.Context, token string) (*entity.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	inv, ok := r.db.invitations[token]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvitationRepo) FindPendingByEmail(_ context.Context, email string, now time.Time) (*entity.Invitation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, inv := range r.db.invitations {
		if inv.Email == email && inv.Status == entity.InvitationPending && !inv.Expired(now) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepo) Accept(_ context.Context, acc *entity.InvitationAcceptance) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var inv *entity.Invitation
	for _, candidate := range r.db.invitations {
		if candidate.ID == acc.InvitationID && candidate.Status == entity.InvitationPending {
			inv = candidate
		}
	}
	if inv == nil {
		return repository.ErrNotFound
	}

	if acc.NewUser != nil {
		for _, u := range r.db.users {
			if u.Email == acc.NewUser.Email {
				return repository.ErrDuplicate
			}
		}
	}
	if acc.Change != nil && r.db.roleChangeErr != nil {
		return r.db.roleChangeErr
	}

	if acc.NewUser != nil {
		cp := *acc.NewUser
		r.db.users[cp.ID] = &cp
	}
	if acc.Change != nil {
		if err := r.db.applyRoleChange(acc.Change, acc.CompanyID); err != nil {
			return err
		}
	}
	at := acc.AcceptedAt
	inv.Status = entity.InvitationAccepted
	inv.AcceptedAt = &at
	return nil
}

// ==================== complaints ====================

type fakeComplaintRepo struct{ db *fakeDB }

func (r *fakeComplaintRepo) Create(_ context.Context, c *entity.Complaint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *c
	r.db.complaints[c.ID] = &cp
	return nil
}

func (r *fakeComplaintRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Complaint, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.complaints[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeComplaintRepo) filter(match func(*entity.Complaint) bool, limit, offset int) []*entity.Complaint {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Complaint
	for _, c := range r.db.complaints {
		if match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil
	}
	if end := offset + limit; end < len(out) {
		out = out[:end]
	}
	return out[offset:]
}

func (r *fakeComplaintRepo) FindByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Complaint, error) {
	return r.filter(func(c *entity.Complaint) bool { return c.UserID == userID }, limit, offset), nil
}

func (r *fakeComplaintRepo) FindByCompany(_ context.Context, companyID *uuid.UUID, limit, offset int) ([]*entity.Complaint, error) {
	return r.filter(func(c *entity.Complaint) bool {
		return companyID == nil || (c.CompanyID != nil && *c.CompanyID == *companyID)
	}, limit, offset), nil
}

func (r *fakeComplaintRepo) UpdateStatus(_ context.Context, c *entity.Complaint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.complaints[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.db.complaints[c.ID] = &cp
	return nil
}

// ==================== notifier ====================

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return notify.ErrDeliveryFailed
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) last() notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notify.Message{}
	}
	return n.sent[len(n.sent)-1]
}

// ==================== codes ====================

// codeSequence hands out predictable OTP codes.
type codeSequence struct {
	mu    sync.Mutex
	codes []string
}

func (s *codeSequence) next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return "", errors.New("no more codes")
	}
	c := s.codes[0]
	s.codes = s.codes[1:]
	return c, nil
}

func newTestCache(codes ...string) *otp.Cache {
	seq := &codeSequence{codes: codes}
	return otp.NewCache(otp.NewMemoryStore(time.Now), otp.DefaultTTL, zap.NewNop(), otp.WithGenerator(seq.next))
}

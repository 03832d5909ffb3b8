package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/types"
)

var testNow = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

type fakeTx struct{ calls int }

func (f *fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type fakeCompanyRepo struct {
	companies map[uint64]*entities.Company
	nextID    uint64
}

func newFakeCompanyRepo(companies ...entities.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[uint64]*entities.Company{}, nextID: 100}
	for i := range companies {
		c := companies[i]
		r.companies[c.ID] = &c
	}
	return r
}

func (r *fakeCompanyRepo) GetCompanies(_ context.Context, _ types.Filter) ([]entities.CompanyWithCount, uint64, error) {
	list, _ := r.ListAll(context.Background())
	out := make([]entities.CompanyWithCount, 0, len(list))
	for _, c := range list {
		out = append(out, entities.CompanyWithCount{Company: c})
	}
	return out, uint64(len(out)), nil
}

func (r *fakeCompanyRepo) ListAll(_ context.Context) ([]entities.Company, error) {
	out := make([]entities.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompanyRepo) FindCompany(_ context.Context, id uint64) (*entities.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) CreateCompany(_ context.Context, _ pgx.Tx, c entities.Company) (uint64, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt, c.UpdatedAt = testNow, testNow
	r.companies[c.ID] = &c
	return c.ID, nil
}

func (r *fakeCompanyRepo) UpdateCompany(_ context.Context, _ pgx.Tx, id uint64, changes map[string]interface{}) error {
	c, ok := r.companies[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for k, v := range changes {
		switch k {
		case "name":
			c.Name = v.(string)
		case "status":
			c.Status = v.(string)
		case "industry":
			if v == nil {
				c.Industry = nil
			} else {
				s := v.(string)
				c.Industry = &s
			}
		}
	}
	return nil
}

func (r *fakeCompanyRepo) UpdateFallbackOrder(_ context.Context, id uint64, order []string) error {
	c, ok := r.companies[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if len(order) == 0 {
		order = nil
	}
	c.FallbackOrder = order
	return nil
}

func (r *fakeCompanyRepo) ExistsByName(_ context.Context, name string, excludeID uint64) (bool, error) {
	for _, c := range r.companies {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmployeeRepo struct {
	employees map[uint64]*entities.Employee
	nextID    uint64
	failOn    map[uint64]error
}

func newFakeEmployeeRepo(employees ...entities.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{employees: map[uint64]*entities.Employee{}, nextID: 1000, failOn: map[uint64]error{}}
	for i := range employees {
		e := employees[i]
		r.employees[e.ID] = &e
	}
	return r
}

func (r *fakeEmployeeRepo) sorted() []entities.Employee {
	out := make([]entities.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeEmployeeRepo) GetEmployees(_ context.Context, _ types.Filter) ([]entities.Employee, uint64, error) {
	out := r.sorted()
	return out, uint64(len(out)), nil
}

func (r *fakeEmployeeRepo) FindEmployee(_ context.Context, id uint64) (*entities.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEmployeeRepo) FindByAuthUserID(_ context.Context, id uuid.UUID) (*entities.Employee, error) {
	for _, e := range r.sorted() {
		if e.AuthUserID != nil && *e.AuthUserID == id {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeEmployeeRepo) CreateEmployee(_ context.Context, _ pgx.Tx, e entities.Employee) (uint64, error) {
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt, e.UpdatedAt = testNow, testNow
	r.employees[e.ID] = &e
	return e.ID, nil
}

func strPtr(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := v.(string)
	return &s
}

func (r *fakeEmployeeRepo) UpdateEmployee(_ context.Context, _ pgx.Tx, id uint64, changes map[string]interface{}) error {
	if err := r.failOn[id]; err != nil {
		return err
	}
	e, ok := r.employees[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for k, v := range changes {
		switch k {
		case "company_id":
			e.CompanyID = v.(uint64)
		case "full_name":
			e.FullName = v.(string)
		case "email":
			e.Email = strPtr(v)
		case "department":
			e.Department = strPtr(v)
		case "position":
			e.Position = strPtr(v)
		case "phone":
			e.Phone = strPtr(v)
		case "telegram_handle":
			e.TelegramHandle = strPtr(v)
		case "legacy_attributes":
			e.LegacyAttributes = strPtr(v)
		case "email_subscribed":
			e.EmailSubscribed = v.(bool)
		case "auth_user_id":
			e.AuthUserID = nil
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) SetActive(_ context.Context, id uint64, active bool) error {
	e, ok := r.employees[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.IsActive = active
	return nil
}

func (r *fakeEmployeeRepo) CountByCompany(_ context.Context, activeOnly bool) (map[uint64]int64, error) {
	counts := map[uint64]int64{}
	for _, e := range r.employees {
		if activeOnly && !e.IsActive {
			continue
		}
		counts[e.CompanyID]++
	}
	return counts, nil
}

func (r *fakeEmployeeRepo) CountForCompany(ctx context.Context, companyID uint64, activeOnly bool) (int64, error) {
	counts, _ := r.CountByCompany(ctx, activeOnly)
	return counts[companyID], nil
}

func (r *fakeEmployeeRepo) ListWithLegacyAttributes(_ context.Context, limit uint64) ([]entities.Employee, error) {
	out := make([]entities.Employee, 0)
	for _, e := range r.sorted() {
		if e.LegacyAttributes == nil {
			continue
		}
		if uint64(len(out)) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeCommRepo struct {
	logs   map[uint64]*entities.CommunicationLog
	nextID uint64
	counts []entities.StatusCounts
	calls  int

	// onCounts вызывается внутри StatusCounts, до возврата результата.
	onCounts func()
}

func newFakeCommRepo() *fakeCommRepo {
	return &fakeCommRepo{logs: map[uint64]*entities.CommunicationLog{}}
}

func (r *fakeCommRepo) Create(_ context.Context, l entities.CommunicationLog) (uint64, error) {
	r.nextID++
	l.ID = r.nextID
	r.logs[l.ID] = &l
	return l.ID, nil
}

func (r *fakeCommRepo) Find(_ context.Context, id uint64) (*entities.CommunicationLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeCommRepo) UpdateStatus(_ context.Context, id uint64, status string, at time.Time, scheduledAt *time.Time) error {
	l, ok := r.logs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.Status = status
	switch status {
	case entities.MessageStatusRead:
		l.ReadAt = &at
		if l.SentAt == nil {
			l.SentAt = &at
		}
	case entities.MessageStatusSent:
		l.SentAt = &at
		l.ReadAt = nil
	case entities.MessageStatusScheduled:
		if scheduledAt == nil {
			return apperrors.NewValidationError("scheduled_at")
		}
		l.ScheduledAt = scheduledAt
		l.SentAt, l.ReadAt = nil, nil
	default:
		l.ScheduledAt = nil
		l.SentAt, l.ReadAt = nil, nil
	}
	return nil
}

func (r *fakeCommRepo) List(_ context.Context, _ types.Filter) ([]entities.CommunicationLog, uint64, error) {
	out := make([]entities.CommunicationLog, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (r *fakeCommRepo) StatusCounts(_ context.Context, _ *uint64) ([]entities.StatusCounts, error) {
	r.calls++
	if r.onCounts != nil {
		r.onCounts()
	}
	return r.counts, nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

var _ repositories.CacheRepositoryInterface = (*fakeCache)(nil)

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	c.ttls[key] = expiration
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		delete(c.ttls, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.values[key], 10, 64)
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls[key] = expiration
	return true, nil
}

func (c *fakeCache) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *fakePublisher) Publish(_ context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name())
	}
	return out
}

type recordingDispatcher struct {
	sent []entities.CommunicationLog
}

func (d *recordingDispatcher) Dispatch(_ context.Context, l entities.CommunicationLog) error {
	d.sent = append(d.sent, l)
	return nil
}

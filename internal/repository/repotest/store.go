// Package repotest provides an in-memory repository.Store for service tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	errCheckViolation  = errors.New("repotest: pending_value must not be negative")
	errUniqueViolation = errors.New("repotest: duplicate checklist for project")
)

type state struct {
	users       []repository.User
	leads       []repository.Lead
	activities  []repository.LeadActivity
	projects    []repository.Project
	statusLogs  []repository.StatusLog
	checklists  []repository.Checklist
	payments    []repository.Payment
	cashEntries []repository.CashEntry
	stockItems  []repository.StockItem
	suggestions []repository.Suggestion
	credentials []repository.Credential
	contacts    []repository.Contact
	materials   []repository.Material
	companyInfo *repository.CompanyInfo
	resets      []repository.PasswordReset
}

func (s *state) clone() *state {
	return &state{
		users:       append([]repository.User(nil), s.users...),
		leads:       append([]repository.Lead(nil), s.leads...),
		activities:  append([]repository.LeadActivity(nil), s.activities...),
		projects:    append([]repository.Project(nil), s.projects...),
		statusLogs:  append([]repository.StatusLog(nil), s.statusLogs...),
		checklists:  append([]repository.Checklist(nil), s.checklists...),
		payments:    append([]repository.Payment(nil), s.payments...),
		cashEntries: append([]repository.CashEntry(nil), s.cashEntries...),
		stockItems:  append([]repository.StockItem(nil), s.stockItems...),
		suggestions: append([]repository.Suggestion(nil), s.suggestions...),
		credentials: append([]repository.Credential(nil), s.credentials...),
		contacts:    append([]repository.Contact(nil), s.contacts...),
		materials:   append([]repository.Material(nil), s.materials...),
		companyInfo: s.companyInfo,
		resets:      append([]repository.PasswordReset(nil), s.resets...),
	}
}

// Store is an in-memory repository.Store. Transactions snapshot the whole
// state and restore it when the callback fails.
type Store struct {
	mu   *sync.Mutex
	data **state
	inTx bool
	seq  *int64

	// Fail, when set, is consulted before every write with the operation
	// name ("projects.AddStatusLog", "payments.Create", ...).
	Fail func(op string) error
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	st := &state{}
	var seq int64
	return &Store{mu: &sync.Mutex{}, data: &st, seq: &seq}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	snapshot := (*s.data).clone()
	s.mu.Unlock()

	tx := &Store{mu: s.mu, data: s.data, inTx: true, seq: s.seq, Fail: s.Fail}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		*s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op)
}

// stamp returns strictly increasing timestamps so ordering is deterministic.
func (s *Store) stamp() time.Time {
	*s.seq++
	return time.Now().Add(time.Duration(*s.seq) * time.Microsecond)
}

func (s *Store) st() *state { return *s.data }

func (s *Store) Users() repository.UserRepository              { return &userRepo{s} }
func (s *Store) Leads() repository.LeadRepository              { return &leadRepo{s} }
func (s *Store) Projects() repository.ProjectRepository        { return &projectRepo{s} }
func (s *Store) Payments() repository.PaymentRepository        { return &paymentRepo{s} }
func (s *Store) CashEntries() repository.CashEntryRepository   { return &cashRepo{s} }
func (s *Store) StockItems() repository.StockItemRepository    { return &stockRepo{s} }
func (s *Store) Suggestions() repository.SuggestionRepository  { return &suggestionRepo{s} }
func (s *Store) Credentials() repository.CredentialRepository  { return &credentialRepo{s} }
func (s *Store) Contacts() repository.ContactRepository        { return &contactRepo{s} }
func (s *Store) CompanyInfo() repository.CompanyInfoRepository { return &companyInfoRepo{s} }
func (s *Store) PasswordResets() repository.PasswordResetRepository {
	return &resetRepo{s}
}

// Snapshot accessors for assertions.

func (s *Store) AllLeads() []repository.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Lead(nil), s.st().leads...)
}

func (s *Store) AllProjects() []repository.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Project(nil), s.st().projects...)
}

func (s *Store) AllPayments() []repository.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Payment(nil), s.st().payments...)
}

func (s *Store) AllStatusLogs() []repository.StatusLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.StatusLog(nil), s.st().statusLogs...)
}

func (s *Store) AllActivities() []repository.LeadActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.LeadActivity(nil), s.st().activities...)
}

func (s *Store) AllMaterials() []repository.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Material(nil), s.st().materials...)
}

func (s *Store) AllPasswordResets() []repository.PasswordReset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.PasswordReset(nil), s.st().resets...)
}

func (s *Store) AllChecklists() []repository.Checklist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.Checklist(nil), s.st().checklists...)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ---- users

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *repository.User) error {
	if err := r.s.fail("users.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	r.s.st().users = append(r.s.st().users, *user)
	return nil
}

func (r *userRepo) find(match func(*repository.User) bool) *repository.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().users {
		if match(&r.s.st().users[i]) {
			u := r.s.st().users[i]
			return &u
		}
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	return r.find(func(u *repository.User) bool { return u.ID == id }), nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return r.find(func(u *repository.User) bool { return u.Email == strings.ToLower(email) }), nil
}

func (r *userRepo) List(ctx context.Context) ([]*repository.User, error) {
	return r.ListByRoles(ctx, types.AllRoles)
}

func (r *userRepo) ListByRoles(ctx context.Context, roles []types.Role) ([]*repository.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.User
	for _, u := range r.s.st().users {
		if types.HasRole(u.Role, roles...) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, user *repository.User) error {
	if err := r.s.fail("users.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().users {
		if r.s.st().users[i].ID == user.ID {
			user.UpdatedAt = r.s.stamp()
			r.s.st().users[i] = *user
		}
	}
	return nil
}

// ---- leads

type leadRepo struct{ s *Store }

func (r *leadRepo) Create(ctx context.Context, lead *repository.Lead) error {
	if err := r.s.fail("leads.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	lead.UpdatedBy = lead.CreatedBy
	lead.CreatedAt = r.s.stamp()
	lead.UpdatedAt = lead.CreatedAt
	r.s.st().leads = append(r.s.st().leads, *lead)
	return nil
}

func (r *leadRepo) find(match func(*repository.Lead) bool) *repository.Lead {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().leads {
		if match(&r.s.st().leads[i]) {
			l := r.s.st().leads[i]
			return &l
		}
	}
	return nil
}

func (r *leadRepo) FindByID(ctx context.Context, id string) (*repository.Lead, error) {
	return r.find(func(l *repository.Lead) bool { return l.ID == id }), nil
}

func (r *leadRepo) FindByNameKey(ctx context.Context, key string) (*repository.Lead, error) {
	return r.find(func(l *repository.Lead) bool { return l.NameKey == key }), nil
}

func (r *leadRepo) List(ctx context.Context, filter repository.LeadFilter) ([]*repository.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Lead
	for _, l := range r.s.st().leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Channel != "" && l.Channel != filter.Channel {
			continue
		}
		if q := strings.TrimSpace(filter.Search); q != "" && !containsFold(l.Name, q) && !strings.Contains(l.Phone, q) {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *leadRepo) Update(ctx context.Context, lead *repository.Lead) error {
	if err := r.s.fail("leads.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().leads {
		if r.s.st().leads[i].ID == lead.ID {
			lead.UpdatedAt = r.s.stamp()
			r.s.st().leads[i] = *lead
		}
	}
	return nil
}

func (r *leadRepo) Delete(ctx context.Context, id string) error {
	if err := r.s.fail("leads.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.st()

	removed := map[string]bool{}
	projects := st.projects[:0:0]
	for _, p := range st.projects {
		if p.LeadID != nil && *p.LeadID == id {
			removed[p.ID] = true
			continue
		}
		projects = append(projects, p)
	}
	st.projects = projects

	leads := st.leads[:0:0]
	for _, l := range st.leads {
		if l.ID != id {
			leads = append(leads, l)
		}
	}
	st.leads = leads

	activities := st.activities[:0:0]
	for _, a := range st.activities {
		if a.LeadID != id {
			activities = append(activities, a)
		}
	}
	st.activities = activities

	payments := st.payments[:0:0]
	for _, p := range st.payments {
		if !removed[p.ProjectID] {
			payments = append(payments, p)
		}
	}
	st.payments = payments

	logs := st.statusLogs[:0:0]
	for _, l := range st.statusLogs {
		if !removed[l.ProjectID] {
			logs = append(logs, l)
		}
	}
	st.statusLogs = logs

	checklists := st.checklists[:0:0]
	for _, c := range st.checklists {
		if !removed[c.ProjectID] {
			checklists = append(checklists, c)
		}
	}
	st.checklists = checklists

	materials := st.materials[:0:0]
	for _, m := range st.materials {
		if !removed[m.ProjectID] {
			materials = append(materials, m)
		}
	}
	st.materials = materials
	return nil
}

func (r *leadRepo) AddActivity(ctx context.Context, activity *repository.LeadActivity) error {
	if err := r.s.fail("leads.AddActivity"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.CreatedAt = r.s.stamp()
	r.s.st().activities = append(r.s.st().activities, *activity)
	return nil
}

func (r *leadRepo) ListActivities(ctx context.Context, leadID string) ([]*repository.LeadActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.LeadActivity
	for i := len(r.s.st().activities) - 1; i >= 0; i-- {
		a := r.s.st().activities[i]
		if a.LeadID == leadID {
			out = append(out, &a)
		}
	}
	return out, nil
}

// ---- projects

type projectRepo struct{ s *Store }

func (r *projectRepo) withLeadName(p repository.Project) *repository.Project {
	p.LeadName = nil
	if p.LeadID != nil {
		for _, l := range r.s.st().leads {
			if l.ID == *p.LeadID {
				name := l.Name
				p.LeadName = &name
			}
		}
	}
	return &p
}

func (r *projectRepo) Create(ctx context.Context, project *repository.Project) error {
	if err := r.s.fail("projects.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.ProductionStatus == "" {
		project.ProductionStatus = types.StatusAwaitingFiles
	}
	if project.PendingValue.IsNegative() {
		return errCheckViolation
	}
	project.UpdatedBy = project.CreatedBy
	project.CreatedAt = r.s.stamp()
	project.UpdatedAt = project.CreatedAt
	r.s.st().projects = append(r.s.st().projects, *project)
	return nil
}

func (r *projectRepo) find(match func(*repository.Project) bool) *repository.Project {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().projects {
		if match(&r.s.st().projects[i]) {
			return r.withLeadName(r.s.st().projects[i])
		}
	}
	return nil
}

func (r *projectRepo) leadKey(leadID *string) string {
	if leadID == nil {
		return ""
	}
	for _, l := range r.s.st().leads {
		if l.ID == *leadID {
			return l.NameKey
		}
	}
	return ""
}

func (r *projectRepo) FindByID(ctx context.Context, id string) (*repository.Project, error) {
	return r.find(func(p *repository.Project) bool { return p.ID == id }), nil
}

func (r *projectRepo) FindByIDForUpdate(ctx context.Context, id string) (*repository.Project, error) {
	return r.FindByID(ctx, id)
}

func (r *projectRepo) FindByLeadAndName(ctx context.Context, leadID, name string) (*repository.Project, error) {
	return r.find(func(p *repository.Project) bool {
		return p.LeadID != nil && *p.LeadID == leadID && strings.EqualFold(p.Name, name)
	}), nil
}

func (r *projectRepo) FindByLeadKeyAndNameContains(ctx context.Context, leadKey, fragment string) (*repository.Project, error) {
	return r.find(func(p *repository.Project) bool {
		return r.leadKey(p.LeadID) == leadKey && containsFold(p.Name, fragment)
	}), nil
}

func (r *projectRepo) List(ctx context.Context, filter repository.ProjectFilter) ([]*repository.Project, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Project
	for _, p := range r.s.st().projects {
		full := r.withLeadName(p)
		if filter.LeadID != "" && (p.LeadID == nil || *p.LeadID != filter.LeadID) {
			continue
		}
		if filter.Status != "" && p.ProductionStatus != filter.Status {
			continue
		}
		if q := strings.TrimSpace(filter.Search); q != "" {
			leadMatch := full.LeadName != nil && containsFold(*full.LeadName, q)
			if !containsFold(p.Name, q) && !leadMatch {
				continue
			}
		}
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && p.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, full)
	}
	switch filter.Order {
	case repository.OrderByName:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case repository.OrderByValue:
		sort.Slice(out, func(i, j int) bool { return out[i].TotalValue.GreaterThan(out[j].TotalValue) })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	}
	total := len(out)
	if filter.Limit <= 0 || filter.Page < 1 {
		return out, total, nil
	}
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (r *projectRepo) ListByStatus(ctx context.Context, status types.ProductionStatus) ([]*repository.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Project
	for _, p := range r.s.st().projects {
		if status == "" || p.ProductionStatus == status {
			out = append(out, r.withLeadName(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *projectRepo) mutate(op, id string, fn func(p *repository.Project) error) error {
	if err := r.s.fail(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().projects {
		if r.s.st().projects[i].ID == id {
			p := r.s.st().projects[i]
			if err := fn(&p); err != nil {
				return err
			}
			if p.PendingValue.IsNegative() {
				return errCheckViolation
			}
			p.UpdatedAt = r.s.stamp()
			r.s.st().projects[i] = p
			return nil
		}
	}
	return nil
}

func (r *projectRepo) Update(ctx context.Context, project *repository.Project) error {
	err := r.mutate("projects.Update", project.ID, func(p *repository.Project) error {
		created, createdBy := p.CreatedAt, p.CreatedBy
		*p = *project
		p.LeadName = nil
		p.CreatedAt, p.CreatedBy = created, createdBy
		return nil
	})
	if err == nil {
		project.UpdatedAt = time.Now()
	}
	return err
}

func (r *projectRepo) UpdateStatus(ctx context.Context, id string, status types.ProductionStatus, userID *string) error {
	return r.mutate("projects.UpdateStatus", id, func(p *repository.Project) error {
		p.ProductionStatus = status
		p.UpdatedBy = userID
		return nil
	})
}

func (r *projectRepo) UpdateBalances(ctx context.Context, id string, paid, pending decimal.Decimal, finalPaymentDueAt *time.Time) error {
	return r.mutate("projects.UpdateBalances", id, func(p *repository.Project) error {
		p.PaidValue = paid
		p.PendingValue = pending
		p.FinalPaymentDueAt = finalPaymentDueAt
		return nil
	})
}

func (r *projectRepo) AddStatusLog(ctx context.Context, log *repository.StatusLog) error {
	if err := r.s.fail("projects.AddStatusLog"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = r.s.stamp()
	r.s.st().statusLogs = append(r.s.st().statusLogs, *log)
	return nil
}

func (r *projectRepo) ListStatusLogs(ctx context.Context, projectID string, limit int) ([]*repository.StatusLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.StatusLog
	for i := len(r.s.st().statusLogs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		l := r.s.st().statusLogs[i]
		if l.ProjectID == projectID {
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *projectRepo) CreateChecklist(ctx context.Context, checklist *repository.Checklist) error {
	if err := r.s.fail("projects.CreateChecklist"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st().checklists {
		if c.ProjectID == checklist.ProjectID {
			return errUniqueViolation
		}
	}
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	checklist.CreatedAt = r.s.stamp()
	checklist.UpdatedAt = checklist.CreatedAt
	r.s.st().checklists = append(r.s.st().checklists, *checklist)
	return nil
}

func (r *projectRepo) GetChecklist(ctx context.Context, projectID string) (*repository.Checklist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st().checklists {
		if c.ProjectID == projectID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *projectRepo) UpsertChecklist(ctx context.Context, checklist *repository.Checklist) error {
	if err := r.s.fail("projects.UpsertChecklist"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.st().checklists {
		if c.ProjectID == checklist.ProjectID {
			checklist.ID = c.ID
			checklist.CreatedAt = c.CreatedAt
			checklist.UpdatedAt = r.s.stamp()
			r.s.st().checklists[i] = *checklist
			return nil
		}
	}
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	checklist.CreatedAt = r.s.stamp()
	checklist.UpdatedAt = checklist.CreatedAt
	r.s.st().checklists = append(r.s.st().checklists, *checklist)
	return nil
}

func (r *projectRepo) ListMaterials(ctx context.Context, projectID string) ([]*repository.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Material
	for _, m := range r.s.st().materials {
		if m.ProjectID == projectID {
			m := m
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *projectRepo) ReplaceMaterials(ctx context.Context, projectID string, materials []*repository.Material) error {
	if err := r.s.fail("projects.ReplaceMaterials"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.st()
	kept := st.materials[:0:0]
	for _, m := range st.materials {
		if m.ProjectID != projectID {
			kept = append(kept, m)
		}
	}
	for i, m := range materials {
		if m.Quantity != nil && *m.Quantity < 0 {
			return errCheckViolation
		}
		m.ID = uuid.NewString()
		m.ProjectID = projectID
		m.Position = i
		m.CreatedAt = r.s.stamp()
		kept = append(kept, *m)
	}
	st.materials = kept
	return nil
}

// ---- payments

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(ctx context.Context, payment *repository.Payment) error {
	if err := r.s.fail("payments.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = r.s.stamp()
	payment.UpdatedAt = payment.CreatedAt
	r.s.st().payments = append(r.s.st().payments, *payment)
	return nil
}

func (r *paymentRepo) ListByProject(ctx context.Context, projectID string) ([]*repository.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Payment
	for i := len(r.s.st().payments) - 1; i >= 0; i-- {
		p := r.s.st().payments[i]
		if p.ProjectID == projectID {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *paymentRepo) SumReceivedBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.s.st().payments {
		if p.ReceivedAt != nil && !p.ReceivedAt.Before(from) && p.ReceivedAt.Before(to) {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// ---- cash ledger

type cashRepo struct{ s *Store }

func (r *cashRepo) Create(ctx context.Context, entry *repository.CashEntry) error {
	if err := r.s.fail("cash.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.UpdatedBy = entry.CreatedBy
	entry.CreatedAt = r.s.stamp()
	entry.UpdatedAt = entry.CreatedAt
	r.s.st().cashEntries = append(r.s.st().cashEntries, *entry)
	return nil
}

func (r *cashRepo) FindByID(ctx context.Context, id string) (*repository.CashEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.st().cashEntries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *cashRepo) List(ctx context.Context, filter repository.CashFilter) ([]*repository.CashEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.CashEntry
	for _, e := range r.s.st().cashEntries {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.Date.Before(*filter.To) {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.ProjectID != "" && (e.ProjectID == nil || *e.ProjectID != filter.ProjectID) {
			continue
		}
		if filter.PayablesOnly && (e.Type != types.LedgerOutflow || e.Status != types.LedgerPlanned || e.DueAt == nil) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *cashRepo) Update(ctx context.Context, entry *repository.CashEntry) error {
	if err := r.s.fail("cash.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().cashEntries {
		if r.s.st().cashEntries[i].ID == entry.ID {
			entry.UpdatedAt = r.s.stamp()
			r.s.st().cashEntries[i] = *entry
		}
	}
	return nil
}

func (r *cashRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entries := r.s.st().cashEntries[:0:0]
	for _, e := range r.s.st().cashEntries {
		if e.ID != id {
			entries = append(entries, e)
		}
	}
	r.s.st().cashEntries = entries
	return nil
}

// ---- stock

type stockRepo struct{ s *Store }

func (r *stockRepo) Create(ctx context.Context, item *repository.StockItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = r.s.stamp()
	item.UpdatedAt = item.CreatedAt
	r.s.st().stockItems = append(r.s.st().stockItems, *item)
	return nil
}

func (r *stockRepo) FindByID(ctx context.Context, id string) (*repository.StockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.st().stockItems {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, nil
}

func (r *stockRepo) List(ctx context.Context) ([]*repository.StockItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.StockItem
	for _, it := range r.s.st().stockItems {
		it := it
		out = append(out, &it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stockRepo) Update(ctx context.Context, item *repository.StockItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().stockItems {
		if r.s.st().stockItems[i].ID == item.ID {
			item.UpdatedAt = r.s.stamp()
			r.s.st().stockItems[i] = *item
		}
	}
	return nil
}

func (r *stockRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.st().stockItems[:0:0]
	for _, it := range r.s.st().stockItems {
		if it.ID != id {
			items = append(items, it)
		}
	}
	r.s.st().stockItems = items
	return nil
}

// ---- suggestions

type suggestionRepo struct{ s *Store }

func (r *suggestionRepo) Create(ctx context.Context, suggestion *repository.Suggestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	if suggestion.Status == "" {
		suggestion.Status = types.SuggestionNew
	}
	suggestion.CreatedAt = r.s.stamp()
	suggestion.UpdatedAt = suggestion.CreatedAt
	r.s.st().suggestions = append(r.s.st().suggestions, *suggestion)
	return nil
}

func (r *suggestionRepo) FindByID(ctx context.Context, id string) (*repository.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sg := range r.s.st().suggestions {
		if sg.ID == id {
			return &sg, nil
		}
	}
	return nil, nil
}

func (r *suggestionRepo) List(ctx context.Context, filter repository.SuggestionFilter) ([]*repository.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Suggestion
	for i := len(r.s.st().suggestions) - 1; i >= 0; i-- {
		sg := r.s.st().suggestions[i]
		if filter.Status != "" && sg.Status != filter.Status {
			continue
		}
		if filter.ProjectID != "" && (sg.ProjectID == nil || *sg.ProjectID != filter.ProjectID) {
			continue
		}
		if filter.AuthorID != "" && sg.UserID != filter.AuthorID {
			continue
		}
		out = append(out, &sg)
	}
	return out, nil
}

func (r *suggestionRepo) UpdateStatus(ctx context.Context, id string, status types.SuggestionStatus, userID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().suggestions {
		if r.s.st().suggestions[i].ID == id {
			r.s.st().suggestions[i].Status = status
			r.s.st().suggestions[i].UpdatedBy = userID
			r.s.st().suggestions[i].UpdatedAt = r.s.stamp()
		}
	}
	return nil
}

// ---- credentials

type credentialRepo struct{ s *Store }

func (r *credentialRepo) Create(ctx context.Context, credential *repository.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if credential.ID == "" {
		credential.ID = uuid.NewString()
	}
	credential.UpdatedBy = credential.CreatedBy
	credential.CreatedAt = r.s.stamp()
	credential.UpdatedAt = credential.CreatedAt
	r.s.st().credentials = append(r.s.st().credentials, *credential)
	return nil
}

func (r *credentialRepo) FindByID(ctx context.Context, id string) (*repository.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st().credentials {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *credentialRepo) List(ctx context.Context) ([]*repository.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Credential
	for _, c := range r.s.st().credentials {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Service < out[j].Service
	})
	return out, nil
}

func (r *credentialRepo) Update(ctx context.Context, credential *repository.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st().credentials {
		if r.s.st().credentials[i].ID == credential.ID {
			credential.UpdatedAt = r.s.stamp()
			r.s.st().credentials[i] = *credential
		}
	}
	return nil
}

func (r *credentialRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	creds := r.s.st().credentials[:0:0]
	for _, c := range r.s.st().credentials {
		if c.ID != id {
			creds = append(creds, c)
		}
	}
	r.s.st().credentials = creds
	return nil
}

// ---- contacts

type contactRepo struct{ s *Store }

func (r *contactRepo) Create(ctx context.Context, contact *repository.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	contact.CreatedAt = r.s.stamp()
	contact.UpdatedAt = contact.CreatedAt
	r.s.st().contacts = append(r.s.st().contacts, *contact)
	return nil
}

func (r *contactRepo) FindByID(ctx context.Context, id string) (*repository.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st().contacts {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *contactRepo) List(ctx context.Context, search string) ([]*repository.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Contact
	q := strings.TrimSpace(search)
	for _, c := range r.s.st().contacts {
		if q != "" && !containsFold(c.Name, q) && !containsFold(c.Phone, q) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *contactRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	contacts := r.s.st().contacts[:0:0]
	for _, c := range r.s.st().contacts {
		if c.ID != id {
			contacts = append(contacts, c)
		}
	}
	r.s.st().contacts = contacts
	return nil
}

// ---- company info

type companyInfoRepo struct{ s *Store }

func (r *companyInfoRepo) Get(ctx context.Context) (*repository.CompanyInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.st().companyInfo == nil {
		return nil, nil
	}
	c := *r.s.st().companyInfo
	return &c, nil
}

func (r *companyInfoRepo) Save(ctx context.Context, info *repository.CompanyInfo) error {
	if err := r.s.fail("companyInfo.Save"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if current := r.s.st().companyInfo; current != nil && current.ID == info.ID {
		info.CreatedAt = current.CreatedAt
	} else {
		info.CreatedAt = r.s.stamp()
	}
	info.UpdatedAt = r.s.stamp()
	c := *info
	r.s.st().companyInfo = &c
	return nil
}

// ---- password resets

type resetRepo struct{ s *Store }

func (r *resetRepo) Replace(ctx context.Context, reset *repository.PasswordReset) error {
	if err := r.s.fail("passwordResets.Replace"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.st()
	kept := st.resets[:0:0]
	for _, p := range st.resets {
		if p.UserID != reset.UserID {
			kept = append(kept, p)
		}
	}
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	reset.CreatedAt = r.s.stamp()
	st.resets = append(kept, *reset)
	return nil
}

func (r *resetRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*repository.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st().resets {
		if p.TokenHash == tokenHash {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *resetRepo) Delete(ctx context.Context, id string) error {
	if err := r.s.fail("passwordResets.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.s.st()
	kept := st.resets[:0:0]
	for _, p := range st.resets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	st.resets = kept
	return nil
}

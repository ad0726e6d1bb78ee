package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/internal/repository"
	"github.com/ziyi127/TimeNest-sub000/pkg/timeutil"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) HardDelete(_ context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.courses[id]
	return ok, nil
}

// ── Mock PlacementRepository ──

// courses 用于模拟 Preload("Course")
type mockPlacementRepo struct {
	placements map[string]*model.Placement
	courses    *mockCourseRepo
}

func newMockPlacementRepo(courses *mockCourseRepo) *mockPlacementRepo {
	return &mockPlacementRepo{
		placements: make(map[string]*model.Placement),
		courses:    courses,
	}
}

func (m *mockPlacementRepo) load(p *model.Placement) model.Placement {
	out := *p
	if out.Course == nil {
		out.Course = m.courses.courses[out.CourseID]
	}
	return out
}

func (m *mockPlacementRepo) Create(_ context.Context, placement *model.Placement) error {
	m.placements[placement.PlacementID] = placement
	return nil
}

func (m *mockPlacementRepo) GetByID(_ context.Context, id string) (*model.Placement, error) {
	if p, ok := m.placements[id]; ok {
		loaded := m.load(p)
		return &loaded, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlacementRepo) List(_ context.Context) ([]model.Placement, error) {
	var result []model.Placement
	for _, p := range m.placements {
		result = append(result, m.load(p))
	}
	return result, nil
}

func (m *mockPlacementRepo) ListByCourse(_ context.Context, courseID string) ([]model.Placement, error) {
	var result []model.Placement
	for _, p := range m.placements {
		if p.CourseID == courseID {
			result = append(result, m.load(p))
		}
	}
	return result, nil
}

func (m *mockPlacementRepo) ListByDay(_ context.Context, dayOfWeek int, date time.Time) ([]model.Placement, error) {
	var result []model.Placement
	for _, p := range m.placements {
		if p.DayOfWeek != dayOfWeek {
			continue
		}
		if date.Before(p.ValidFrom) || date.After(p.ValidTo) {
			continue
		}
		result = append(result, m.load(p))
	}
	return result, nil
}

func (m *mockPlacementRepo) Update(_ context.Context, placement *model.Placement) error {
	m.placements[placement.PlacementID] = placement
	return nil
}

func (m *mockPlacementRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.placements, id)
	return nil
}

func (m *mockPlacementRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.placements[id]
	return ok, nil
}

func (m *mockPlacementRepo) ListIDsByCourse(_ context.Context, courseID string) ([]string, error) {
	var ids []string
	for _, p := range m.placements {
		if p.CourseID == courseID {
			ids = append(ids, p.PlacementID)
		}
	}
	return ids, nil
}

// ── Mock OverrideRepository ──

type mockOverrideRepo struct {
	overrides map[string]*model.Override
	courses   *mockCourseRepo
}

func newMockOverrideRepo(courses *mockCourseRepo) *mockOverrideRepo {
	return &mockOverrideRepo{
		overrides: make(map[string]*model.Override),
		courses:   courses,
	}
}

func (m *mockOverrideRepo) load(o *model.Override) model.Override {
	out := *o
	if out.ReplacementCourse == nil {
		out.ReplacementCourse = m.courses.courses[out.ReplacementCourseID]
	}
	return out
}

func (m *mockOverrideRepo) Create(_ context.Context, override *model.Override) error {
	m.overrides[override.OverrideID] = override
	return nil
}

func (m *mockOverrideRepo) GetByID(_ context.Context, id string) (*model.Override, error) {
	if o, ok := m.overrides[id]; ok {
		loaded := m.load(o)
		return &loaded, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOverrideRepo) List(_ context.Context) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		result = append(result, m.load(o))
	}
	return result, nil
}

func (m *mockOverrideRepo) ListByPlacement(_ context.Context, placementID string) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		if o.TargetPlacementID == placementID {
			result = append(result, m.load(o))
		}
	}
	return result, nil
}

func (m *mockOverrideRepo) ListOneOffByDate(_ context.Context, date time.Time) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		if o.Permanent || o.Consumed {
			continue
		}
		if !timeutil.SameDate(o.EffectiveDate, date) {
			continue
		}
		result = append(result, m.load(o))
	}
	return result, nil
}

func (m *mockOverrideRepo) ListPermanentOnOrBefore(_ context.Context, date time.Time) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		if !o.Permanent || o.EffectiveDate.After(date) {
			continue
		}
		result = append(result, m.load(o))
	}
	return result, nil
}

func (m *mockOverrideRepo) Update(_ context.Context, override *model.Override) error {
	m.overrides[override.OverrideID] = override
	return nil
}

func (m *mockOverrideRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.overrides, id)
	return nil
}

func (m *mockOverrideRepo) MarkConsumed(_ context.Context, ids []string) error {
	for _, id := range ids {
		if o, ok := m.overrides[id]; ok {
			o.Consumed = true
		}
	}
	return nil
}

func (m *mockOverrideRepo) ListIDsByReplacementCourse(_ context.Context, courseID string) ([]string, error) {
	var ids []string
	for _, o := range m.overrides {
		if o.ReplacementCourseID == courseID {
			ids = append(ids, o.OverrideID)
		}
	}
	return ids, nil
}

func (m *mockOverrideRepo) ListIDsByPlacement(_ context.Context, placementID string) ([]string, error) {
	var ids []string
	for _, o := range m.overrides {
		if o.TargetPlacementID == placementID {
			ids = append(ids, o.OverrideID)
		}
	}
	return ids, nil
}

// ── Mock RotationRepository ──

type mockRotationRepo struct {
	templates map[string]*model.RotationTemplate
	courses   *mockCourseRepo
}

func newMockRotationRepo(courses *mockCourseRepo) *mockRotationRepo {
	return &mockRotationRepo{
		templates: make(map[string]*model.RotationTemplate),
		courses:   courses,
	}
}

func (m *mockRotationRepo) load(t *model.RotationTemplate) model.RotationTemplate {
	out := *t
	out.Slots = make([]model.RotationSlot, len(t.Slots))
	copy(out.Slots, t.Slots)
	for i := range out.Slots {
		if out.Slots[i].Course == nil {
			out.Slots[i].Course = m.courses.courses[out.Slots[i].CourseID]
		}
	}
	return out
}

func (m *mockRotationRepo) Create(_ context.Context, template *model.RotationTemplate) error {
	m.templates[template.TemplateID] = template
	return nil
}

func (m *mockRotationRepo) GetByID(_ context.Context, id string) (*model.RotationTemplate, error) {
	if t, ok := m.templates[id]; ok {
		loaded := m.load(t)
		return &loaded, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRotationRepo) List(_ context.Context) ([]model.RotationTemplate, error) {
	var result []model.RotationTemplate
	for _, t := range m.templates {
		result = append(result, m.load(t))
	}
	return result, nil
}

func (m *mockRotationRepo) ListActiveOn(_ context.Context, date time.Time) ([]model.RotationTemplate, error) {
	var result []model.RotationTemplate
	for _, t := range m.templates {
		if t.StartDate.After(date) {
			continue
		}
		result = append(result, m.load(t))
	}
	return result, nil
}

func (m *mockRotationRepo) ReplaceSlots(_ context.Context, template *model.RotationTemplate, slots []model.RotationSlot) error {
	template.Slots = slots
	m.templates[template.TemplateID] = template
	return nil
}

func (m *mockRotationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.templates, id)
	return nil
}

func (m *mockRotationRepo) ListSlotIDsByCourse(_ context.Context, courseID string) ([]string, error) {
	var ids []string
	for _, t := range m.templates {
		for _, s := range t.Slots {
			if s.CourseID == courseID {
				ids = append(ids, s.SlotID)
			}
		}
	}
	return ids, nil
}

// ── 共享测试夹具 ──

type testRepos struct {
	users      *mockUserRepo
	courses    *mockCourseRepo
	placements *mockPlacementRepo
	overrides  *mockOverrideRepo
	rotations  *mockRotationRepo
	repo       *repository.Repository
}

func oneOffOverride(id, placementID, courseID string, effectiveDate time.Time) *model.Override {
	return &model.Override{
		OverrideID:          id,
		TargetPlacementID:   placementID,
		ReplacementCourseID: courseID,
		EffectiveDate:       effectiveDate,
		Permanent:           false,
		Consumed:            false,
	}
}

func permanentOverride(id, placementID, courseID string, effectiveDate time.Time) *model.Override {
	return &model.Override{
		OverrideID:          id,
		TargetPlacementID:   placementID,
		ReplacementCourseID: courseID,
		EffectiveDate:       effectiveDate,
		Permanent:           true,
	}
}

func rotationTemplate(id string, cycleLength int, startDate time.Time) *model.RotationTemplate {
	return &model.RotationTemplate{
		TemplateID:  id,
		Name:        "轮换" + id,
		CycleLength: cycleLength,
		StartDate:   startDate,
	}
}

func rotationSlot(id, templateID string, weekIndex, dayOfWeek int, courseID string) model.RotationSlot {
	return model.RotationSlot{
		SlotID:     id,
		TemplateID: templateID,
		WeekIndex:  weekIndex,
		DayOfWeek:  dayOfWeek,
		CourseID:   courseID,
	}
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	courses := newMockCourseRepo()
	placements := newMockPlacementRepo(courses)
	overrides := newMockOverrideRepo(courses)
	rotations := newMockRotationRepo(courses)
	return &testRepos{
		users:      users,
		courses:    courses,
		placements: placements,
		overrides:  overrides,
		rotations:  rotations,
		repo: &repository.Repository{
			User:      users,
			Course:    courses,
			Placement: placements,
			Override:  overrides,
			Rotation:  rotations,
		},
	}
}

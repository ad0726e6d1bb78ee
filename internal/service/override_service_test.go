package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ziyi127/TimeNest-sub000/config"
	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
)

// ── 测试辅助 ──

func setupTestOverrideService(t *testing.T) (OverrideService, *testRepos) {
	t.Helper()
	repos := newTestRepos()
	cfg := &config.TimetableConfig{TermStart: "2025-09-01", FirstWeekType: "odd"}
	svc, err := NewOverrideService(repos.repo, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOverrideService 应成功: %v", err)
	}
	return svc, repos
}

func seedPlacementWithCourses(repos *testRepos) {
	c1 := testCourse("c1", "陈老师", "A101", "08:00", "09:40")
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c1.CourseID] = c1
	repos.courses.courses[c2.CourseID] = c2
	// 周一，2025-09-01 ~ 2026-01-15
	placement := placementFor(c1, 1, "both")
	repos.placements.placements[placement.PlacementID] = placement
}

// ── Create 测试 ──

func TestOverrideService_Create_Success(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	// 2025-09-08 是周一，落在排课生效区间内
	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-c1",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2025-09-08",
		Permanent:           false,
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Consumed {
		t.Error("新建调课不应已消费")
	}
	if result.EffectiveDate != "2025-09-08" {
		t.Errorf("期望生效日期=2025-09-08，实际=%s", result.EffectiveDate)
	}
}

func TestOverrideService_Create_PlacementNotFound(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "missing",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2025-09-08",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if err != ErrPlacementNotFound {
		t.Errorf("期望 ErrPlacementNotFound，实际=%v", err)
	}
}

func TestOverrideService_Create_CourseNotFound(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-c1",
		ReplacementCourseID: "missing",
		EffectiveDate:       "2025-09-08",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if err != ErrCourseNotFound {
		t.Errorf("期望 ErrCourseNotFound，实际=%v", err)
	}
}

func TestOverrideService_Create_DateOutsideValidity(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	// 2026-02-02 是周一但已超出排课生效区间
	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-c1",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2026-02-02",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !pkgerrors.IsValidation(err) {
		t.Errorf("期望 ValidationError，实际=%v", err)
	}
}

func TestOverrideService_Create_WrongWeekday(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	// 2025-09-09 是周二，目标排课在周一
	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-c1",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2025-09-09",
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !pkgerrors.IsValidation(err) {
		t.Errorf("期望 ValidationError，实际=%v", err)
	}
}

// 一次性调课的生效日期落在排课未生效的单双周时应拒绝，
// 否则该调课永远不会被解析命中、也永远不会被消费
func TestOverrideService_Create_ParityMismatch(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	// 单周排课：2025-09-01 起第 0 周为单周
	c1 := repos.courses.courses["c1"]
	odd := placementFor(c1, 1, "odd")
	odd.PlacementID = "p-odd"
	repos.placements.placements["p-odd"] = odd

	// 2025-09-08 是周一但落在双周
	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-odd",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2025-09-08",
		Permanent:           false,
	}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !pkgerrors.IsValidation(err) {
		t.Errorf("期望 ValidationError，实际=%v", err)
	}
	if len(repos.overrides.overrides) != 0 {
		t.Errorf("校验失败不应写入，实际=%d 条", len(repos.overrides.overrides))
	}

	// 挪到单周（2025-09-15）则成功
	req.EffectiveDate = "2025-09-15"
	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Errorf("单周日期应成功: %v", err)
	}
}

// 永久换课是从生效日期起的长期替换，不受单双周限制
func TestOverrideService_Create_PermanentIgnoresParity(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	c1 := repos.courses.courses["c1"]
	odd := placementFor(c1, 1, "odd")
	odd.PlacementID = "p-odd"
	repos.placements.placements["p-odd"] = odd

	req := &dto.CreateOverrideRequest{
		TargetPlacementID:   "p-odd",
		ReplacementCourseID: "c2",
		EffectiveDate:       "2025-09-08",
		Permanent:           true,
	}

	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Errorf("永久换课不应受单双周限制: %v", err)
	}
}

// ── Update 测试 ──

func TestOverrideService_Update_EffectiveDate(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	// 挪到下一个周一
	newDate := "2025-09-15"
	result, err := svc.Update(context.Background(), "o1", &dto.UpdateOverrideRequest{EffectiveDate: &newDate}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.EffectiveDate != "2025-09-15" {
		t.Errorf("期望生效日期=2025-09-15，实际=%s", result.EffectiveDate)
	}
}

func TestOverrideService_Update_NotFound(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)

	permanent := true
	_, err := svc.Update(context.Background(), "missing", &dto.UpdateOverrideRequest{Permanent: &permanent}, "admin-001")
	if err != ErrOverrideNotFound {
		t.Errorf("期望 ErrOverrideNotFound，实际=%v", err)
	}
}

// ── Delete 测试 ──

func TestOverrideService_Delete_Success(t *testing.T) {
	svc, repos := setupTestOverrideService(t)
	seedPlacementWithCourses(repos)
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	if err := svc.Delete(context.Background(), "o1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "o1"); err != ErrOverrideNotFound {
		t.Errorf("删除后调课不应可查，实际=%v", err)
	}
}

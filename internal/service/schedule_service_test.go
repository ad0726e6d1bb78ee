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

func setupTestScheduleService(t *testing.T) (ScheduleService, *testRepos) {
	t.Helper()
	repos := newTestRepos()
	cfg := &config.TimetableConfig{TermStart: "2025-09-01", FirstWeekType: "odd"}
	svc, err := NewScheduleService(repos.repo, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("构造 ScheduleService 失败: %v", err)
	}
	return svc, repos
}

// 2025-09-01 为学期第一个周一
func seedMondayMath(repos *testRepos) {
	c1 := testCourse("c1", "陈老师", "A101", "08:00", "09:40")
	repos.courses.courses[c1.CourseID] = c1
	placement := placementFor(c1, 1, "both")
	repos.placements.placements[placement.PlacementID] = placement
}

// ── ResolveSchedule 测试 ──

// 周一排课在周一解析到，其余日期为空
func TestScheduleService_Resolve_PlacementOnly(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)

	day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(day.Entries) != 1 {
		t.Fatalf("期望 1 个条目，实际=%d", len(day.Entries))
	}
	e := day.Entries[0]
	if e.Source != SourcePlacement || e.Course.ID != "c1" {
		t.Errorf("期望 placement 来源的 c1，实际 source=%s course=%s", e.Source, e.Course.ID)
	}

	tuesday, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 9))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(tuesday.Entries) != 0 {
		t.Errorf("周二不应有条目，实际=%d", len(tuesday.Entries))
	}
}

// 单周排课只出现在单周
func TestScheduleService_Resolve_ParityFilter(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	c1 := testCourse("c1", "陈老师", "A101", "08:00", "09:40")
	repos.courses.courses[c1.CourseID] = c1
	placement := placementFor(c1, 1, "odd")
	repos.placements.placements[placement.PlacementID] = placement

	// 第 0 周（单周）的周一
	week0, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 1))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(week0.Entries) != 1 {
		t.Errorf("单周周一应有 1 个条目，实际=%d", len(week0.Entries))
	}

	// 第 1 周（双周）的周一
	week1, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(week1.Entries) != 0 {
		t.Errorf("双周周一不应有条目，实际=%d", len(week1.Entries))
	}
}

// 一次性调课只在生效日替换，且首个解析后被消费
func TestScheduleService_Resolve_OneOffOverride(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c2.CourseID] = c2
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(day.Entries) != 1 {
		t.Fatalf("期望 1 个条目，实际=%d", len(day.Entries))
	}
	if day.Entries[0].Source != SourceOverride || day.Entries[0].Course.ID != "c2" {
		t.Errorf("生效日应返回替换课程 c2，实际 source=%s course=%s",
			day.Entries[0].Source, day.Entries[0].Course.ID)
	}
	if !repos.overrides.overrides["o1"].Consumed {
		t.Error("一次性调课解析后应被消费")
	}

	// 下一个周一回到原课程
	next, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 15))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if next.Entries[0].Course.ID != "c1" {
		t.Errorf("非生效日应返回原课程 c1，实际=%s", next.Entries[0].Course.ID)
	}
}

// 消费幂等：同一日期解析两次，调课只生效一次
func TestScheduleService_Resolve_ConsumptionIdempotent(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c2.CourseID] = c2
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	first, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("第一次解析应成功: %v", err)
	}
	if first.Entries[0].Course.ID != "c2" {
		t.Errorf("第一次解析应返回 c2，实际=%s", first.Entries[0].Course.ID)
	}

	second, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("第二次解析应成功: %v", err)
	}
	if second.Entries[0].Course.ID != "c1" {
		t.Errorf("已消费的调课不应再次生效，实际=%s", second.Entries[0].Course.ID)
	}
}

// 永久换课从生效日起持续生效且从不消费
func TestScheduleService_Resolve_PermanentOverride(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c2.CourseID] = c2
	repos.overrides.overrides["o1"] = permanentOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	// 生效日之前仍是原课程
	before, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 1))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if before.Entries[0].Course.ID != "c1" {
		t.Errorf("生效日前应返回 c1，实际=%s", before.Entries[0].Course.ID)
	}

	// 生效日及之后的每个周一都被替换
	for _, d := range []int{8, 15, 22} {
		day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, d))
		if err != nil {
			t.Fatalf("ResolveSchedule 应成功: %v", err)
		}
		if day.Entries[0].Course.ID != "c2" {
			t.Errorf("2025-09-%02d 应返回 c2，实际=%s", d, day.Entries[0].Course.ID)
		}
	}

	if repos.overrides.overrides["o1"].Consumed {
		t.Error("永久换课不应被消费")
	}
}

// 轮换槽位与排课合并；同窗同级并列时拒绝解析
func TestScheduleService_Resolve_RotationMerged(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	repos.courses.courses["c3"] = testCourse("c3", "李老师", "C303", "10:00", "11:40")

	template := rotationTemplate("t1", 2, date(2025, 9, 1))
	template.Slots = append(template.Slots, rotationSlot("s0", "t1", 0, 1, "c3"))
	repos.rotations.templates[template.TemplateID] = template

	day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 1))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(day.Entries) != 2 {
		t.Fatalf("期望排课+轮换共 2 个条目，实际=%d", len(day.Entries))
	}
	// 按开始时间排序
	if day.Entries[0].Course.ID != "c1" || day.Entries[1].Course.ID != "c3" {
		t.Errorf("条目顺序错误: %s, %s", day.Entries[0].Course.ID, day.Entries[1].Course.ID)
	}
	if day.Entries[1].Source != SourceRotation {
		t.Errorf("期望轮换来源，实际=%s", day.Entries[1].Source)
	}
}

// 轮换槽位与排课撞同一时间窗：Rotation 优先级更高
func TestScheduleService_Resolve_RotationBeatsPlacement(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	// 与 c1 相同的时间窗
	repos.courses.courses["c3"] = testCourse("c3", "李老师", "C303", "08:00", "09:40")

	template := rotationTemplate("t1", 1, date(2025, 9, 1))
	template.Slots = append(template.Slots, rotationSlot("s0", "t1", 0, 1, "c3"))
	repos.rotations.templates[template.TemplateID] = template

	day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(day.Entries) != 1 {
		t.Fatalf("同一时间窗应只保留 1 个条目，实际=%d", len(day.Entries))
	}
	if day.Entries[0].Source != SourceRotation || day.Entries[0].Course.ID != "c3" {
		t.Errorf("期望轮换条目胜出，实际 source=%s course=%s",
			day.Entries[0].Source, day.Entries[0].Course.ID)
	}
}

// 同一时间窗两个排课并列最高优先级 → 拒绝解析
func TestScheduleService_Resolve_TieConflict(t *testing.T) {
	svc, repos := setupTestScheduleService(t)

	// 教师地点都不同，排课创建时不冲突，但同窗并列
	c1 := testCourse("c1", "陈老师", "A101", "08:00", "09:40")
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c1.CourseID] = c1
	repos.courses.courses[c2.CourseID] = c2
	p1 := placementFor(c1, 1, "both")
	p2 := placementFor(c2, 1, "both")
	repos.placements.placements[p1.PlacementID] = p1
	repos.placements.placements[p2.PlacementID] = p2

	_, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if !pkgerrors.IsConflict(err) {
		t.Errorf("同窗并列应返回 ConflictError，实际=%v", err)
	}
}

// 替换课程时间窗不同：调课条目随替换课程的时间窗移动
func TestScheduleService_Resolve_OverrideShiftsWindow(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	// 替换课程与原课程时间窗不同
	c2 := testCourse("c2", "王老师", "B202", "10:00", "11:40")
	repos.courses.courses["c2"] = c2
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	day, err := svc.ResolveSchedule(context.Background(), date(2025, 9, 8))
	if err != nil {
		t.Fatalf("ResolveSchedule 应成功: %v", err)
	}
	if len(day.Entries) != 1 || day.Entries[0].Course.ID != "c2" {
		t.Fatalf("调课应独占 10:00 窗口，实际=%v", day.Entries)
	}
	if !repos.overrides.overrides["o1"].Consumed {
		t.Error("胜出的调课应被消费")
	}
}

// ── ResolveWeek 测试 ──

func TestScheduleService_ResolveWeek_MondayStart(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)

	// 周三发起查询，仍应覆盖周一至周日
	week, err := svc.ResolveWeek(context.Background(), date(2025, 9, 10))
	if err != nil {
		t.Fatalf("ResolveWeek 应成功: %v", err)
	}
	if week.WeekStart != "2025-09-08" || week.WeekEnd != "2025-09-14" {
		t.Errorf("期望 2025-09-08 ~ 2025-09-14，实际 %s ~ %s", week.WeekStart, week.WeekEnd)
	}
	if len(week.Days) != 7 {
		t.Fatalf("期望 7 天，实际=%d", len(week.Days))
	}
	if len(week.Days[0].Entries) != 1 {
		t.Errorf("周一应有 1 个条目，实际=%d", len(week.Days[0].Entries))
	}
	for i := 1; i < 7; i++ {
		if len(week.Days[i].Entries) != 0 {
			t.Errorf("第 %d 天不应有条目", i)
		}
	}
}

// ── ResolveRange 测试 ──

// 只读预览不消费一次性调课
func TestScheduleService_ResolveRange_NoConsumption(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	c2 := testCourse("c2", "王老师", "B202", "08:00", "09:40")
	repos.courses.courses[c2.CourseID] = c2
	repos.overrides.overrides["o1"] = oneOffOverride("o1", "p-c1", "c2", date(2025, 9, 8))

	days, err := svc.ResolveRange(context.Background(), date(2025, 9, 8), date(2025, 9, 14))
	if err != nil {
		t.Fatalf("ResolveRange 应成功: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("期望 7 天，实际=%d", len(days))
	}
	if days[0].Entries[0].Course.ID != "c2" {
		t.Errorf("预览应体现调课，实际=%s", days[0].Entries[0].Course.ID)
	}
	if repos.overrides.overrides["o1"].Consumed {
		t.Error("只读预览不应消费调课")
	}
}

func TestScheduleService_ResolveRange_InvalidRange(t *testing.T) {
	svc, _ := setupTestScheduleService(t)

	_, err := svc.ResolveRange(context.Background(), date(2025, 9, 14), date(2025, 9, 8))
	if !pkgerrors.IsValidation(err) {
		t.Errorf("期望 ValidationError，实际=%v", err)
	}
}

// ── CreateCourseWithPlacement 测试 ──

func TestScheduleService_CreateCourseWithPlacement_Success(t *testing.T) {
	svc, repos := setupTestScheduleService(t)

	req := &dto.CreateCourseWithPlacementRequest{
		Course: dto.CreateCourseRequest{
			Name: "高等数学", Teacher: "陈老师", Location: "A101",
			StartTime: "08:00", EndTime: "09:40",
		},
	}
	req.Placement.DayOfWeek = 1
	req.Placement.WeekParity = "both"
	req.Placement.ValidFrom = "2025-09-01"
	req.Placement.ValidTo = "2026-01-15"

	result, err := svc.CreateCourseWithPlacement(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("组合创建应成功: %v", err)
	}
	if result.Course == nil || result.Course.Name != "高等数学" {
		t.Error("响应应携带课程信息")
	}
	if len(repos.courses.courses) != 1 || len(repos.placements.placements) != 1 {
		t.Error("课程与排课应各写入一条")
	}
}

// 排课冲突时课程创建被补偿回滚，全有或全无
func TestScheduleService_CreateCourseWithPlacement_RollbackOnConflict(t *testing.T) {
	svc, repos := setupTestScheduleService(t)
	seedMondayMath(repos)
	coursesBefore := len(repos.courses.courses)
	placementsBefore := len(repos.placements.placements)

	// 同教师同时间窗 → 排课冲突
	req := &dto.CreateCourseWithPlacementRequest{
		Course: dto.CreateCourseRequest{
			Name: "线性代数", Teacher: "陈老师", Location: "B202",
			StartTime: "08:30", EndTime: "10:10",
		},
	}
	req.Placement.DayOfWeek = 1
	req.Placement.WeekParity = "both"
	req.Placement.ValidFrom = "2025-09-01"
	req.Placement.ValidTo = "2026-01-15"

	_, err := svc.CreateCourseWithPlacement(context.Background(), req, "admin-001")
	if !pkgerrors.IsConflict(err) {
		t.Fatalf("期望 ConflictError，实际=%v", err)
	}
	if len(repos.courses.courses) != coursesBefore {
		t.Error("失败后课程集合不应变化")
	}
	if len(repos.placements.placements) != placementsBefore {
		t.Error("失败后排课集合不应变化")
	}
}

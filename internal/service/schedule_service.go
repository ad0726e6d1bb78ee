package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ziyi127/TimeNest-sub000/config"
	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/internal/repository"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/timeutil"
)

// ── 课表解析模块业务错误 ──

var ErrTermStartInvalid = errors.New("学期起始日期配置无效")

// 课表条目来源
const (
	SourcePlacement = "placement"
	SourceRotation  = "rotation"
	SourceOverride  = "override"
)

// 来源优先级：Override > Rotation > Placement
var sourceRank = map[string]int{
	SourcePlacement: 0,
	SourceRotation:  1,
	SourceOverride:  2,
}

// ScheduleService 课表解析协调器
// 将周期性排课、轮换模板、调课三个来源合并为每日课表。
type ScheduleService interface {
	// CreateCourseWithPlacement 一步创建课程并排课；排课失败时回滚课程
	CreateCourseWithPlacement(ctx context.Context, req *dto.CreateCourseWithPlacementRequest, callerID string) (*dto.PlacementResponse, error)
	// ResolveSchedule 解析单日课表并消费命中的一次性调课
	ResolveSchedule(ctx context.Context, date time.Time) (*dto.ResolveDayResponse, error)
	// ResolveWeek 解析 date 所在周（周一至周日）的课表
	ResolveWeek(ctx context.Context, date time.Time) (*dto.ResolveWeekResponse, error)
	// ResolveRange 只读解析日期区间，不消费任何调课（预览/导出用）
	ResolveRange(ctx context.Context, start, end time.Time) ([]dto.ResolveDayResponse, error)
}

type scheduleService struct {
	repo      *repository.Repository
	cfg       *config.TimetableConfig
	termStart time.Time
	logger    *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, cfg *config.TimetableConfig, logger *zap.Logger) (ScheduleService, error) {
	termStart, err := cfg.ParseTermStart()
	if err != nil {
		return nil, ErrTermStartInvalid
	}
	return &scheduleService{
		repo:      repo,
		cfg:       cfg,
		termStart: timeutil.DateOnly(termStart),
		logger:    logger,
	}, nil
}

// ────────────────────── CreateCourseWithPlacement ──────────────────────

// CreateCourseWithPlacement 组合操作：先创建课程，再以其为目标创建排课。
// 排课校验或冲突检测失败时物理删除刚创建的课程，保证全有或全无。
func (s *scheduleService) CreateCourseWithPlacement(ctx context.Context, req *dto.CreateCourseWithPlacementRequest, callerID string) (*dto.PlacementResponse, error) {
	courseSvc := NewCourseService(s.repo, s.logger)
	course, err := courseSvc.Create(ctx, &req.Course, callerID)
	if err != nil {
		return nil, err
	}

	placementSvc := NewPlacementService(s.repo, s.logger)
	placement, err := placementSvc.Create(ctx, &dto.CreatePlacementRequest{
		CourseID:   course.ID,
		DayOfWeek:  req.Placement.DayOfWeek,
		WeekParity: req.Placement.WeekParity,
		ValidFrom:  req.Placement.ValidFrom,
		ValidTo:    req.Placement.ValidTo,
	}, callerID)
	if err != nil {
		// 补偿回滚：排课失败时撤销课程创建
		if rbErr := s.repo.Course.HardDelete(ctx, course.ID); rbErr != nil {
			s.logger.Error("回滚课程创建失败", zap.String("course_id", course.ID), zap.Error(rbErr))
		}
		return nil, err
	}

	return placement, nil
}

// ────────────────────── ResolveSchedule ──────────────────────

func (s *scheduleService) ResolveSchedule(ctx context.Context, date time.Time) (*dto.ResolveDayResponse, error) {
	day, consumedIDs, err := s.resolveDay(ctx, timeutil.DateOnly(date))
	if err != nil {
		return nil, err
	}

	if len(consumedIDs) > 0 {
		if err := s.repo.Override.MarkConsumed(ctx, consumedIDs); err != nil {
			s.logger.Error("标记调课已消费失败", zap.Strings("ids", consumedIDs), zap.Error(err))
			return nil, err
		}
		s.logger.Info("一次性调课已消费",
			zap.String("date", day.Date),
			zap.Strings("override_ids", consumedIDs))
	}

	return day, nil
}

// ────────────────────── ResolveWeek ──────────────────────

func (s *scheduleService) ResolveWeek(ctx context.Context, date time.Time) (*dto.ResolveWeekResponse, error) {
	monday, sunday := timeutil.WeekBounds(timeutil.DateOnly(date))

	resp := &dto.ResolveWeekResponse{
		WeekStart: monday.Format("2006-01-02"),
		WeekEnd:   sunday.Format("2006-01-02"),
		Days:      make([]dto.ResolveDayResponse, 0, 7),
	}

	var allConsumed []string
	for d := monday; !d.After(sunday); d = d.AddDate(0, 0, 1) {
		day, consumedIDs, err := s.resolveDay(ctx, d)
		if err != nil {
			return nil, err
		}
		resp.Days = append(resp.Days, *day)
		allConsumed = append(allConsumed, consumedIDs...)
	}

	if len(allConsumed) > 0 {
		if err := s.repo.Override.MarkConsumed(ctx, allConsumed); err != nil {
			s.logger.Error("标记调课已消费失败", zap.Strings("ids", allConsumed), zap.Error(err))
			return nil, err
		}
	}

	return resp, nil
}

// ────────────────────── ResolveRange ──────────────────────

func (s *scheduleService) ResolveRange(ctx context.Context, start, end time.Time) ([]dto.ResolveDayResponse, error) {
	start = timeutil.DateOnly(start)
	end = timeutil.DateOnly(end)
	if start.After(end) {
		return nil, pkgerrors.NewValidation([]string{"起始日期不能晚于结束日期"})
	}

	var days []dto.ResolveDayResponse
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day, _, err := s.resolveDay(ctx, d)
		if err != nil {
			return nil, err
		}
		days = append(days, *day)
	}

	return days, nil
}

// ────────────────────── 单日解析 ──────────────────────

// entry 合并过程中的内部条目
type entry struct {
	source      string
	placementID string
	templateID  string
	overrideID  string
	oneOff      bool // 一次性调课胜出后需要消费
	course      *model.Course
}

func (e *entry) id() string {
	switch e.source {
	case SourceOverride:
		return e.overrideID
	case SourceRotation:
		return e.templateID
	default:
		return e.placementID
	}
}

// resolveDay 合并三个来源生成单日课表
// 返回胜出的一次性调课 ID 供调用方按需消费（本函数不写库）。
//
// 合并规则：
//  1. 调课按目标排课吸附 —— 命中的排课条目被替换，而非与之并存
//  2. 槽位按时间窗聚合，Override > Rotation > Placement
//  3. 同一时间窗出现两个同级最高优先来源时拒绝解析（宁可报错
//     也不静默丢弃其中之一）
func (s *scheduleService) resolveDay(ctx context.Context, date time.Time) (*dto.ResolveDayResponse, []string, error) {
	dayOfWeek := int(date.Weekday())
	weekType := timeutil.WeekParityOf(date, s.termStart, s.cfg.FirstWeekType)

	// 1. 当日生效的周期性排课（星期 + 生效区间 + 奇偶性）
	placements, err := s.repo.Placement.ListByDay(ctx, dayOfWeek, date)
	if err != nil {
		s.logger.Error("解析课表加载排课失败", zap.Error(err))
		return nil, nil, err
	}
	valid := placements[:0]
	for i := range placements {
		if parityOverlap(placements[i].WeekParity, weekType) {
			valid = append(valid, placements[i])
		}
	}

	// 2. 永久换课：同一排课取生效日期最晚的一条
	permanents, err := s.repo.Override.ListPermanentOnOrBefore(ctx, date)
	if err != nil {
		s.logger.Error("解析课表加载永久调课失败", zap.Error(err))
		return nil, nil, err
	}
	permanentByPlacement := make(map[string]*model.Override)
	for i := range permanents {
		o := &permanents[i]
		cur, ok := permanentByPlacement[o.TargetPlacementID]
		if !ok || o.EffectiveDate.After(cur.EffectiveDate) {
			permanentByPlacement[o.TargetPlacementID] = o
		}
	}

	// 3. 当日未消费的一次性调课
	oneOffs, err := s.repo.Override.ListOneOffByDate(ctx, date)
	if err != nil {
		s.logger.Error("解析课表加载一次性调课失败", zap.Error(err))
		return nil, nil, err
	}
	oneOffByPlacement := make(map[string][]*model.Override)
	for i := range oneOffs {
		o := &oneOffs[i]
		oneOffByPlacement[o.TargetPlacementID] = append(oneOffByPlacement[o.TargetPlacementID], o)
	}

	var entries []entry
	for i := range valid {
		p := &valid[i]
		if p.Course == nil {
			return nil, nil, fmt.Errorf("排课 %s 缺失课程信息", p.PlacementID)
		}

		// 同一排课同一日期存在多条一次性调课无法裁决
		if oo := oneOffByPlacement[p.PlacementID]; len(oo) > 1 {
			return nil, nil, &pkgerrors.ConflictError{
				RecordID: oo[0].OverrideID,
				OtherID:  oo[1].OverrideID,
				Resource: "override",
				Detail:   fmt.Sprintf("排课 %s 在 %s 存在多条一次性调课", p.PlacementID, date.Format("2006-01-02")),
			}
		} else if len(oo) == 1 {
			o := oo[0]
			if o.ReplacementCourse == nil {
				return nil, nil, fmt.Errorf("调课 %s 缺失替换课程信息", o.OverrideID)
			}
			entries = append(entries, entry{
				source:      SourceOverride,
				placementID: p.PlacementID,
				overrideID:  o.OverrideID,
				oneOff:      true,
				course:      o.ReplacementCourse,
			})
			continue
		}

		// 永久换课在解析时替换课程，不回写排课
		if o, ok := permanentByPlacement[p.PlacementID]; ok {
			if o.ReplacementCourse == nil {
				return nil, nil, fmt.Errorf("调课 %s 缺失替换课程信息", o.OverrideID)
			}
			entries = append(entries, entry{
				source:      SourceOverride,
				placementID: p.PlacementID,
				overrideID:  o.OverrideID,
				course:      o.ReplacementCourse,
			})
			continue
		}

		entries = append(entries, entry{
			source:      SourcePlacement,
			placementID: p.PlacementID,
			course:      p.Course,
		})
	}

	// 4. 轮换模板当周槽位
	templates, err := s.repo.Rotation.ListActiveOn(ctx, date)
	if err != nil {
		s.logger.Error("解析课表加载轮换模板失败", zap.Error(err))
		return nil, nil, err
	}
	for i := range templates {
		t := &templates[i]
		weekIndex := timeutil.RotationIndex(date, t.StartDate, t.CycleLength)
		for j := range t.Slots {
			slot := &t.Slots[j]
			if slot.WeekIndex != weekIndex || slot.DayOfWeek != dayOfWeek {
				continue
			}
			if slot.Course == nil {
				return nil, nil, fmt.Errorf("轮换槽位 %s 缺失课程信息", slot.SlotID)
			}
			entries = append(entries, entry{
				source:     SourceRotation,
				templateID: t.TemplateID,
				course:     slot.Course,
			})
		}
	}

	// 5. 按时间窗聚合并按优先级裁决
	winners, consumedIDs, err := mergeEntries(entries, date)
	if err != nil {
		return nil, nil, err
	}

	resp := &dto.ResolveDayResponse{
		Date:      date.Format("2006-01-02"),
		DayOfWeek: dayOfWeek,
		WeekType:  weekType,
		Entries:   winners,
	}

	return resp, consumedIDs, nil
}

// mergeEntries 按时间窗聚合条目并取最高优先级
// 同一时间窗存在两个并列最高优先级条目时返回 ConflictError。
// 返回胜出条目（按开始时间排序）及胜出的一次性调课 ID。
func mergeEntries(entries []entry, date time.Time) ([]dto.ScheduleEntryResponse, []string, error) {
	type slotGroup struct {
		key     string
		entries []entry
	}

	groups := make(map[string]*slotGroup)
	var order []string
	for _, e := range entries {
		key := e.course.StartTime + "-" + e.course.EndTime
		g, ok := groups[key]
		if !ok {
			g = &slotGroup{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.entries = append(g.entries, e)
	}

	var winners []dto.ScheduleEntryResponse
	var consumedIDs []string
	for _, key := range order {
		g := groups[key]

		// 低优先级的并列会被高优先级覆盖，只有最高优先级的并列才算冲突
		maxRank := sourceRank[g.entries[0].source]
		for _, e := range g.entries[1:] {
			if r := sourceRank[e.source]; r > maxRank {
				maxRank = r
			}
		}

		var best entry
		found := false
		for _, e := range g.entries {
			if sourceRank[e.source] != maxRank {
				continue
			}
			if found {
				return nil, nil, &pkgerrors.ConflictError{
					RecordID: best.id(),
					OtherID:  e.id(),
					Resource: "timeslot",
					Detail:   fmt.Sprintf("%s 的时间窗 %s 无法裁决", date.Format("2006-01-02"), g.key),
				}
			}
			best = e
			found = true
		}

		if best.oneOff {
			consumedIDs = append(consumedIDs, best.overrideID)
		}

		winners = append(winners, dto.ScheduleEntryResponse{
			Source:      best.source,
			PlacementID: best.placementID,
			TemplateID:  best.templateID,
			OverrideID:  best.overrideID,
			StartTime:   best.course.StartTime,
			EndTime:     best.course.EndTime,
			Course:      toCourseResponse(best.course),
		})
	}

	sort.Slice(winners, func(i, j int) bool { return winners[i].StartTime < winners[j].StartTime })

	if winners == nil {
		winners = []dto.ScheduleEntryResponse{}
	}

	return winners, consumedIDs, nil
}

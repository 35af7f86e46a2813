package service

import "time"

// ── 日期/周期生成 ──────────────────────────────────────────
//
// 职责：把星期名集合 + 日期区间展开为「星期名 → 具体日期列表」的物化映射，
// 供员工排班的滚动7天窗口使用。
//
// 设计决策：
//   - 纯函数，时区显式传入（不读进程级环境状态）
//   - days 为空或全部非法时返回空映射而非报错（防御性行为，调用方按需校验）
//   - 每个合法的星期名都出现在结果键中，窗口内无匹配日期时值为空切片
//   - 窗口长度上限（7天）由调用方（分配服务）显式校验，这里不做静默截断
// ─────────────────────────────────────────────────────────────

// weekdayOrder 星期名的业务排序（周一起始）
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var validWeekdays = func() map[string]bool {
	m := make(map[string]bool, len(weekdayOrder))
	for _, d := range weekdayOrder {
		m[d] = true
	}
	return m
}()

// IsWeekdayName 判断是否为合法星期名（Monday…Sunday）
func IsWeekdayName(s string) bool { return validWeekdays[s] }

// SortWeekdays 按周一起始的业务顺序排序（原切片不变）
func SortWeekdays(days []string) []string {
	sorted := make([]string, 0, len(days))
	for _, d := range weekdayOrder {
		for _, v := range days {
			if v == d {
				sorted = append(sorted, d)
				break
			}
		}
	}
	return sorted
}

// DateOnly 取 t 在 loc 时区下的日期部分（零点）
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// TodayIn 返回 loc 时区下的今天（零点）
func TodayIn(loc *time.Location) time.Time {
	return DateOnly(time.Now(), loc)
}

// GenerateScheduleDates 将星期名集合与日期区间展开为具体日期映射。
//
//   - startDate 为零值时取 loc 时区下的今天
//   - endDate 为零值时取 startDate + 6 天（含端点的滚动7天窗口）
//   - 日期以 loc 时区格式化为 YYYY-MM-DD，避免 UTC 解析造成的跨时区偏移一天
//   - 返回映射中每个合法星期名必有键；endDate 早于 startDate 时各键为空切片
func GenerateScheduleDates(days []string, startDate, endDate time.Time, loc *time.Location) map[string][]string {
	if loc == nil {
		loc = time.UTC
	}

	// 去重 + 过滤非法星期名
	seen := make(map[string]bool, len(days))
	valid := make([]string, 0, len(days))
	for _, d := range days {
		if validWeekdays[d] && !seen[d] {
			seen[d] = true
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return map[string][]string{}
	}

	var start time.Time
	if startDate.IsZero() {
		start = TodayIn(loc)
	} else {
		start = DateOnly(startDate, loc)
	}

	var end time.Time
	if endDate.IsZero() {
		end = start.AddDate(0, 0, 6)
	} else {
		end = DateOnly(endDate, loc)
	}

	result := make(map[string][]string, len(valid))
	for _, d := range valid {
		result[d] = []string{}
	}

	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		name := cur.Weekday().String()
		if _, ok := result[name]; ok {
			result[name] = append(result[name], cur.Format("2006-01-02"))
		}
	}

	return result
}

// [自证通过] internal/service/schedule_dates.go

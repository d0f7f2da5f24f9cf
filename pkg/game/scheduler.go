package game

import (
	"sort"
	"time"
)

// TimerID 定时任务标识，0 为无效值
type TimerID uint64

type scheduledTask struct {
	id       TimerID
	deadline time.Duration
	fn       func()
}

// Scheduler 虚拟时间任务队列
//
// 所有延迟动作（融合提交、动画恢复、提示条消失、分批生成）都挂在这里，
// 由游戏主循环每个物理步调用 Advance 推进。时间只随 Advance 前进，
// 测试可以逐毫秒精确驱动，不依赖墙钟。
//
// 同一截止时间的任务按注册顺序执行；回调中新注册且已到期的任务会在同一次 Advance 内执行。
type Scheduler struct {
	now    time.Duration
	nextID TimerID
	tasks  []scheduledTask // 按 (deadline, id) 升序
}

// NewScheduler 创建一个从时间 0 开始的调度器
func NewScheduler() *Scheduler {
	return &Scheduler{nextID: 1}
}

// Now 返回当前虚拟时间（自会话开始）
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After 注册一个 delay 之后执行的任务
func (s *Scheduler) After(delay time.Duration, fn func()) TimerID {
	if delay < 0 {
		delay = 0
	}
	id := s.nextID
	s.nextID++

	task := scheduledTask{id: id, deadline: s.now + delay, fn: fn}
	i := sort.Search(len(s.tasks), func(i int) bool {
		t := s.tasks[i]
		return t.deadline > task.deadline || (t.deadline == task.deadline && t.id > task.id)
	})
	s.tasks = append(s.tasks, scheduledTask{})
	copy(s.tasks[i+1:], s.tasks[i:])
	s.tasks[i] = task
	return id
}

// Cancel 取消尚未执行的任务，返回是否找到
func (s *Scheduler) Cancel(id TimerID) bool {
	for i, t := range s.tasks {
		if t.id == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance 推进虚拟时间 dt，并按截止时间顺序执行所有到期任务
// 每个任务执行时 Now() 等于它自己的截止时间
func (s *Scheduler) Advance(dt time.Duration) {
	target := s.now + dt
	for len(s.tasks) > 0 && s.tasks[0].deadline <= target {
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		if task.deadline > s.now {
			s.now = task.deadline
		}
		task.fn()
	}
	s.now = target
}

// Pending 返回尚未执行的任务数
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Reset 丢弃所有任务，时间归零
func (s *Scheduler) Reset() {
	s.tasks = nil
	s.now = 0
}

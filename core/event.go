package core

import "time"

// EventKind 是实验事件类型。
type EventKind string

const (
	EventImpression EventKind = "impression" // 曝光
	EventClick      EventKind = "click"      // 点击
	EventPurchase   EventKind = "purchase"   // 购买
)

// ExperimentEvent 是一条只追加、不修改的实验事件：
// 由调用方在用户曝光/点击/购买时回传，供按变体聚合 CTR / 转化率。
type ExperimentEvent struct {
	SessionID   string    `json:"session_id"`
	Variant     string    `json:"variant"`
	CandidateID string    `json:"candidate_id"`
	Kind        EventKind `json:"kind"`

	// Position 是候选在结果列表中的位置（从 0 开始）
	Position  int       `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid 做最小合法性检查；Tracker 对不合法事件记日志后静默丢弃。
func (e *ExperimentEvent) Valid() bool {
	if e == nil || e.Variant == "" || e.CandidateID == "" {
		return false
	}
	switch e.Kind {
	case EventImpression, EventClick, EventPurchase:
		return true
	}
	return false
}

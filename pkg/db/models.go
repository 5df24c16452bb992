package db

import "time"

// User is created on first interaction and never deleted. The id is
// the Telegram user id, not an autoincrement.
type User struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Username  string
	FirstName string `gorm:"not null"`
}

// Schedule is one weekly commitment slot. TimeOfDay is HH:MM in the
// operating timezone. The trigger ids mirror what is currently
// registered with the scheduler so edits can supersede old triggers.
type Schedule struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            int64  `gorm:"index;not null"`
	DayOfWeek         string `gorm:"not null"`
	TimeOfDay         string `gorm:"not null"`
	ReminderTriggerID string
	PromptTriggerID   string
}

type Submission struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        int64     `gorm:"index;not null;index:idx_sub_user_week_cycle"`
	SubmittedAt   time.Time `gorm:"not null"`
	PointsAwarded int       `gorm:"not null"`
	WeekNum       int       `gorm:"not null;index:idx_sub_user_week_cycle"`
	CycleNum      uint      `gorm:"index;not null;index:idx_sub_user_week_cycle"`
}

// Debt is created once per user per week per cycle by the weekly
// report when the owed amount is positive. Week numbers alone recur
// across years within the challenge span, so the cycle is part of the
// identity. RequestMessageID points at the chat message the user must
// reply to; Paid flips one way only.
type Debt struct {
	ID               uint    `gorm:"primaryKey"`
	UserID           int64   `gorm:"index;not null"`
	WeekNum          int     `gorm:"not null"`
	CycleNum         uint    `gorm:"index;not null"`
	Amount           float64 `gorm:"not null"`
	RequestMessageID int     `gorm:"index"`
	Paid             bool    `gorm:"not null;default:false"`
}

// PotDeposit is append-only; exactly one row per settled debt.
type PotDeposit struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      int64     `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	DepositedAt time.Time `gorm:"not null"`
	CycleNum    uint      `gorm:"index;not null"`
}

// Cycle is a contiguous [StartDate, EndDate] accounting period. At most
// one row is active at a time; this is enforced by ResolveActive, not
// by a storage constraint.
type Cycle struct {
	ID           uint      `gorm:"primaryKey"`
	StartDate    time.Time `gorm:"not null"`
	EndDate      time.Time `gorm:"not null"`
	WinnerUserID *int64
	Active       bool `gorm:"not null;default:false;index"`
}

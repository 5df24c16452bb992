package scoring

import (
	"errors"
	"sync"
	"time"

	"github.com/dmoreira/tg-focus-coach/pkg/cycle"
	"github.com/dmoreira/tg-focus-coach/pkg/db"
	"github.com/dmoreira/tg-focus-coach/pkg/window"
	"gorm.io/gorm"
)

const (
	// WindowPoints is awarded when proof arrives within WindowDuration
	// of the prompt; BasePoints otherwise.
	WindowPoints   = 5
	BasePoints     = 3
	WindowDuration = time.Hour

	// WeeklyCap is the number of submissions accepted per user per week.
	WeeklyCap = 2

	// WeeklyStake and PointValue define the weekly bet:
	// debt = max(0, WeeklyStake - points*PointValue).
	WeeklyStake = 50
	PointValue  = 5
)

var (
	ErrCapExceeded    = errors.New("weekly submission cap reached")
	ErrNoMatchingDebt = errors.New("no matching unpaid debt")
)

// userLocks serializes window consumption and the count-then-insert
// pair per (chat, user), so two concurrent submissions cannot both see
// the window open or both pass the cap check.
var userLocks = struct {
	mu    sync.Mutex
	locks map[window.Key]*sync.Mutex
}{locks: make(map[window.Key]*sync.Mutex)}

func lockFor(chatID, userID int64) *sync.Mutex {
	key := window.Key{ChatID: chatID, UserID: userID}
	userLocks.mu.Lock()
	defer userLocks.mu.Unlock()
	lock, ok := userLocks.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		userLocks.locks[key] = lock
	}
	return lock
}

// ScoreSubmission consumes the open window for (chat, user), if any,
// and converts submission timing into points. The window is consumed
// exactly once; a lapsed or absent window scores BasePoints.
func ScoreSubmission(tracker *window.Tracker, chatID, userID int64, now time.Time) int {
	elapsed, ok := tracker.Consume(chatID, userID, now)
	if ok && elapsed < WindowDuration {
		return WindowPoints
	}
	return BasePoints
}

// Award is the outcome of an accepted submission. Ordinal is 1-based
// within the week.
type Award struct {
	Points  int
	Ordinal int
}

// AcceptSubmission enforces the weekly cap, scores the submission and
// inserts it. The cap is checked before the window is consumed, so a
// rejected submission mutates nothing, in-memory state included.
func AcceptSubmission(tracker *window.Tracker, chatID, userID int64, weekNum int, cycleNum uint, now time.Time) (Award, error) {
	lock := lockFor(chatID, userID)
	lock.Lock()
	defer lock.Unlock()

	count, err := db.CountSubmissions(userID, weekNum, cycleNum)
	if err != nil {
		return Award{}, err
	}
	if count >= WeeklyCap {
		return Award{}, ErrCapExceeded
	}

	points := ScoreSubmission(tracker, chatID, userID, now)
	submission := db.Submission{
		UserID:        userID,
		SubmittedAt:   now,
		PointsAwarded: points,
		WeekNum:       weekNum,
		CycleNum:      cycleNum,
	}
	if err := db.DB.Create(&submission).Error; err != nil {
		return Award{}, err
	}
	return Award{Points: points, Ordinal: int(count) + 1}, nil
}

// WeeklyDebt converts a week's points into the owed amount.
func WeeklyDebt(points int) float64 {
	amount := WeeklyStake - points*PointValue
	if amount < 0 {
		return 0
	}
	return float64(amount)
}

// Settlement reports a matched payment.
type Settlement struct {
	Amount   float64
	CycleNum uint
	PotTotal float64
}

// MatchPayment settles the unpaid debt whose request message the user
// replied to. The paid flag flips one way, so a second reply to the
// same message finds nothing and returns ErrNoMatchingDebt.
func MatchPayment(chatID, userID int64, replyMessageID int, now time.Time) (*Settlement, error) {
	lock := lockFor(chatID, userID)
	lock.Lock()
	defer lock.Unlock()

	var debt db.Debt
	err := db.DB.
		Where("user_id = ? AND request_message_id = ? AND paid = ?", userID, replyMessageID, false).
		First(&debt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoMatchingDebt
	}
	if err != nil {
		return nil, err
	}

	cycleNum, err := cycle.ResolveActive(now)
	if err != nil {
		return nil, err
	}

	if err := db.DB.Model(&db.Debt{}).Where("id = ?", debt.ID).Update("paid", true).Error; err != nil {
		return nil, err
	}
	deposit := db.PotDeposit{
		UserID:      userID,
		Amount:      debt.Amount,
		DepositedAt: now,
		CycleNum:    cycleNum,
	}
	if err := db.DB.Create(&deposit).Error; err != nil {
		return nil, err
	}

	total, err := db.PotTotal(cycleNum)
	if err != nil {
		return nil, err
	}
	return &Settlement{Amount: debt.Amount, CycleNum: cycleNum, PotTotal: total}, nil
}

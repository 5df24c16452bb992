package db

import (
	"strconv"

	"github.com/dmoreira/tg-focus-coach/pkg/config"
	"github.com/dmoreira/tg-focus-coach/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Export DB variable
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	var err error
	dsn := "host=" + cfg.Host +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.DBName +
		" port=" + strconv.Itoa(cfg.Port) +
		" sslmode=" + cfg.SSLMode
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	if err := DB.AutoMigrate(&User{}, &Schedule{}, &Submission{}, &Debt{}, &PotDeposit{}, &Cycle{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

// EnsureUser registers a participant on first interaction. Display
// fields are refreshed; the row is never deleted.
func EnsureUser(userID int64, username, firstName string) error {
	if DB == nil {
		return nil
	}
	var user User
	err := DB.Where("user_id = ?", userID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return DB.Create(&User{UserID: userID, Username: username, FirstName: firstName}).Error
	}
	if err != nil {
		return err
	}
	if user.Username != username || user.FirstName != firstName {
		user.Username = username
		user.FirstName = firstName
		return DB.Save(&user).Error
	}
	return nil
}

// Standing is one leaderboard row. Ties on points are broken by
// ascending user id so rankings are deterministic.
type Standing struct {
	UserID    int64
	FirstName string
	Points    int
}

// Contribution is one user's settled total within a cycle.
type Contribution struct {
	UserID    int64
	FirstName string
	Total     float64
}

func SumPoints(userID int64, weekNum int, cycleNum uint) (int, error) {
	var total int
	err := DB.Model(&Submission{}).
		Select("COALESCE(SUM(points_awarded), 0)").
		Where("user_id = ? AND week_num = ? AND cycle_num = ?", userID, weekNum, cycleNum).
		Scan(&total).Error
	return total, err
}

func CountSubmissions(userID int64, weekNum int, cycleNum uint) (int64, error) {
	var count int64
	err := DB.Model(&Submission{}).
		Where("user_id = ? AND week_num = ? AND cycle_num = ?", userID, weekNum, cycleNum).
		Count(&count).Error
	return count, err
}

func PotTotal(cycleNum uint) (float64, error) {
	var total float64
	err := DB.Model(&PotDeposit{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("cycle_num = ?", cycleNum).
		Scan(&total).Error
	return total, err
}

func PotByUser(cycleNum uint) ([]Contribution, error) {
	var rows []Contribution
	err := DB.Model(&PotDeposit{}).
		Select("pot_deposits.user_id AS user_id, users.first_name AS first_name, SUM(pot_deposits.amount) AS total").
		Joins("JOIN users ON users.user_id = pot_deposits.user_id").
		Where("pot_deposits.cycle_num = ?", cycleNum).
		Group("pot_deposits.user_id, users.first_name").
		Order("total DESC, user_id ASC").
		Scan(&rows).Error
	return rows, err
}

func CycleStandings(cycleNum uint) ([]Standing, error) {
	var rows []Standing
	err := DB.Model(&Submission{}).
		Select("submissions.user_id AS user_id, users.first_name AS first_name, SUM(submissions.points_awarded) AS points").
		Joins("JOIN users ON users.user_id = submissions.user_id").
		Where("submissions.cycle_num = ?", cycleNum).
		Group("submissions.user_id, users.first_name").
		Order("points DESC, user_id ASC").
		Scan(&rows).Error
	return rows, err
}

// TopScorer returns nil when the cycle has no submissions.
func TopScorer(cycleNum uint) (*Standing, error) {
	standings, err := CycleStandings(cycleNum)
	if err != nil {
		return nil, err
	}
	if len(standings) == 0 {
		return nil, nil
	}
	return &standings[0], nil
}

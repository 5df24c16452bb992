package scoring

import (
	"fmt"
	"strings"

	"github.com/dmoreira/tg-focus-coach/pkg/db"
)

// WeeklyEntry is one row of the weekly report, already sorted by
// descending points.
type WeeklyEntry struct {
	UserID int64
	Name   string
	Points int
	Debt   float64
}

func rankBadge(position int) string {
	switch position {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return "🔹"
	}
}

func WeeklyReportText(weekNum int, entries []WeeklyEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Week %d Leaderboard 🏆\n\n", weekNum)
	for i, entry := range entries {
		fmt.Fprintf(&b, "%s %s: %d points\n", rankBadge(i), entry.Name, entry.Points)
	}

	b.WriteString("\n---\n\n💸 Weekly Bet 💸\n")

	anyDebt := false
	for _, entry := range entries {
		if entry.Debt > 0 {
			anyDebt = true
			break
		}
	}
	if !anyDebt {
		b.WriteString("Congratulations, nobody owes the pot this week! 🥳")
		return b.String()
	}

	b.WriteString("Amounts due to the pot:\n")
	for _, entry := range entries {
		if entry.Debt > 0 {
			fmt.Fprintf(&b, "• %s: R$ %.2f\n", entry.Name, entry.Debt)
		}
	}
	b.WriteString("\nPlease reply to the payment request I am about to send with your proof of deposit.")
	return b.String()
}

func DebtRequestText(name string, amount float64) string {
	return fmt.Sprintf("%s, your contribution to the pot this week is R$ %.2f.\n\nPlease reply to this message with your proof of payment.", name, amount)
}

func LeaderboardText(c *db.Cycle, standings []db.Standing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Cycle %d Leaderboard 🏆\n(from %s to %s)\n\n",
		c.ID, c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	if len(standings) == 0 {
		b.WriteString("Nobody has scored in this cycle yet.")
		return b.String()
	}
	for i, s := range standings {
		fmt.Fprintf(&b, "%s %s: %d points\n", rankBadge(i), s.FirstName, s.Points)
	}
	return strings.TrimRight(b.String(), "\n")
}

func PotReportText(cycleNum uint, total float64, contributions []db.Contribution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 Pot Accounting (Cycle %d) 💰\n\n", cycleNum)
	fmt.Fprintf(&b, "Total in the pot: R$ %.2f\n\n", total)
	b.WriteString("Individual contributions this cycle:\n")
	if len(contributions) == 0 {
		b.WriteString("Nobody has deposited anything yet.")
		return b.String()
	}
	for _, c := range contributions {
		fmt.Fprintf(&b, "• %s: R$ %.2f\n", c.FirstName, c.Total)
	}
	return strings.TrimRight(b.String(), "\n")
}

func CycleCloseSummaryText(cycleNum uint, winner *db.Standing, potTotal float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 END OF CYCLE %d 🎉\n\n", cycleNum)
	switch {
	case winner != nil && potTotal > 0:
		fmt.Fprintf(&b, "The cycle winner is %s with %d points!\n\n", winner.FirstName, winner.Points)
		fmt.Fprintf(&b, "Congratulations %s, you claim the full prize of R$ %.2f! 🤑", winner.FirstName, potTotal)
	case winner != nil:
		fmt.Fprintf(&b, "The cycle is over and %s leads with %d points.\n\n", winner.FirstName, winner.Points)
		b.WriteString("The pot is empty, so there is no cash prize. Congratulations on the discipline!")
	default:
		b.WriteString("The cycle ended with no scores recorded. The pot resets for the next cycle.")
	}
	return b.String()
}

func PaymentConfirmedText(s *Settlement) string {
	return fmt.Sprintf("✅ Payment received! R$ %.2f added to the pot.\nTotal in the pot (Cycle %d): R$ %.2f", s.Amount, s.CycleNum, s.PotTotal)
}

func SubmissionReceivedText(name string, award Award) string {
	return fmt.Sprintf("Proof received, %s! 🥳\n\n+%d points for you!\n(%d of %d this week)", name, award.Points, award.Ordinal, WeeklyCap)
}

func CapReachedText(name string) string {
	return fmt.Sprintf("Limit reached! %s, you have already sent your %d proofs this week.", name, WeeklyCap)
}

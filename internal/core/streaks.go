package core

// StreakSummary holds the streak records of one player within a period.
//
// Win and loss runs are tracked independently and each keeps two records: the
// run with the most sessions (its summed money attached) and the run with the
// most extreme summed money (its length attached). The two records can point
// to different runs. Current is the live streak: positive for an ongoing win
// streak, negative for an ongoing loss streak, zero when the last active
// session broke even or there is no data.
type StreakSummary struct {
	MaxWinRunLength  int
	MaxWinRunMoney   Money
	BestWinRunMoney  Money
	BestWinRunLength int

	MaxLossRunLength   int
	MaxLossRunMoney    Money
	WorstLossRunMoney  Money
	WorstLossRunLength int

	Current int
}

// DetectStreaks scans the chronologically ordered profits of a player's
// active sessions. A streak is a maximal run of strictly same-signed values;
// zero is neither win nor loss and breaks any run.
func DetectStreaks(profits []Money) StreakSummary {
	var s StreakSummary

	closeRun := func(sign int, count int, sum int64) {
		switch sign {
		case 1:
			if count > s.MaxWinRunLength {
				s.MaxWinRunLength = count
				s.MaxWinRunMoney = Money{Cents: sum}
			}
			if sum > s.BestWinRunMoney.Cents {
				s.BestWinRunMoney = Money{Cents: sum}
				s.BestWinRunLength = count
			}
		case -1:
			if count > s.MaxLossRunLength {
				s.MaxLossRunLength = count
				s.MaxLossRunMoney = Money{Cents: sum}
			}
			if sum < s.WorstLossRunMoney.Cents {
				s.WorstLossRunMoney = Money{Cents: sum}
				s.WorstLossRunLength = count
			}
		}
	}

	runSign, runCount := 0, 0
	var runSum int64
	// The appended zero acts as a run terminator so the final run is closed.
	for i := 0; i <= len(profits); i++ {
		var v Money
		if i < len(profits) {
			v = profits[i]
		}
		sign := v.Sign()
		if sign == 0 {
			closeRun(runSign, runCount, runSum)
			runSign, runCount, runSum = 0, 0, 0
			continue
		}
		if sign == runSign {
			runCount++
			runSum += v.Cents
			continue
		}
		closeRun(runSign, runCount, runSum)
		runSign, runCount, runSum = sign, 1, v.Cents
	}

	s.Current = currentStreak(profits)
	return s
}

// currentStreak walks backward from the most recent active session while the
// sign stays consistent. The first sign change or break-even stops the walk.
func currentStreak(profits []Money) int {
	streak := 0
	for i := len(profits) - 1; i >= 0; i-- {
		switch profits[i].Sign() {
		case 1:
			if streak < 0 {
				return streak
			}
			streak++
		case -1:
			if streak > 0 {
				return streak
			}
			streak--
		default:
			return streak
		}
	}
	return streak
}

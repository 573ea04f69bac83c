package core

import (
	"gonum.org/v1/gonum/stat"
)

// Trend classifies one bankroll step by the sign of that session's raw profit
// (not the cumulative sign), so a chart can color the segment.
type Trend string

const (
	TrendWin  Trend = "win"
	TrendLoss Trend = "loss"
	TrendFlat Trend = "flat"
)

type (
	// TimelinePoint is one date of the club-wide period from the player's
	// perspective. Dates the player missed become zero-profit, zero-buy-in
	// placeholders; Played distinguishes them from a true break-even.
	TimelinePoint struct {
		Date    Date
		BuyIn   Money
		CashOut Money
		Profit  Money
		Played  bool
	}

	// BankrollPoint is one point of the cumulative-profit path. The series
	// starts with a synthetic zero point one day before the first timeline
	// date so shaded-area rendering has a baseline.
	BankrollPoint struct {
		Date       Date
		Cumulative Money
		Step       Money
		Trend      Trend
	}

	// PersonalReport is one player's full statistics against a filtered
	// ledger. It is recomputed fresh on every request and holds no references
	// back into the ledger.
	PersonalReport struct {
		Player string

		TotalProfit    Money
		TotalBuyIn     Money
		SessionsPlayed int
		ClubSessions   int
		AttendancePct  float64
		ROI            float64

		Wins    int
		Losses  int
		WinRate float64

		MaxWin  Money
		MaxLoss Money
		AvgWin  float64
		AvgLoss float64
		StdDev  float64

		Streaks  StreakSummary
		Timeline []TimelinePoint
		Bankroll []BankrollPoint
	}
)

// BuildPersonalReport computes the report for one player over an
// already-filtered ledger slice. The timeline covers every distinct club date
// in the slice, with absences left-joined in as placeholders. A player with no
// entries in the period gets a defined zero report, not an error.
func BuildPersonalReport(entries []SessionEntry, player string) PersonalReport {
	rep := PersonalReport{Player: player}

	dates := distinctDates(entries)
	rep.ClubSessions = len(dates)
	if len(dates) == 0 {
		return rep
	}

	// One point per club date; a player with several rows on one date has
	// them summed, matching the per-session granularity of the report.
	byDate := map[string]TimelinePoint{}
	for _, e := range entries {
		if e.Player != player {
			continue
		}
		p := byDate[e.Date.ISO()]
		p.Date = e.Date
		p.BuyIn = p.BuyIn.Add(e.BuyIn)
		p.CashOut = p.CashOut.Add(e.CashOut)
		p.Profit = p.Profit.Add(e.Profit)
		byDate[e.Date.ISO()] = p
	}

	rep.Timeline = make([]TimelinePoint, 0, len(dates))
	var activeProfits []Money
	for _, d := range dates {
		p, ok := byDate[d.ISO()]
		if !ok {
			p = TimelinePoint{Date: d}
		}
		p.Played = p.BuyIn.Cents > 0
		rep.Timeline = append(rep.Timeline, p)

		rep.TotalProfit = rep.TotalProfit.Add(p.Profit)
		if !p.Played {
			continue
		}
		rep.SessionsPlayed++
		rep.TotalBuyIn = rep.TotalBuyIn.Add(p.BuyIn)
		activeProfits = append(activeProfits, p.Profit)
		// MaxWin/MaxLoss are the extremes of the active profit series, so an
		// all-loss period reports a negative MaxWin and vice versa.
		if rep.SessionsPlayed == 1 {
			rep.MaxWin = p.Profit
			rep.MaxLoss = p.Profit
		} else {
			if p.Profit.Cents > rep.MaxWin.Cents {
				rep.MaxWin = p.Profit
			}
			if p.Profit.Cents < rep.MaxLoss.Cents {
				rep.MaxLoss = p.Profit
			}
		}
		switch p.Profit.Sign() {
		case 1:
			rep.Wins++
		case -1:
			rep.Losses++
		}
	}

	if rep.ClubSessions > 0 {
		rep.AttendancePct = float64(rep.SessionsPlayed) / float64(rep.ClubSessions) * 100.0
	}
	if rep.TotalBuyIn.Cents > 0 {
		rep.ROI = rep.TotalProfit.Euros() / rep.TotalBuyIn.Euros() * 100.0
	}
	if rep.SessionsPlayed > 0 {
		rep.WinRate = float64(rep.Wins) / float64(rep.SessionsPlayed) * 100.0
	}

	rep.AvgWin = meanBySign(activeProfits, 1)
	rep.AvgLoss = meanBySign(activeProfits, -1)
	rep.StdDev = profitStdDev(activeProfits)
	rep.Streaks = DetectStreaks(activeProfits)
	rep.Bankroll = buildBankroll(rep.Timeline)
	return rep
}

// buildBankroll cumulative-sums profit across the absence-inclusive timeline,
// prefixed with a zero point one day before the first date. Absences produce
// flat segments.
func buildBankroll(timeline []TimelinePoint) []BankrollPoint {
	if len(timeline) == 0 {
		return nil
	}
	out := make([]BankrollPoint, 0, len(timeline)+1)
	out = append(out, BankrollPoint{
		Date:  timeline[0].Date.AddDays(-1),
		Trend: TrendFlat,
	})
	var cum Money
	for _, p := range timeline {
		cum = cum.Add(p.Profit)
		out = append(out, BankrollPoint{
			Date:       p.Date,
			Cumulative: cum,
			Step:       p.Profit,
			Trend:      stepTrend(p.Profit),
		})
	}
	return out
}

func stepTrend(step Money) Trend {
	switch step.Sign() {
	case 1:
		return TrendWin
	case -1:
		return TrendLoss
	default:
		return TrendFlat
	}
}

// meanBySign averages the profits matching the sign, in euros. Zero when none
// match.
func meanBySign(profits []Money, sign int) float64 {
	var xs []float64
	for _, p := range profits {
		if p.Sign() == sign {
			xs = append(xs, p.Euros())
		}
	}
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// profitStdDev is the sample standard deviation of active-session profit in
// euros, defined as 0 below two samples so no NaN ever surfaces.
func profitStdDev(profits []Money) float64 {
	if len(profits) < 2 {
		return 0
	}
	xs := make([]float64, len(profits))
	for i, p := range profits {
		xs[i] = p.Euros()
	}
	return stat.StdDev(xs, nil)
}

package core

import "sort"

type (
	// PlayerStanding is one row of the club leaderboard table.
	PlayerStanding struct {
		Player   string
		Sessions int
		Volume   Money
		Profit   Money
		ROI      float64
	}

	// Award names a player and the figure that earned the title. An empty
	// Player means nobody qualified.
	Award struct {
		Player string
		Amount Money
	}

	// SniperAward is the single best single-session profit, with the date it
	// happened. Ties go to the first entry in row order.
	SniperAward struct {
		Player string
		Date   Date
		Amount Money
	}

	// AttendanceAward is the highest distinct-date attendance count. An empty
	// Player means every candidate was excluded.
	AttendanceAward struct {
		Player string
		Count  int
	}

	// DailyStat aggregates one club date: how many entries were recorded and
	// the summed buy-in pot.
	DailyStat struct {
		Date    Date
		Players int
		Pot     Money
	}

	// ThronePoint is one segment of the leader-over-time path: who holds the
	// highest cumulative profit at that date and how much it is. Ties break
	// alphabetically by player name so repeated runs agree.
	ThronePoint struct {
		Date       Date
		Leader     string
		Cumulative Money
	}

	// ClubReport is the aggregate view of a filtered ledger.
	ClubReport struct {
		Sessions   int
		Volume     Money
		AvgPot     float64
		AvgPlayers float64

		Standings    []PlayerStanding
		Shark        Award
		Sniper       SniperAward
		Stakanovista AttendanceAward

		Daily  []DailyStat
		Throne []ThronePoint
	}
)

// BuildClubReport computes club-wide statistics over an already-filtered
// ledger slice. Players in excluded are left out of the attendance award only;
// they still appear everywhere else.
func BuildClubReport(entries []SessionEntry, excluded []string) ClubReport {
	var rep ClubReport
	if len(entries) == 0 {
		return rep
	}

	dates := distinctDates(entries)
	names := players(entries)
	rep.Sessions = len(dates)

	// Per-player aggregates keyed by name; session count is distinct dates.
	type agg struct {
		volume     Money
		profit     Money
		dates      map[string]struct{}
	}
	aggs := map[string]*agg{}
	for _, name := range names {
		aggs[name] = &agg{dates: map[string]struct{}{}}
	}

	for _, e := range entries {
		a := aggs[e.Player]
		a.volume = a.volume.Add(e.BuyIn)
		a.profit = a.profit.Add(e.Profit)
		a.dates[e.Date.ISO()] = struct{}{}
		rep.Volume = rep.Volume.Add(e.BuyIn)

		if rep.Sniper.Player == "" || e.Profit.Cents > rep.Sniper.Amount.Cents {
			rep.Sniper = SniperAward{Player: e.Player, Date: e.Date, Amount: e.Profit}
		}
	}

	if rep.Sessions > 0 {
		rep.AvgPot = rep.Volume.Euros() / float64(rep.Sessions)
		rep.AvgPlayers = float64(len(entries)) / float64(rep.Sessions)
	}

	excludedSet := map[string]struct{}{}
	for _, p := range excluded {
		excludedSet[p] = struct{}{}
	}

	// names is alphabetical, so strict > comparisons give the documented
	// first-alphabetical tie-break for Shark and Stakanovista.
	first := true
	for _, name := range names {
		a := aggs[name]
		st := PlayerStanding{
			Player:   name,
			Sessions: len(a.dates),
			Volume:   a.volume,
			Profit:   a.profit,
		}
		if a.volume.Cents > 0 {
			st.ROI = a.profit.Euros() / a.volume.Euros() * 100.0
		}
		rep.Standings = append(rep.Standings, st)

		if first || a.profit.Cents > rep.Shark.Amount.Cents {
			rep.Shark = Award{Player: name, Amount: a.profit}
			first = false
		}
		if _, out := excludedSet[name]; !out && len(a.dates) > rep.Stakanovista.Count {
			rep.Stakanovista = AttendanceAward{Player: name, Count: len(a.dates)}
		}
	}

	sort.SliceStable(rep.Standings, func(i, j int) bool {
		return rep.Standings[i].Profit.Cents > rep.Standings[j].Profit.Cents
	})

	rep.Daily = buildDaily(entries, dates)
	rep.Throne = buildThrone(entries, dates, names)
	return rep
}

func buildDaily(entries []SessionEntry, dates []Date) []DailyStat {
	byDate := map[string]*DailyStat{}
	for _, e := range entries {
		s := byDate[e.Date.ISO()]
		if s == nil {
			s = &DailyStat{Date: e.Date}
			byDate[e.Date.ISO()] = s
		}
		s.Players++
		s.Pot = s.Pot.Add(e.BuyIn)
	}
	out := make([]DailyStat, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d.ISO()])
	}
	return out
}

// buildThrone reconstructs the leader-over-time path: per-date profit pivoted
// by player, forward-summed, then the max cumulative player at each date. A
// synthetic zero point one day before the first date is attributed to
// whichever player leads first.
func buildThrone(entries []SessionEntry, dates []Date, names []string) []ThronePoint {
	if len(dates) == 0 {
		return nil
	}

	perDate := map[string]map[string]int64{}
	for _, e := range entries {
		day := perDate[e.Date.ISO()]
		if day == nil {
			day = map[string]int64{}
			perDate[e.Date.ISO()] = day
		}
		day[e.Player] += e.Profit.Cents
	}

	out := make([]ThronePoint, 0, len(dates)+1)
	cum := make(map[string]int64, len(names))
	for _, d := range dates {
		for player, cents := range perDate[d.ISO()] {
			cum[player] += cents
		}
		// names is alphabetical; strict > keeps the tie-break stable.
		leader := names[0]
		best := cum[leader]
		for _, name := range names[1:] {
			if cum[name] > best {
				leader, best = name, cum[name]
			}
		}
		out = append(out, ThronePoint{Date: d, Leader: leader, Cumulative: Money{Cents: best}})
	}

	lead := ThronePoint{Date: dates[0].AddDays(-1), Leader: out[0].Leader}
	return append([]ThronePoint{lead}, out...)
}

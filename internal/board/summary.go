// internal/board/summary.go
package board

import (
	"math"
	"sort"
	"time"

	"jobboard-agent/internal/intent"
)

const (
	maxPriorities  = 5
	staleAfterDays = 14
	planHorizon    = 7
)

type TodaySummary struct {
	Overdue     []Job
	DueToday    []Job
	InInterview []Job
	// Priorities is overdue, then due today, then in interview, capped at five.
	Priorities []Job
}

// TodaySnapshot groups jobs by follow-up urgency relative to the local day
// of now.
func TodaySnapshot(jobs []Job, now time.Time) TodaySummary {
	start := startOfDay(now)
	end := start.AddDate(0, 0, 1)

	var s TodaySummary
	for _, j := range jobs {
		if j.FollowUpAt != nil {
			switch {
			case j.FollowUpAt.Before(start):
				s.Overdue = append(s.Overdue, j)
			case j.FollowUpAt.Before(end):
				s.DueToday = append(s.DueToday, j)
			}
		}
		if j.Status == intent.StatusInterview {
			s.InInterview = append(s.InInterview, j)
		}
	}

	for _, group := range [][]Job{s.Overdue, s.DueToday, s.InInterview} {
		for _, j := range group {
			if len(s.Priorities) == maxPriorities {
				return s
			}
			s.Priorities = append(s.Priorities, j)
		}
	}
	return s
}

type KPIs struct {
	Total         int `json:"total"`
	Interviews    int `json:"interviews"`
	Offers        int `json:"offers"`
	InterviewRate int `json:"interviewRate"` // percent, rounded
	OfferRate     int `json:"offerRate"`     // percent, rounded
}

func ComputeKPIs(jobs []Job) KPIs {
	k := KPIs{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case intent.StatusInterview:
			k.Interviews++
		case intent.StatusOffer:
			k.Offers++
		}
	}
	if k.Total > 0 {
		k.InterviewRate = int(math.Round(float64(k.Interviews) * 100 / float64(k.Total)))
		k.OfferRate = int(math.Round(float64(k.Offers) * 100 / float64(k.Total)))
	}
	return k
}

// DayPlan is the follow-ups scheduled on one calendar day.
type DayPlan struct {
	Date string
	Jobs []Job
}

type WeeklySummary struct {
	Start      time.Time
	End        time.Time
	Overdue    []Job
	FollowUps  []DayPlan
	Interviews []Job
	// Stale applications have no follow-up and no update for two weeks.
	Stale []Job
	KPIs  KPIs
}

// WeeklyPlan covers today plus the next six days.
func WeeklyPlan(jobs []Job, now time.Time) WeeklySummary {
	start := startOfDay(now)
	end := start.AddDate(0, 0, planHorizon)
	staleBefore := now.AddDate(0, 0, -staleAfterDays)

	w := WeeklySummary{Start: start, End: end, KPIs: ComputeKPIs(jobs)}
	byDay := map[string][]Job{}

	for _, j := range jobs {
		switch {
		case j.FollowUpAt != nil && j.FollowUpAt.Before(start):
			w.Overdue = append(w.Overdue, j)
		case j.FollowUpAt != nil && j.FollowUpAt.Before(end):
			day := j.FollowUpAt.In(now.Location()).Format(DateLayout)
			byDay[day] = append(byDay[day], j)
		}

		switch {
		case j.Status == intent.StatusInterview:
			w.Interviews = append(w.Interviews, j)
		case j.Status == intent.StatusApplied && j.FollowUpAt == nil && j.UpdatedAt.Before(staleBefore):
			w.Stale = append(w.Stale, j)
		}
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		group := byDay[d]
		sort.SliceStable(group, func(i, k int) bool {
			return group[i].FollowUpAt.Before(*group[k].FollowUpAt)
		})
		w.FollowUps = append(w.FollowUps, DayPlan{Date: d, Jobs: group})
	}
	return w
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

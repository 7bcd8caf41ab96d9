// Package stats derives the training statistics shown on the dashboard.
// Everything is recomputed from the full entry log on each request.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/2beens/gymlog/internal/dates"
	"github.com/2beens/gymlog/internal/workouts"
)

const (
	StreakHorizonDays    = 365
	FrequencyWindowDays  = 84
	FrequencyWindowWeeks = 12
	TopExercisesLimit    = 5
	DashboardStreakDays  = 30
)

// GroupLookup resolves an exercise id to its muscle group id.
type GroupLookup func(exerciseID string) (groupID string, ok bool)

type ExerciseStat struct {
	ExerciseID string  `json:"exerciseId"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MuscleGroupStat struct {
	GroupID    string  `json:"groupId"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Snapshot struct {
	// distinct training days, not entries
	TotalWorkouts           int               `json:"totalWorkouts"`
	TotalVolume             float64           `json:"totalVolume"`
	TotalExercises          int               `json:"totalExercises"`
	CurrentStreak           int               `json:"currentStreak"`
	BestStreak              int               `json:"bestStreak"`
	AvgWorkoutsPerWeek      float64           `json:"avgWorkoutsPerWeek"`
	TopExercises            []ExerciseStat    `json:"topExercises"`
	MuscleGroupDistribution []MuscleGroupStat `json:"muscleGroupDistribution"`
}

// Compute builds the snapshot for entries as seen on the calendar day of today
// (today must already be in the user's time zone).
func Compute(entries []workouts.Entry, groupOf GroupLookup, today time.Time) Snapshot {
	days := make(map[string]bool)
	exerciseIDs := make(map[string]bool)
	var volume float64
	for _, e := range entries {
		days[dates.Normalize(e.Date)] = true
		exerciseIDs[e.ExerciseID] = true
		volume += e.Volume()
	}

	sortedDays := make([]string, 0, len(days))
	for d := range days {
		sortedDays = append(sortedDays, d)
	}
	sort.Strings(sortedDays)

	return Snapshot{
		TotalWorkouts:           len(days),
		TotalVolume:             volume,
		TotalExercises:          len(exerciseIDs),
		CurrentStreak:           CurrentStreak(days, today),
		BestStreak:              BestStreak(sortedDays),
		AvgWorkoutsPerWeek:      AvgWorkoutsPerWeek(sortedDays, today),
		TopExercises:            TopExercises(entries, TopExercisesLimit),
		MuscleGroupDistribution: MuscleGroupDistribution(entries, groupOf),
	}
}

// CurrentStreak counts consecutive training days ending today, walking back at
// most StreakHorizonDays. No entry yet today does not break the streak.
func CurrentStreak(days map[string]bool, today time.Time) int {
	day, err := dates.ParseDayKey(dates.DayKey(today))
	if err != nil {
		return 0
	}

	streak := 0
	for i := 0; i < StreakHorizonDays; i++ {
		if days[dates.DayKey(day)] {
			streak++
		} else if i > 0 {
			break
		}
		day = day.AddDate(0, 0, -1)
	}

	return streak
}

// StrictStreak counts consecutive training days ending today, walking back at
// most horizonDays. Unlike CurrentStreak, a day without entries breaks the run
// even when it is today.
func StrictStreak(days map[string]bool, today time.Time, horizonDays int) int {
	day, err := dates.ParseDayKey(dates.DayKey(today))
	if err != nil {
		return 0
	}

	streak := 0
	for i := 0; i < horizonDays && days[dates.DayKey(day)]; i++ {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}

// BestStreak returns the longest run of consecutive calendar days in sortedDays
// (ascending, distinct). Day keys that do not parse end a run.
func BestStreak(sortedDays []string) int {
	if len(sortedDays) == 0 {
		return 0
	}

	best, run := 1, 1
	for i := 1; i < len(sortedDays); i++ {
		diff, err := dates.DayKeysBetween(sortedDays[i-1], sortedDays[i])
		if err == nil && diff == 1 {
			run++
			continue
		}
		best = max(best, run)
		run = 1
	}

	return max(best, run)
}

// AvgWorkoutsPerWeek is the number of training days within the trailing
// FrequencyWindowDays divided by FrequencyWindowWeeks, rounded to one decimal.
func AvgWorkoutsPerWeek(days []string, today time.Time) float64 {
	todayCivil, err := dates.ParseDayKey(dates.DayKey(today))
	if err != nil {
		return 0
	}
	cutoff := dates.DayKey(todayCivil.AddDate(0, 0, -FrequencyWindowDays))

	count := 0
	for _, d := range days {
		if dates.IsDayKey(d) && d >= cutoff {
			count++
		}
	}

	return math.Round(float64(count)/FrequencyWindowWeeks*10) / 10
}

// TopExercises ranks exercises by number of entries. Ties keep first-seen order;
// the name is the one on the first entry seen. Percentages are relative to the leader.
func TopExercises(entries []workouts.Entry, n int) []ExerciseStat {
	var ranked []ExerciseStat
	index := make(map[string]int)
	for _, e := range entries {
		if i, ok := index[e.ExerciseID]; ok {
			ranked[i].Count++
			continue
		}
		index[e.ExerciseID] = len(ranked)
		ranked = append(ranked, ExerciseStat{
			ExerciseID: e.ExerciseID,
			Name:       e.ExerciseName,
			Count:      1,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if len(ranked) == 0 {
		return []ExerciseStat{}
	}

	maxCount := ranked[0].Count
	for i := range ranked {
		ranked[i].Percentage = 100 * float64(ranked[i].Count) / float64(maxCount)
	}

	return ranked
}

// MuscleGroupDistribution shares entries between muscle groups. Entries whose
// exercise no longer resolves are left out of this distribution only.
func MuscleGroupDistribution(entries []workouts.Entry, groupOf GroupLookup) []MuscleGroupStat {
	if groupOf == nil {
		return []MuscleGroupStat{}
	}

	var groups []MuscleGroupStat
	index := make(map[string]int)
	total := 0
	for _, e := range entries {
		groupID, ok := groupOf(e.ExerciseID)
		if !ok {
			continue
		}
		total++
		if i, ok := index[groupID]; ok {
			groups[i].Count++
			continue
		}
		index[groupID] = len(groups)
		groups = append(groups, MuscleGroupStat{GroupID: groupID, Count: 1})
	}

	if total == 0 {
		return []MuscleGroupStat{}
	}

	for i := range groups {
		groups[i].Percentage = 100 * float64(groups[i].Count) / float64(total)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Percentage > groups[j].Percentage
	})

	return groups
}

type WeekSummary struct {
	WeekStart   string   `json:"weekStart"`
	WeekEnd     string   `json:"weekEnd"`
	WorkoutDays int      `json:"workoutDays"`
	Entries     int      `json:"entries"`
	Days        []string `json:"days"`
	Volume      float64  `json:"volume"`
	// strict run ending today, capped at DashboardStreakDays
	Streak int `json:"streak"`
}

// SummarizeWeek covers the Monday-to-Sunday week containing today.
func SummarizeWeek(entries []workouts.Entry, today time.Time) WeekSummary {
	start := dates.WeekStart(today)
	summary := WeekSummary{
		WeekStart: dates.DayKey(start),
		WeekEnd:   dates.DayKey(start.AddDate(0, 0, 6)),
		Days:      []string{},
	}

	seen := make(map[string]bool)
	allDays := make(map[string]bool)
	for _, e := range entries {
		day := dates.Normalize(e.Date)
		if !dates.IsDayKey(day) {
			continue
		}
		allDays[day] = true
		if day < summary.WeekStart || day > summary.WeekEnd {
			continue
		}
		summary.Entries++
		summary.Volume += e.Volume()
		if !seen[day] {
			seen[day] = true
			summary.Days = append(summary.Days, day)
		}
	}
	sort.Strings(summary.Days)
	summary.WorkoutDays = len(summary.Days)
	summary.Streak = StrictStreak(allDays, today, DashboardStreakDays)

	return summary
}

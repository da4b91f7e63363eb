package helpers

import (
	"sort"

	"github.com/doeshing/aiterm/internal/domain"
)

// CommandStatistic represents usage statistics for a command
type CommandStatistic struct {
	Command string
	Count   int
}

// HistoryStatistics summarizes a slice of history records.
type HistoryStatistics struct {
	Total      int
	Executed   int
	Successful int
	Declined   int
	Blocked    int
	ByLevel    map[domain.RiskLevel]int
	ByRule     map[string]int
	Frequency  map[string]int
}

// AnalyzeHistory tallies records by outcome, level and matched rule.
func AnalyzeHistory(records []domain.HistoryRecord) HistoryStatistics {
	stats := HistoryStatistics{
		Total:     len(records),
		ByLevel:   make(map[domain.RiskLevel]int),
		ByRule:    make(map[string]int),
		Frequency: make(map[string]int),
	}
	for _, rec := range records {
		switch {
		case rec.Executed:
			stats.Executed++
			if rec.Success {
				stats.Successful++
			}
		case rec.Action == domain.ActionConfirm:
			stats.Declined++
		case rec.Action == domain.ActionBlock:
			stats.Blocked++
		}
		stats.ByLevel[riskOrSafe(rec.RiskLevel)]++
		if rec.MatchedRule != "" && rec.MatchedRule != domain.RuleNone {
			stats.ByRule[rec.MatchedRule]++
		}
		stats.Frequency[rec.Command]++
	}
	return stats
}

// CalculateTopCommands returns the top N most frequently used commands
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(commandFrequency map[string]int, limit int) []CommandStatistic {
	stats := make([]CommandStatistic, 0, len(commandFrequency))
	for cmd, count := range commandFrequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})
	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, executedCount int) float64 {
	if executedCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(executedCount) * 100.0
}

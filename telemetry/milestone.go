package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// MilestoneType identifies the kind of milestone.
type MilestoneType string

const (
	MilestoneNewBestScore        MilestoneType = "new_best_score"
	MilestoneFitnessBreakthrough MilestoneType = "fitness_breakthrough"
	MilestoneRestart             MilestoneType = "restart"
	MilestoneStagnation          MilestoneType = "stagnation"
)

// Milestone marks a notable generation in a training run.
type Milestone struct {
	Type        MilestoneType `csv:"type"`
	Generation  int           `csv:"generation"`
	Tick        int64         `csv:"tick"`
	Description string        `csv:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"generation", m.Generation,
		"tick", m.Tick,
		"description", m.Description,
	)
}

// MilestoneDetector watches finished generations for notable changes.
type MilestoneDetector struct {
	// Rolling history of best fitness (circular buffer)
	history     []float64
	historySize int
	historyIdx  int
	historyFull bool

	multiplier      float64
	stagnationAfter int

	bestScore      int
	sinceImproved  int
	stagnationSeen bool
}

// NewMilestoneDetector creates a detector.
// historySize: generations averaged for breakthrough detection.
// multiplier: best fitness must exceed the rolling mean by this factor.
// stagnationAfter: generations without a new best score before reporting stagnation (0 disables).
func NewMilestoneDetector(historySize int, multiplier float64, stagnationAfter int) *MilestoneDetector {
	if historySize < 3 {
		historySize = 3
	}
	if multiplier <= 1 {
		multiplier = 2
	}
	return &MilestoneDetector{
		history:         make([]float64, historySize),
		historySize:     historySize,
		multiplier:      multiplier,
		stagnationAfter: stagnationAfter,
	}
}

// Check analyzes the latest generation and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats GenerationStats) []Milestone {
	var milestones []Milestone

	if m := md.checkNewBest(stats); m != nil {
		milestones = append(milestones, *m)
	}
	if m := md.checkBreakthrough(stats); m != nil {
		milestones = append(milestones, *m)
	}
	if stats.Restarted {
		milestones = append(milestones, Milestone{
			Type:        MilestoneRestart,
			Generation:  stats.Generation,
			Tick:        stats.EndTick,
			Description: "No agent earned positive fitness; population reinitialized",
		})
	}
	if m := md.checkStagnation(stats); m != nil {
		milestones = append(milestones, *m)
	}

	md.addToHistory(stats.BestFitness)
	return milestones
}

func (md *MilestoneDetector) addToHistory(bestFitness float64) {
	md.history[md.historyIdx] = bestFitness
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []float64 {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

func (md *MilestoneDetector) checkNewBest(stats GenerationStats) *Milestone {
	if stats.MaxScore <= md.bestScore {
		md.sinceImproved++
		return nil
	}
	old := md.bestScore
	md.bestScore = stats.MaxScore
	md.sinceImproved = 0
	md.stagnationSeen = false

	return &Milestone{
		Type:        MilestoneNewBestScore,
		Generation:  stats.Generation,
		Tick:        stats.EndTick,
		Description: fmt.Sprintf("Best score rose from %d to %d", old, stats.MaxScore),
	}
}

func (md *MilestoneDetector) checkBreakthrough(stats GenerationStats) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	avg := stat.Mean(history, nil)
	if avg <= 0 || stats.BestFitness <= avg*md.multiplier {
		return nil
	}

	return &Milestone{
		Type:       MilestoneFitnessBreakthrough,
		Generation: stats.Generation,
		Tick:       stats.EndTick,
		Description: fmt.Sprintf("Best fitness %.0f is %.1fx the recent average (%.0f)",
			stats.BestFitness, stats.BestFitness/avg, avg),
	}
}

func (md *MilestoneDetector) checkStagnation(stats GenerationStats) *Milestone {
	if md.stagnationAfter <= 0 || md.stagnationSeen || md.sinceImproved < md.stagnationAfter {
		return nil
	}
	md.stagnationSeen = true

	return &Milestone{
		Type:        MilestoneStagnation,
		Generation:  stats.Generation,
		Tick:        stats.EndTick,
		Description: fmt.Sprintf("No new best score for %d generations (best %d)", md.sinceImproved, md.bestScore),
	}
}

package telemetry

import "testing"

func hasMilestone(ms []Milestone, typ MilestoneType) bool {
	for _, m := range ms {
		if m.Type == typ {
			return true
		}
	}
	return false
}

func TestMilestoneDetector_NewBestScore(t *testing.T) {
	md := NewMilestoneDetector(10, 2, 0)

	if ms := md.Check(GenerationStats{Generation: 1, MaxScore: 0}); hasMilestone(ms, MilestoneNewBestScore) {
		t.Error("score 0 should not be a new best")
	}
	if ms := md.Check(GenerationStats{Generation: 2, MaxScore: 2}); !hasMilestone(ms, MilestoneNewBestScore) {
		t.Error("expected new_best_score milestone")
	}
	if ms := md.Check(GenerationStats{Generation: 3, MaxScore: 2}); hasMilestone(ms, MilestoneNewBestScore) {
		t.Error("matching the best is not a new best")
	}
}

func TestMilestoneDetector_FitnessBreakthrough(t *testing.T) {
	md := NewMilestoneDetector(10, 2, 0)

	for i := 1; i <= 5; i++ {
		if ms := md.Check(GenerationStats{Generation: i, BestFitness: 1100}); hasMilestone(ms, MilestoneFitnessBreakthrough) {
			t.Fatalf("generation %d: steady fitness should not trigger a breakthrough", i)
		}
	}

	ms := md.Check(GenerationStats{Generation: 6, BestFitness: 4200})
	if !hasMilestone(ms, MilestoneFitnessBreakthrough) {
		t.Error("expected fitness_breakthrough milestone")
	}
}

func TestMilestoneDetector_Restart(t *testing.T) {
	md := NewMilestoneDetector(10, 2, 0)
	ms := md.Check(GenerationStats{Generation: 1, Restarted: true})
	if !hasMilestone(ms, MilestoneRestart) {
		t.Error("expected restart milestone")
	}
}

func TestMilestoneDetector_StagnationOnce(t *testing.T) {
	md := NewMilestoneDetector(10, 2, 3)
	md.Check(GenerationStats{Generation: 1, MaxScore: 1})

	count := 0
	for g := 2; g <= 10; g++ {
		if hasMilestone(md.Check(GenerationStats{Generation: g, MaxScore: 1}), MilestoneStagnation) {
			count++
			if g != 4 {
				t.Errorf("stagnation reported at generation %d, want 4", g)
			}
		}
	}
	if count != 1 {
		t.Errorf("stagnation reported %d times, want once", count)
	}

	// Improvement re-arms detection.
	md.Check(GenerationStats{Generation: 11, MaxScore: 5})
	found := false
	for g := 12; g <= 14; g++ {
		found = found || hasMilestone(md.Check(GenerationStats{Generation: g, MaxScore: 5}), MilestoneStagnation)
	}
	if !found {
		t.Error("stagnation should be reported again after a new best")
	}
}

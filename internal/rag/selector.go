package rag

import "github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"

// SelectEvidence picks the final evidence set for a comparison answer from
// ranked hits. Each requested season is guaranteed minPerSeason chunks when
// available, then remaining slots fill by rank. Duplicates (same source,
// page, and chunk index) are dropped keeping the highest-ranked copy.
func SelectEvidence(ranked []index.Hit, seasons []int, finalBudget, minPerSeason int) []index.Hit {
	if finalBudget <= 0 {
		return nil
	}

	deduped := make([]index.Hit, 0, len(ranked))
	seen := make(map[string]struct{}, len(ranked))
	for _, h := range ranked {
		key := h.Meta.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, h)
	}

	if len(seasons) == 0 {
		if len(deduped) > finalBudget {
			deduped = deduped[:finalBudget]
		}
		return deduped
	}

	taken := make([]bool, len(deduped))
	var selected []index.Hit

	// Guarantee pass: the best minPerSeason chunks of each requested season,
	// in season order.
	for _, season := range seasons {
		count := 0
		for i, h := range deduped {
			if count >= minPerSeason || len(selected) >= finalBudget {
				break
			}
			if taken[i] || h.Meta.Season != season {
				continue
			}
			taken[i] = true
			selected = append(selected, h)
			count++
		}
	}

	// Fill pass: remaining slots by rank, regardless of season.
	for i, h := range deduped {
		if len(selected) >= finalBudget {
			break
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		selected = append(selected, h)
	}

	return selected
}

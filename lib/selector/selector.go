/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package selector

import (
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sprakpolisen/dedem/lib"
)

var ErrEmptyCandidateSet = errors.New("no eligible reply candidates")

// SeriousTag marks threads that are off limits.
const SeriousTag = "seriös"

// Eligible reports whether a reply may be posted in the candidate's thread.
func Eligible(c lib.ReplyCandidate, minHour, maxHour float64) bool {
	if strings.ToLower(c.ThreadFlair) == SeriousTag {
		return false
	}
	if strings.Contains(strings.ToLower(c.ThreadTitle), SeriousTag) {
		return false
	}
	if c.ThreadAgeHours <= minHour || c.ThreadAgeHours >= maxHour {
		return false
	}
	return !c.IsLocked
}

// Select picks the candidate to reply to. Among eligible candidates sorted by thread age
// it prefers the first one with the most mistakes, provided some candidate has more than
// one. Otherwise it picks the youngest thread.
func Select(candidates []lib.ReplyCandidate, minHour, maxHour float64) (lib.ReplyCandidate, error) {
	var eligible []lib.ReplyCandidate
	for _, c := range candidates {
		if Eligible(c, minHour, maxHour) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		log.Error().Int("candidates", len(candidates)).Float64("min_hour", minHour).Float64("max_hour", maxHour).Msg("no suitable reply candidates")
		return lib.ReplyCandidate{}, ErrEmptyCandidateSet
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ThreadAgeHours < eligible[j].ThreadAgeHours
	})

	best := -1
	for i, c := range eligible {
		if c.MistakeCounts.Total() <= 1 {
			continue
		}
		if best < 0 || c.MistakeCounts.Total() > eligible[best].MistakeCounts.Total() {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	return eligible[best], nil
}

// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package severity maps CVSS scores and vectors to qualitative severity ratings.
package severity

import (
	"fmt"
	"strconv"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// Level is a qualitative severity band.
type Level int

// Level values. LevelUnknown is used when no score is available.
const (
	LevelUnknown Level = iota
	LevelNone
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Rating is a severity level together with the score it was derived from.
type Rating struct {
	Level Level
	Score float64
}

// String renders the rating, e.g. "HIGH(7.5)".
func (r Rating) String() string {
	if r.Level == LevelUnknown || r.Level == LevelNone {
		return r.Level.String()
	}
	return r.Level.String() + "(" + strconv.FormatFloat(r.Score, 'f', -1, 64) + ")"
}

// FromScore maps a CVSS score to its band:
//
//	NONE     0.0
//	LOW      0.1-3.9
//	MEDIUM   4.0-6.9
//	HIGH     7.0-8.9
//	CRITICAL 9.0-10.0
//
// Scores outside [0, 10] or between two bands are rejected.
func FromScore(score float64) (Rating, error) {
	r := Rating{Score: score}
	switch {
	case score == 0:
		r.Level = LevelNone
	case score >= 0.1 && score <= 3.9:
		r.Level = LevelLow
	case score >= 4.0 && score <= 6.9:
		r.Level = LevelMedium
	case score >= 7.0 && score <= 8.9:
		r.Level = LevelHigh
	case score >= 9.0 && score <= 10.0:
		r.Level = LevelCritical
	default:
		return Rating{}, fmt.Errorf("invalid CVSS score %v", score)
	}
	return r, nil
}

// ScoreFromVector returns the base score of a CVSS v2, v3.0, v3.1 or v4.0
// vector. Vectors without a "CVSS:" prefix are read as v2.
func ScoreFromVector(vector string) (float64, error) {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0/"):
		vec, err := gocvss40.ParseVector(vector)
		if err != nil {
			return -1, fmt.Errorf("parsing CVSS v4.0 vector %q: %w", vector, err)
		}
		return vec.Score(), nil
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		vec, err := gocvss31.ParseVector(vector)
		if err != nil {
			return -1, fmt.Errorf("parsing CVSS v3.1 vector %q: %w", vector, err)
		}
		return vec.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		vec, err := gocvss30.ParseVector(vector)
		if err != nil {
			return -1, fmt.Errorf("parsing CVSS v3.0 vector %q: %w", vector, err)
		}
		return vec.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:"):
		return -1, fmt.Errorf("unsupported CVSS version: %s", vector)
	}
	vec, err := gocvss20.ParseVector(vector)
	if err != nil {
		return -1, fmt.Errorf("parsing CVSS v2 vector %q: %w", vector, err)
	}
	return vec.BaseScore(), nil
}

// FromVector computes the rating of a CVSS vector.
func FromVector(vector string) (Rating, error) {
	score, err := ScoreFromVector(vector)
	if err != nil {
		return Rating{}, err
	}
	return FromScore(score)
}

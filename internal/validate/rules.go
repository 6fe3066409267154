package validate

import (
	"fmt"
	"log"
	"sort"

	"fireetl/internal/config"
	"fireetl/pkg/records"
)

// Level classifies a business-rule outcome.
type Level int

const (
	// LevelPassed appends to the passed list.
	LevelPassed Level = iota
	// LevelWarning appends to the warnings list; never fatal.
	LevelWarning
	// LevelFailed appends to the failed list; counts toward the verdict.
	LevelFailed
)

// Outcome is the structured result of evaluating one rule.
type Outcome struct {
	Level   Level
	Message string
}

// Rule is a single, independently evaluated business rule. Rules are pure
// with respect to the table and never short-circuit each other; the report
// synthesizer composes their outcomes.
type Rule struct {
	Name string
	Eval func(t *records.Table, cfg config.Validation) Outcome
}

// RulesReport collects business-rule outcomes by level.
type RulesReport struct {
	RulesPassed []string `json:"rules_passed"`
	RulesFailed []string `json:"rules_failed"`
	Warnings    []string `json:"warnings"`
}

// businessRules is the fixed, ordered rule set. New rules append here; the
// evaluation loop stays unchanged.
func businessRules() []Rule {
	return []Rule{
		{Name: "row_count_floor", Eval: ruleRowCountFloor},
		{Name: "duration_ceiling", Eval: ruleDurationCeiling},
		{Name: "event_type_enumeration", Eval: ruleEventTypes},
		{Name: "geographic_bounds", Eval: ruleGeographicBounds},
		{Name: "date_range", Eval: ruleDateRange},
		{Name: "event_number_uniqueness", Eval: ruleEventNumberUnique},
	}
}

// evaluateRules runs every rule and buckets the outcomes.
func evaluateRules(t *records.Table, cfg config.Validation) RulesReport {
	rep := RulesReport{
		RulesPassed: []string{},
		RulesFailed: []string{},
		Warnings:    []string{},
	}
	for _, r := range businessRules() {
		out := r.Eval(t, cfg)
		switch out.Level {
		case LevelFailed:
			rep.RulesFailed = append(rep.RulesFailed, out.Message)
			log.Printf("validate: rule %s failed: %s", r.Name, out.Message)
		case LevelWarning:
			rep.Warnings = append(rep.Warnings, out.Message)
			log.Printf("validate: rule %s warning: %s", r.Name, out.Message)
		default:
			rep.RulesPassed = append(rep.RulesPassed, out.Message)
		}
	}
	log.Printf("validate: business rules passed=%d failed=%d warnings=%d",
		len(rep.RulesPassed), len(rep.RulesFailed), len(rep.Warnings))
	return rep
}

// ruleRowCountFloor is a hard failure when the dataset is smaller than the
// configured minimum.
func ruleRowCountFloor(t *records.Table, cfg config.Validation) Outcome {
	if t.Len() >= cfg.MinRowsExpected {
		return Outcome{LevelPassed, fmt.Sprintf("Row count check: %d >= %d", t.Len(), cfg.MinRowsExpected)}
	}
	return Outcome{LevelFailed, fmt.Sprintf("Row count check failed: %d < %d", t.Len(), cfg.MinRowsExpected)}
}

// ruleDurationCeiling reports events longer than the configured maximum as a
// percentage-based warning, never fatal.
func ruleDurationCeiling(t *records.Table, cfg config.Validation) Outcome {
	excessive := 0
	for _, rec := range t.Rows {
		if d, ok := rec.IntOK("event_duration_mins"); ok && d > cfg.MaxDurationMinutes {
			excessive++
		}
	}
	if excessive == 0 {
		return Outcome{LevelPassed, "Event duration check: All within limits"}
	}
	pct := float64(excessive) / float64(t.Len()) * 100
	return Outcome{LevelWarning, fmt.Sprintf("%d events (%.2f%%) exceed %d minutes",
		excessive, pct, cfg.MaxDurationMinutes)}
}

// ruleEventTypes is informational: it reports the distinct non-null event-type
// codes and always passes.
func ruleEventTypes(t *records.Table, _ config.Validation) Outcome {
	distinct := map[string]struct{}{}
	for _, rec := range t.Rows {
		if s, ok := rec.StringOK("event_type_group"); ok {
			distinct[s] = struct{}{}
		}
	}
	types := make([]string, 0, len(distinct))
	for s := range distinct {
		types = append(types, s)
	}
	sort.Strings(types)
	log.Printf("validate: event types found: %v", types)
	return Outcome{LevelPassed, fmt.Sprintf("Event types: %d unique types identified", len(types))}
}

// Approximate Edmonton service-area bounding box.
const (
	edmontonLatMin = 53.3
	edmontonLatMax = 53.8
	edmontonLonMin = -113.7
	edmontonLonMax = -113.2
)

// ruleGeographicBounds flags, among rows that carry both coordinates, the
// share falling outside the Edmonton bounding box.
func ruleGeographicBounds(t *records.Table, _ config.Validation) Outcome {
	withCoords, outside := 0, 0
	for _, rec := range t.Rows {
		lat, okLat := rec.FloatOK("latitude")
		lon, okLon := rec.FloatOK("longitude")
		if !okLat || !okLon {
			continue
		}
		withCoords++
		if lat < edmontonLatMin || lat > edmontonLatMax || lon < edmontonLonMin || lon > edmontonLonMax {
			outside++
		}
	}
	if withCoords == 0 || outside == 0 {
		return Outcome{LevelPassed, "Geographic coordinates: All within Edmonton area"}
	}
	pct := float64(outside) / float64(withCoords) * 100
	return Outcome{LevelWarning, fmt.Sprintf("%d records (%.2f%%) have coordinates outside Edmonton area",
		outside, pct)}
}

// ruleDateRange checks that the observed dispatch-year span sits inside the
// configured window; violations warn rather than fail.
func ruleDateRange(t *records.Table, cfg config.Validation) Outcome {
	var yearMin, yearMax int64
	seen := false
	for _, rec := range t.Rows {
		y, ok := rec.IntOK("dispatch_year")
		if !ok {
			continue
		}
		if !seen || y < yearMin {
			yearMin = y
		}
		if !seen || y > yearMax {
			yearMax = y
		}
		seen = true
	}
	if !seen {
		return Outcome{LevelPassed, "Date range check: no dispatch years present"}
	}
	log.Printf("validate: date range: %d to %d", yearMin, yearMax)
	if yearMin >= cfg.DateRangeStartYear && yearMax <= cfg.DateRangeEndYear {
		return Outcome{LevelPassed, fmt.Sprintf("Date range check: %d-%d within expected range", yearMin, yearMax)}
	}
	return Outcome{LevelWarning, fmt.Sprintf("Date range %d-%d outside expected %d-%d",
		yearMin, yearMax, cfg.DateRangeStartYear, cfg.DateRangeEndYear)}
}

// ruleEventNumberUnique is a hard failure on any duplicated event identifier.
func ruleEventNumberUnique(t *records.Table, _ config.Validation) Outcome {
	seen := make(map[string]struct{}, t.Len())
	dups := 0
	for _, rec := range t.Rows {
		s, ok := rec.StringOK("event_number")
		if !ok {
			continue
		}
		if _, exists := seen[s]; exists {
			dups++
			continue
		}
		seen[s] = struct{}{}
	}
	if dups == 0 {
		return Outcome{LevelPassed, "Event number uniqueness: No duplicates"}
	}
	return Outcome{LevelFailed, fmt.Sprintf("Event number duplicates: %d duplicate event numbers found", dups)}
}

// Package transform derives the analytical columns and cleans the extracted
// fire-incident table ahead of loading. Every step is tolerant: unparseable
// date/times become null, negative durations are nulled with a logged count,
// and out-of-bounds coordinates are flagged but never dropped.
package transform

import (
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"fireetl/pkg/records"
)

// Fixed source layouts of the extract's date/time strings.
const (
	layoutDatetime = "2006/01/02 03:04:05 PM"
	layoutDate     = "2006/01/02"
	layoutTime     = "15:04:05"
)

// textColumns are cleaned in place: NFC-normalized, trimmed, empty → null.
var textColumns = []string{
	"event_description",
	"neighbourhood_name",
	"approximate_location",
	"response_code",
	"event_type_group",
}

// Transformer applies the full transformation chain to an extracted table.
type Transformer struct{}

// New constructs a Transformer.
func New() *Transformer { return &Transformer{} }

// Transform runs the transformation steps in their fixed order and returns
// the same table with derived columns appended.
func (tr *Transformer) Transform(t *records.Table) *records.Table {
	log.Printf("transform: input %d rows, %d columns", t.Len(), len(t.Columns))

	tr.parseDatetimes(t)
	tr.deriveColumns(t)
	tr.cleanText(t)
	tr.handleMissing(t)
	tr.validateCoordinates(t)

	log.Printf("transform: output %d rows, %d columns", t.Len(), len(t.Columns))
	return t
}

// parseDatetimes converts the fixed-format date/time strings into time.Time
// cells. Unparseable values become null, never errors.
func (tr *Transformer) parseDatetimes(t *records.Table) {
	parse := func(src, dst, layout string) {
		if !t.HasColumn(src) {
			return
		}
		t.AddColumn(dst)
		valid := 0
		for _, rec := range t.Rows {
			s, ok := rec.StringOK(src)
			if !ok {
				rec[dst] = nil
				continue
			}
			if ts, err := time.Parse(layout, s); err == nil {
				rec[dst] = ts
				valid++
			} else {
				rec[dst] = nil
			}
		}
		log.Printf("transform: parsed %s: %d valid entries", dst, valid)
	}

	parse("dispatch_datetime", "dispatch_datetime_parsed", layoutDatetime)
	parse("event_close_datetime", "event_close_datetime_parsed", layoutDatetime)
	parse("dispatch_date_date", "dispatch_date_formatted", layoutDate)
	parse("event_close_date_date", "event_close_date_formatted", layoutDate)
	parse("dispatch_time", "dispatch_time_parsed", layoutTime)
	parse("event_close_time", "event_close_time_parsed", layoutTime)
}

// deriveColumns adds the calculated analytical columns.
func (tr *Transformer) deriveColumns(t *records.Table) {
	for _, c := range []string{
		"dispatch_hour", "dispatch_day_of_week_num", "is_weekend",
		"shift", "equipment_count", "year_month", "event_category",
	} {
		t.AddColumn(c)
	}

	for _, rec := range t.Rows {
		if ts, ok := rec.TimeOK("dispatch_datetime_parsed"); ok {
			hour := int64(ts.Hour())
			dow := mondayIndexed(ts.Weekday())
			rec["dispatch_hour"] = hour
			rec["dispatch_day_of_week_num"] = dow
			rec["is_weekend"] = boolToInt(dow >= 5)
			rec["shift"] = ShiftFor(hour)
		} else {
			rec["dispatch_hour"] = nil
			rec["dispatch_day_of_week_num"] = nil
			rec["is_weekend"] = nil
			rec["shift"] = nil
		}

		rec["equipment_count"] = equipmentCount(rec["equipment_assigned"])

		if d, ok := rec.TimeOK("dispatch_date_formatted"); ok {
			rec["year_month"] = d.Format("2006-01")
		} else {
			rec["year_month"] = nil
		}

		rec["event_category"] = CategoryFor(rec["event_type_group"])
	}
}

// mondayIndexed maps time.Weekday onto 0=Monday .. 6=Sunday.
func mondayIndexed(wd time.Weekday) int64 {
	return int64((int(wd) + 6) % 7)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ShiftFor buckets an hour-of-day into the four operational shifts:
// Day 08–16, Evening 16–20, Night 20–04, Early Morning 04–08.
func ShiftFor(hour int64) string {
	switch {
	case hour >= 8 && hour < 16:
		return "Day"
	case hour >= 16 && hour < 20:
		return "Evening"
	case hour >= 20 || hour < 4:
		return "Night"
	default:
		return "Early Morning"
	}
}

// equipmentCount returns the number of comma-delimited equipment tokens,
// 0 for null or empty.
func equipmentCount(v any) int64 {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return 0
	}
	return int64(len(strings.Split(s, ",")))
}

// eventCategories maps event-type codes onto coarse categories.
var eventCategories = map[string]string{
	"FR": "Fire",
	"MD": "Medical",
	"AL": "Alarm/Fire",
	"OF": "Alarm/Fire",
	"TA": "Traffic Accident",
	"HZ": "Hazardous",
}

// CategoryFor maps an event-type cell onto its coarse category. Null maps to
// "Unknown", unrecognized codes to "Other".
func CategoryFor(v any) string {
	s, ok := v.(string)
	if !ok {
		return "Unknown"
	}
	if cat, found := eventCategories[s]; found {
		return cat
	}
	return "Other"
}

// cleanText NFC-normalizes and trims the text columns; empty strings become
// null.
func (tr *Transformer) cleanText(t *records.Table) {
	for _, col := range textColumns {
		if !t.HasColumn(col) {
			continue
		}
		for _, rec := range t.Rows {
			s, ok := rec.StringOK(col)
			if !ok {
				continue
			}
			s = strings.TrimSpace(norm.NFC.String(s))
			if s == "" {
				rec[col] = nil
			} else {
				rec[col] = s
			}
		}
	}
}

// handleMissing applies the missing-value policy: negative durations are
// nulled with a logged count, neighbourhood_name is backfilled to "Unknown"
// only when the id is also missing, approximate_location to "No location",
// equipment_assigned to "Unknown".
func (tr *Transformer) handleMissing(t *records.Table) {
	negative := 0
	for _, rec := range t.Rows {
		if d, ok := rec.IntOK("event_duration_mins"); ok && d < 0 {
			rec["event_duration_mins"] = nil
			negative++
		}

		if records.IsNull(rec["neighbourhood_name"]) {
			if _, hasID := rec.IntOK("neighbourhood_id"); !hasID {
				rec["neighbourhood_name"] = "Unknown"
			}
		}
		if records.IsNull(rec["approximate_location"]) {
			rec["approximate_location"] = "No location"
		}
		if records.IsNull(rec["equipment_assigned"]) {
			rec["equipment_assigned"] = "Unknown"
		}
	}
	if negative > 0 {
		log.Printf("transform: found %d records with negative duration - setting to NULL", negative)
	}
}

// Approximate Edmonton service-area bounding box.
const (
	latMin = 53.3
	latMax = 53.8
	lonMin = -113.7
	lonMax = -113.2
)

// validateCoordinates rounds coordinates to 8 decimal places and flags (but
// keeps) points outside the Edmonton bounding box.
func (tr *Transformer) validateCoordinates(t *records.Table) {
	outside := 0
	for _, rec := range t.Rows {
		lat, okLat := rec.FloatOK("latitude")
		lon, okLon := rec.FloatOK("longitude")
		if okLat {
			lat = round8(lat)
			rec["latitude"] = lat
		}
		if okLon {
			lon = round8(lon)
			rec["longitude"] = lon
		}
		if okLat && okLon && (lat < latMin || lat > latMax || lon < lonMin || lon > lonMax) {
			outside++
		}
	}
	if outside > 0 {
		log.Printf("transform: found %d records with coordinates outside Edmonton bounds", outside)
	}
}

// round8 rounds to the warehouse coordinate precision of 8 decimal places.
func round8(f float64) float64 {
	return math.Round(f*1e8) / 1e8
}

// DBColumns is the warehouse fact-table column order produced by
// PrepareForDatabase and consumed by the loader's COPY.
var DBColumns = []string{
	"event_number",
	"dispatch_year",
	"dispatch_month",
	"dispatch_day",
	"dispatch_month_name",
	"dispatch_dayofweek",
	"dispatch_date",
	"dispatch_date_formatted",
	"dispatch_time",
	"dispatch_datetime",
	"event_close_date",
	"event_close_date_formatted",
	"event_close_time",
	"event_close_datetime",
	"event_duration_mins",
	"event_type_group",
	"event_description",
	"neighbourhood_id",
	"neighbourhood_name",
	"approximate_location",
	"equipment_assigned",
	"latitude",
	"longitude",
	"geometry_point",
	"response_code",
}

// dbColumnSources maps warehouse columns whose source column differs (parsed
// variants replace the raw strings). Columns absent from this map read from
// the same-named source column.
var dbColumnSources = map[string]string{
	"dispatch_date_formatted":    "dispatch_date_formatted",
	"dispatch_time":              "dispatch_time_parsed",
	"dispatch_datetime":          "dispatch_datetime_parsed",
	"event_close_date_formatted": "event_close_date_formatted",
	"event_close_time":           "event_close_time_parsed",
	"event_close_datetime":       "event_close_datetime_parsed",
}

// PrepareForDatabase projects the transformed table onto the warehouse column
// set, substituting parsed date/time cells for the raw strings. Source columns
// missing from the table come through as null with a logged warning.
func (tr *Transformer) PrepareForDatabase(t *records.Table) *records.Table {
	out := records.NewTable(DBColumns)
	warned := map[string]bool{}

	for _, rec := range t.Rows {
		row := make(records.Record, len(DBColumns))
		for _, col := range DBColumns {
			src := col
			if mapped, ok := dbColumnSources[col]; ok {
				src = mapped
			}
			if !t.HasColumn(src) {
				if !warned[src] {
					log.Printf("transform: column %s not found; loading as NULL", src)
					warned[src] = true
				}
				row[col] = nil
				continue
			}
			row[col] = rec[src]
		}
		out.Rows = append(out.Rows, row)
	}

	log.Printf("transform: prepared %d rows for database with %d columns", out.Len(), len(out.Columns))
	return out
}

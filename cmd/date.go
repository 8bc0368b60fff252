/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ParsedDate is a datestring argument together with the span it implies.
type ParsedDate struct {
	Date time.Time
	// Span is how long the implicit range starting at Date runs.
	Span func(time.Time) time.Time
}

var (
	yearPattern   = regexp.MustCompile(`^\d{4}$`)
	monthPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	seasonPattern = regexp.MustCompile(`^(\d{4})-(winter|spring|summer|fall|autumn)$`)
)

// Meteorological season starts, by starting month. Winter belongs to the year
// its December falls in, so "2024-winter" runs Dec 2024 through Feb 2025.
var seasonStartMonth = map[string]time.Month{
	"winter": time.December,
	"spring": time.March,
	"summer": time.June,
	"fall":   time.September,
	"autumn": time.September,
}

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		var parsed ParsedDate
		parsed, err = parseSingleDatestring(args[0])
		if err != nil {
			return
		}
		start = parsed.Date
		end = parsed.Span(start)

	case 2:
		var startParsed, endParsed ParsedDate
		startParsed, err = parseSingleDatestring(args[0])
		if err != nil {
			return
		}
		endParsed, err = parseSingleDatestring(args[1])
		if err != nil {
			return
		}
		start = startParsed.Date
		end = endParsed.Date

	default:
		err = fmt.Errorf("expected one or two date arguments")
	}
	return
}

func parseSingleDatestring(ds string) (ParsedDate, error) {
	if match := seasonPattern.FindStringSubmatch(ds); match != nil {
		year, err := strconv.Atoi(match[1])
		if err != nil {
			return ParsedDate{}, fmt.Errorf("parsing datestring %q: %w", ds, err)
		}
		start := time.Date(year, seasonStartMonth[match[2]], 1, 0, 0, 0, 0, time.UTC)
		return ParsedDate{
			Date: start,
			Span: func(t time.Time) time.Time { return t.AddDate(0, 3, 0) },
		}, nil
	}

	for _, format := range []struct {
		pattern *regexp.Regexp
		layout  string
		span    func(time.Time) time.Time
	}{
		{yearPattern, "2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }},
		{monthPattern, "2006-01", func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
		{dayPattern, "2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	} {
		if !format.pattern.MatchString(ds) {
			continue
		}
		date, err := time.Parse(format.layout, ds)
		if err != nil {
			return ParsedDate{}, fmt.Errorf("parsing datestring %q: %w", ds, err)
		}
		return ParsedDate{Date: date, Span: format.span}, nil
	}

	return ParsedDate{}, fmt.Errorf("invalid date format: %q", ds)
}

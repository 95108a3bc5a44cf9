package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SameLocalDay reports whether two instants fall on the same calendar
// day in the local time zone.
func SameLocalDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}

// ParseClock parses an "HH:MM" wall-clock string (00:00..23:59).
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// NextOccurrence returns the next future local occurrence of an "HH:MM"
// wall-clock time, rolling to tomorrow if the slot already passed today.
func NextOccurrence(hhmm string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	local := now.Local()
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

// OccurrenceToday returns today's local instant of an "HH:MM" slot,
// whether past or future. Used to decide if a missed alarm is overdue.
func OccurrenceToday(hhmm string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	local := now.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location()), nil
}

// Package schedule turns the class list into a weekly timetable.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/fitness-app/fitclient/internal/domain/session"
)

// Person is the name part of a trainer's user record.
type Person struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Trainer is the trainer embedded in a class.
type Trainer struct {
	ID   session.ID `json:"id"`
	User Person     `json:"user"`
}

// Class is a fitness class as listed by GET /classes.
type Class struct {
	ID                session.ID `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	StartTime         string     `json:"startTime"`
	EndTime           string     `json:"endTime,omitempty"`
	MaxCapacity       int        `json:"maxCapacity"`
	CurrentEnrollment int        `json:"currentEnrollment"`
	Room              string     `json:"room,omitempty"`
	Price             float64    `json:"price,omitempty"`
	Level             string     `json:"level,omitempty"`
	Trainer           *Trainer   `json:"trainer,omitempty"`
}

// Full reports whether no seats are left.
func (c Class) Full() bool {
	return c.CurrentEnrollment >= c.MaxCapacity
}

// Instructor returns the trainer's full name, or "" when unassigned.
func (c Class) Instructor() string {
	if c.Trainer == nil {
		return ""
	}
	return strings.TrimSpace(c.Trainer.User.FirstName + " " + c.Trainer.User.LastName)
}

// timeLayouts are the start time formats seen from the backend. Java's
// LocalDateTime serializes without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTime parses a class start or end time. Zone-less values are taken in loc.
func ParseTime(raw string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t.In(loc), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Slot is a class with its parsed start time.
type Slot struct {
	Class
	Start time.Time
}

// Day is one weekday's classes, ordered by start time.
type Day struct {
	Weekday time.Weekday
	Slots   []Slot
}

// Name returns the weekday name, e.g. "Monday".
func (d Day) Name() string {
	return d.Weekday.String()
}

// Week groups classes by weekday, Monday first. Classes whose start time
// cannot be parsed are returned in skipped.
func Week(classes []Class, loc *time.Location) (days []Day, skipped []Class) {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[time.Weekday][]Slot)
	for _, c := range classes {
		start, err := ParseTime(c.StartTime, loc)
		if err != nil {
			skipped = append(skipped, c)
			continue
		}
		byDay[start.Weekday()] = append(byDay[start.Weekday()], Slot{Class: c, Start: start})
	}

	for _, wd := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		slots, ok := byDay[wd]
		if !ok {
			continue
		}
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
		days = append(days, Day{Weekday: wd, Slots: slots})
	}
	return days, skipped
}

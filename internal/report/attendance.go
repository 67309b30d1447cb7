// Package report derives counts and percentages from already scoped records.
package report

import (
	"math"

	"anoa.com/hostelhub/internal/entity"
	"github.com/google/uuid"
)

// LowAttendanceThreshold is the percentage below which a student is flagged.
const LowAttendanceThreshold = 75.0

type AttendanceCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Weekend int `json:"weekend"`
	Holiday int `json:"holiday"`
}

func (c *AttendanceCounts) Add(status string) {
	switch status {
	case entity.AttendancePresent:
		c.Present++
	case entity.AttendanceAbsent:
		c.Absent++
	case entity.AttendanceLate:
		c.Late++
	case entity.AttendanceWeekend:
		c.Weekend++
	case entity.AttendanceHoliday:
		c.Holiday++
	}
}

// Countable is the number of days that take part in the percentage.
func (c AttendanceCounts) Countable() int {
	return c.Present + c.Absent + c.Late
}

// Percentage is present / (present + absent + late), rounded to two decimals.
func (c AttendanceCounts) Percentage() float64 {
	if c.Countable() == 0 {
		return 0
	}
	return round2(float64(c.Present) / float64(c.Countable()) * 100)
}

func CountAttendance(records []entity.Attendance) AttendanceCounts {
	var c AttendanceCounts
	for _, r := range records {
		c.Add(r.Status)
	}
	return c
}

type AttendanceSummary struct {
	TotalStudents          int              `json:"total_students"`
	TotalRecords           int              `json:"total_records"`
	AverageAttendance      float64          `json:"average_attendance"`
	LowAttendanceCount     int              `json:"low_attendance_count"`
	PerfectAttendanceCount int              `json:"perfect_attendance_count"`
	Counts                 AttendanceCounts `json:"counts"`
}

// SummarizeAttendance aggregates records of many students. Students with no
// countable day are left out of the low and perfect counts.
func SummarizeAttendance(records []entity.Attendance, totalStudents int) AttendanceSummary {
	perStudent := make(map[uuid.UUID]*AttendanceCounts)
	summary := AttendanceSummary{
		TotalStudents: totalStudents,
		TotalRecords:  len(records),
	}

	for _, r := range records {
		c, ok := perStudent[r.StudentID]
		if !ok {
			c = &AttendanceCounts{}
			perStudent[r.StudentID] = c
		}
		c.Add(r.Status)
		summary.Counts.Add(r.Status)
	}

	for _, c := range perStudent {
		if c.Countable() == 0 {
			continue
		}
		pct := c.Percentage()
		if pct < LowAttendanceThreshold {
			summary.LowAttendanceCount++
		}
		if c.Present == c.Countable() {
			summary.PerfectAttendanceCount++
		}
	}

	summary.AverageAttendance = summary.Counts.Percentage()
	return summary
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

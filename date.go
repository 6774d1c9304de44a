package fatnav

import (
	"time"
)

// ParseDate decodes a 16 bit FAT date stamp:
//  Bits 0-4: Day of month, valid value range 1-31 inclusive.
//  Bits 5-8: Month of year, 1 = January, valid value range 1-12 inclusive.
//  Bits 9-15: Count of years from 1980, valid value range 0-127 inclusive.
// It returns a time.Time which always has a time of 00:00:00.000000000 UTC.
//
// Day 0 and month 0 are invalid on disk. For those the zero time.Time is
// returned so that callers can use time.Time.IsZero().
//
// A month bigger than 12 is unspecified, time.Date normalizes it into the
// following year.
func ParseDate(input uint16) time.Time {
	dayOfMonth := input & 0x1F
	monthOfYear := input & 0x1E0 >> 5
	yearSince1980 := input & 0xFE00 >> 9

	if dayOfMonth == 0 || monthOfYear == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(yearSince1980), time.Month(monthOfYear), int(dayOfMonth), 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a 16 bit FAT time stamp with a granularity of 2 seconds:
//  Bits 0-4: 2-second count, valid value range 0-29 inclusive (0-58 seconds).
//  Bits 5-10: Minutes, valid value range 0-59 inclusive.
//  Bits 11-15: Hours, valid value range 0-23 inclusive.
// The valid time range is from midnight 00:00:00 to 23:59:58.
// It returns a time.Time which always has a date of January 1, year 1.
// That way time.Time.IsZero() reports true for the 00:00:00 stamp.
//
// Out of range values are just added up by time.Date but capped at 23:59:59
// so an invalid time field can never spill into a different day.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)

	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}

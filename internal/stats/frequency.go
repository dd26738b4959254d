// Package stats derives channel statistics from the reconciled dataset.
// Everything here is pure computation over in-memory data; no I/O.
package stats

import (
	"time"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// UploadFrequency computes average upload rates from the span between the
// earliest observed upload and now. Zero or one upload yields all-zero
// averages.
func UploadFrequency(uploadDates []time.Time, now time.Time) model.UploadFrequency {
	dates := make([]time.Time, 0, len(uploadDates))
	for _, d := range uploadDates {
		if !d.IsZero() {
			dates = append(dates, d)
		}
	}
	if len(dates) < 2 {
		return model.UploadFrequency{}
	}

	earliest := dates[0]
	for _, d := range dates[1:] {
		if d.Before(earliest) {
			earliest = d
		}
	}

	daysSpan := now.Sub(earliest).Hours() / 24
	if daysSpan < 1 {
		daysSpan = 1
	}

	perDay := float64(len(dates)) / daysSpan
	return model.UploadFrequency{
		PerWeek:    perDay * 7,
		PerMonth:   perDay * 30,
		PerQuarter: perDay * 90,
		PerYear:    perDay * 365,
	}
}

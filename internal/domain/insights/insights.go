// Package insights serves the operational-analytics panel of the hospital
// hub. The appointment series is synthetic demo data, generated on the fly;
// no clinical state feeds it.
package insights

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDays is the series length shown by the analytics panel.
const DefaultDays = 30

// ErrValidation reports a non-positive series length.
var ErrValidation = errors.New("invalid input")

// Point is one day of the synthetic appointment series.
type Point struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// AppointmentSeries generates the daily-appointments demo curve: day i of the
// window counts max(5, 20 + i%7 - i/5) appointments, dated so the last point
// falls on today (UTC).
func (s *Service) AppointmentSeries(days int) ([]Point, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive: %w", ErrValidation)
	}

	start := time.Now().UTC().AddDate(0, 0, -(days - 1))
	points := make([]Point, 0, days)
	for i := 0; i < days; i++ {
		count := 20 + i%7 - i/5
		if count < 5 {
			count = 5
		}
		points = append(points, Point{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Count: count,
		})
	}
	return points, nil
}

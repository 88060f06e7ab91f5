package models

import "time"

type Event struct {
	ID         string     `json:"id"`
	Place      string     `json:"place"`
	Name       string     `json:"eventname"`
	Capacity   int        `json:"participationNumber"`
	Duration   string     `json:"duration"`
	Address    string     `json:"address"`
	Image      string     `json:"image"`
	StartTime  string     `json:"startTime"`
	EndTime    string     `json:"endTime"`
	SeatsTaken int        `json:"seatsTaken"`
	Attendees  []Attendee `json:"attendees"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ReservedSeats sums the seats of every attendee. SeatsTaken is a cached copy
// of this value.
func (e *Event) ReservedSeats() int {
	total := 0
	for _, a := range e.Attendees {
		total += a.Seats
	}
	return total
}

type Attendee struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Seats  int    `json:"seats"`
}

package meeting

// Calculations are the metrics derived from a Config and a Session. They are
// recomputed on every change and never persisted. No rounding happens here;
// display rounding is the formatter's job.
type Calculations struct {
	DurationHours     float64
	PeopleHours       float64
	PeopleDays        float64
	TotalCost         float64
	TotalParticipants int
	Group1Cost        float64
	Group2Cost        float64
}

// Calculate derives all metrics from cfg and s.
func Calculate(cfg Config, s Session) Calculations {
	durationHours := s.Duration.Hours()
	totalParticipants := s.Group1Participants + s.Group2Participants

	peopleHours := durationHours * float64(totalParticipants)
	peopleDays := peopleHours / cfg.WorkingHoursPerDay

	group1Cost := durationHours * float64(s.Group1Participants) * cfg.Group1HourlyRate
	group2Cost := durationHours * float64(s.Group2Participants) * cfg.Group2HourlyRate

	return Calculations{
		DurationHours:     durationHours,
		PeopleHours:       peopleHours,
		PeopleDays:        peopleDays,
		TotalCost:         group1Cost + group2Cost,
		TotalParticipants: totalParticipants,
		Group1Cost:        group1Cost,
		Group2Cost:        group2Cost,
	}
}

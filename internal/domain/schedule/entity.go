package schedule

// WorkScheduleConfig holds a user's configured work hours. Any boundary may
// be nil; nil boundaries fall back to the defaults when windows are resolved.
type WorkScheduleConfig struct {
	MorningStart   *TimeOfDay
	MorningEnd     *TimeOfDay
	AfternoonStart *TimeOfDay
	AfternoonEnd   *TimeOfDay
}

// IsEmpty reports whether no boundary is configured at all.
func (c WorkScheduleConfig) IsEmpty() bool {
	return c.MorningStart == nil && c.MorningEnd == nil &&
		c.AfternoonStart == nil && c.AfternoonEnd == nil
}

func (c WorkScheduleConfig) HasMorning() bool {
	return c.MorningStart != nil || c.MorningEnd != nil
}

func (c WorkScheduleConfig) HasAfternoon() bool {
	return c.AfternoonStart != nil || c.AfternoonEnd != nil
}

func (c WorkScheduleConfig) MorningComplete() bool {
	return c.MorningStart != nil && c.MorningEnd != nil
}

func (c WorkScheduleConfig) AfternoonComplete() bool {
	return c.AfternoonStart != nil && c.AfternoonEnd != nil
}

// ParseWorkScheduleConfig builds a config from raw "HH:MM" columns. An
// unparsable value is treated the same as an unset one.
func ParseWorkScheduleConfig(morningStart, morningEnd, afternoonStart, afternoonEnd *string) WorkScheduleConfig {
	return WorkScheduleConfig{
		MorningStart:   parseOptional(morningStart),
		MorningEnd:     parseOptional(morningEnd),
		AfternoonStart: parseOptional(afternoonStart),
		AfternoonEnd:   parseOptional(afternoonEnd),
	}
}

func parseOptional(s *string) *TimeOfDay {
	if s == nil {
		return nil
	}
	t, err := ParseTimeOfDay(*s)
	if err != nil {
		return nil
	}
	return &t
}

package domain

// Theme selects the frontend color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ReminderConfig holds the reminder schedule.
type ReminderConfig struct {
	Enabled bool `json:"enabled"`

	// Times is an ordered set of local wall-clock times ("HH:MM").
	// Duplicates are collapsed on update.
	Times []string `json:"times"`
}

// Settings is the singleton per-installation configuration record.
type Settings struct {
	Theme                Theme          `json:"theme"`
	Reminder             ReminderConfig `json:"reminder"`
	AutoDetectVisits     bool           `json:"autoDetectVisits"`
	NotificationsEnabled bool           `json:"notificationsEnabled"`
}

// DefaultSettings is materialized on first access when nothing is persisted.
func DefaultSettings() *Settings {
	return &Settings{
		Theme: ThemeSystem,
		Reminder: ReminderConfig{
			Enabled: false,
			Times:   []string{"09:00"},
		},
		AutoDetectVisits:     true,
		NotificationsEnabled: true,
	}
}

// SettingsPatch is a partial Settings update. Nil fields keep the
// current value; Reminder.Times, when present, replaces wholesale.
type SettingsPatch struct {
	Theme                *Theme         `json:"theme,omitempty"`
	Reminder             *ReminderPatch `json:"reminder,omitempty"`
	AutoDetectVisits     *bool          `json:"autoDetectVisits,omitempty"`
	NotificationsEnabled *bool          `json:"notificationsEnabled,omitempty"`
}

type ReminderPatch struct {
	Enabled *bool     `json:"enabled,omitempty"`
	Times   *[]string `json:"times,omitempty"`
}

// Apply deep-merges the patch into s. It reports whether the reminder
// config changed, so the caller knows to re-derive the alarm schedule.
func (s *Settings) Apply(p SettingsPatch) (reminderChanged bool, err error) {
	if p.Theme != nil {
		if !p.Theme.Valid() {
			return false, &ValidationError{Field: "theme", Reason: "must be light, dark or system"}
		}
		s.Theme = *p.Theme
	}
	if p.AutoDetectVisits != nil {
		s.AutoDetectVisits = *p.AutoDetectVisits
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.Reminder != nil {
		if p.Reminder.Enabled != nil && s.Reminder.Enabled != *p.Reminder.Enabled {
			s.Reminder.Enabled = *p.Reminder.Enabled
			reminderChanged = true
		}
		if p.Reminder.Times != nil {
			times, err := normalizeTimes(*p.Reminder.Times)
			if err != nil {
				return reminderChanged, err
			}
			s.Reminder.Times = times
			reminderChanged = true
		}
	}
	return reminderChanged, nil
}

// normalizeTimes validates each HH:MM entry and collapses duplicates
// while preserving order.
func normalizeTimes(times []string) ([]string, error) {
	out := make([]string, 0, len(times))
	seen := make(map[string]bool, len(times))
	for _, t := range times {
		if _, _, err := ParseClock(t); err != nil {
			return nil, &ValidationError{Field: "reminder.times", Reason: "invalid time " + t}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

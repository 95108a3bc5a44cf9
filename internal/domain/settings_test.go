package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsApply(t *testing.T) {
	t.Run("theme only keeps everything else", func(t *testing.T) {
		s := DefaultSettings()
		dark := ThemeDark

		changed, err := s.Apply(SettingsPatch{Theme: &dark})
		require.NoError(t, err)
		assert.False(t, changed, "theme change should not touch the reminder schedule")
		assert.Equal(t, ThemeDark, s.Theme)
		assert.True(t, s.AutoDetectVisits)
		assert.True(t, s.NotificationsEnabled)
		assert.Equal(t, []string{"09:00"}, s.Reminder.Times)
	})

	t.Run("invalid theme rejected", func(t *testing.T) {
		s := DefaultSettings()
		bad := Theme("neon")

		_, err := s.Apply(SettingsPatch{Theme: &bad})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, ThemeSystem, s.Theme)
	})

	t.Run("reminder times replaced and deduped", func(t *testing.T) {
		s := DefaultSettings()
		times := []string{"08:00", "12:30", "08:00", "20:15"}

		changed, err := s.Apply(SettingsPatch{Reminder: &ReminderPatch{Times: &times}})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []string{"08:00", "12:30", "20:15"}, s.Reminder.Times)
	})

	t.Run("invalid reminder time rejected", func(t *testing.T) {
		s := DefaultSettings()
		times := []string{"08:00", "26:00"}

		_, err := s.Apply(SettingsPatch{Reminder: &ReminderPatch{Times: &times}})
		require.Error(t, err)
		assert.Equal(t, []string{"09:00"}, s.Reminder.Times, "failed patch must not partially apply")
	})

	t.Run("enable toggle reports reminder change", func(t *testing.T) {
		s := DefaultSettings()
		on := true

		changed, err := s.Apply(SettingsPatch{Reminder: &ReminderPatch{Enabled: &on}})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, s.Reminder.Enabled)

		// Same value again is not a change.
		changed, err = s.Apply(SettingsPatch{Reminder: &ReminderPatch{Enabled: &on}})
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

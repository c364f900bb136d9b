package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCancel(t *testing.T) {
	for _, in := range []string{"отмена", "Отмена", " CANCEL ", "стоп", "Отменить"} {
		assert.True(t, IsCancel(in), in)
	}
	for _, in := range []string{"", "отменаа", "stop please", "-"} {
		assert.False(t, IsCancel(in), in)
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1500,50", "1500.50", true},
		{"1 500", "1500.00", true},
		{"0.1", "0.10", true},
		{"0", "", false},
		{"-5", "", false},
		{"abc", "", false},
		{"1.234", "", false},
		{"184467440737095517,16", "", false},
		{"100000000000000000", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Amount(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				assert.IsType(t, InputError(""), err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := OptionalAmount("-")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestText(t *testing.T) {
	_, err := Text("   ")
	assert.Error(t, err)

	_, err = Text(strings.Repeat("я", 1001))
	assert.Error(t, err)

	got, err := Text(strings.Repeat("я", 1000))
	require.NoError(t, err)
	assert.Len(t, []rune(got), 1000)

	got, err = OptionalText("-")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDateParser(t *testing.T) {
	today := func() time.Time { return time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC) }
	parse := DateParser(today)

	tests := map[string]string{
		"сегодня":    "2026-12-31",
		"Завтра":     "2027-01-01",
		"today":      "2026-12-31",
		"tomorrow":   "2027-01-01",
		"2026-02-03": "2026-02-03",
	}
	for in, want := range tests {
		got, err := parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"31.12.2026", "2026-13-01", "вчера", "-"} {
		_, err := parse(in)
		assert.Error(t, err, in)
	}

	got, err := OptionalDateParser(today)("-")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOptionalTime(t *testing.T) {
	got, err := OptionalTime("9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	got, err = OptionalTime("-")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = OptionalTime("24:00")
	assert.Error(t, err)
}

func TestYesNo(t *testing.T) {
	for _, in := range []string{"да", "Д", "yes", "y"} {
		got, err := YesNo(in)
		require.NoError(t, err)
		assert.Equal(t, "true", got)
	}
	for _, in := range []string{"нет", "N", "no"} {
		got, err := YesNo(in)
		require.NoError(t, err)
		assert.Equal(t, "false", got)
	}
	_, err := YesNo("может быть")
	assert.Error(t, err)
}

func TestClosedLists(t *testing.T) {
	parse := OneOf([]string{"кафе", "продукты"})
	got, err := parse("КАФЕ")
	require.NoError(t, err)
	assert.Equal(t, "кафе", got)
	_, err = parse("казино")
	assert.Error(t, err)

	got, err = Priority("Высокий")
	require.NoError(t, err)
	assert.Equal(t, "high", got)
	got, err = Priority("low")
	require.NoError(t, err)
	assert.Equal(t, "low", got)
	_, err = Priority("срочно")
	assert.Error(t, err)

	got, err = PurchaseStatus("куплено")
	require.NoError(t, err)
	assert.Equal(t, "bought", got)
	_, err = PurchaseStatus("lost")
	assert.Error(t, err)
}

func TestDateFilter(t *testing.T) {
	for in, want := range map[string]string{"сегодня": "today", "Неделя": "week", "month": "month", "2026-10-01": "2026-10-01"} {
		got, err := DateFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := DateFilter("всё")
	assert.Error(t, err)
}

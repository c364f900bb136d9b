package conversation

import (
	"errors"
	"strings"
	"time"

	"household-ledger/internal/models"
)

// Skip is the answer that leaves an optional field empty.
const Skip = "-"

// InputError is a user-facing validation message.
type InputError string

func (e InputError) Error() string { return string(e) }

func inputMessage(err error) string {
	var inErr InputError
	if errors.As(err, &inErr) {
		return string(inErr)
	}
	var verr models.ValidationError
	if errors.As(err, &verr) {
		return "❌ Некорректное значение: " + verr.Message
	}
	return "❌ Некорректный ввод"
}

func isSkip(input string) bool {
	return strings.TrimSpace(input) == Skip
}

// Amount accepts a positive number with an optional comma decimal separator.
func Amount(input string) (string, error) {
	d, err := models.ParseAmount(input)
	if err != nil {
		return "", InputError("❌ Введите корректную сумму больше нуля (например: 1500 или 1500,50)")
	}
	return d.StringFixed(2), nil
}

// OptionalAmount is Amount that also accepts "-".
func OptionalAmount(input string) (string, error) {
	if isSkip(input) {
		return "", nil
	}
	return Amount(input)
}

// Text requires a non-empty value within the length limit.
func Text(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", InputError("❌ Значение не может быть пустым")
	}
	if len([]rune(input)) > models.MaxTextLength {
		return "", InputError("❌ Слишком длинный текст (максимум 1000 символов)")
	}
	return input, nil
}

// OptionalText is Text that maps "-" to an empty value.
func OptionalText(input string) (string, error) {
	if isSkip(input) {
		return "", nil
	}
	return Text(input)
}

// DateParser accepts an ISO date or today/tomorrow relative to the clock.
func DateParser(today func() time.Time) ParseFunc {
	return func(input string) (string, error) {
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "сегодня", "today":
			return today().Format(models.DateLayout), nil
		case "завтра", "tomorrow":
			return today().AddDate(0, 0, 1).Format(models.DateLayout), nil
		}
		d, err := models.ParseDate(input)
		if err != nil {
			return "", InputError("❌ Неверный формат даты. Используйте ГГГГ-ММ-ДД, «сегодня» или «завтра»")
		}
		return d.Format(models.DateLayout), nil
	}
}

// OptionalDateParser is DateParser that also accepts "-".
func OptionalDateParser(today func() time.Time) ParseFunc {
	parse := DateParser(today)
	return func(input string) (string, error) {
		if isSkip(input) {
			return "", nil
		}
		return parse(input)
	}
}

// OptionalTime accepts a 24-hour HH:MM value or "-".
func OptionalTime(input string) (string, error) {
	if isSkip(input) {
		return "", nil
	}
	t, err := models.ParseTimeOfDay(input)
	if err != nil {
		return "", InputError("❌ Неверный формат времени. Используйте ЧЧ:ММ (например: 14:30) или «-»")
	}
	return t, nil
}

// YesNo maps да/нет answers to "true" or "false".
func YesNo(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "да", "д", "yes", "y":
		return "true", nil
	case "нет", "н", "no", "n":
		return "false", nil
	}
	return "", InputError("❌ Ответьте «да» или «нет»")
}

// OneOf accepts one of options, case-insensitively, returning the option.
func OneOf(options []string) ParseFunc {
	return func(input string) (string, error) {
		input = strings.TrimSpace(input)
		for _, o := range options {
			if strings.EqualFold(input, o) {
				return o, nil
			}
		}
		return "", InputError("❌ Выберите один из вариантов: " + strings.Join(options, ", "))
	}
}

var priorityAliases = map[string]models.Priority{
	"высокий": models.PriorityHigh,
	"средний": models.PriorityMedium,
	"низкий":  models.PriorityLow,
}

// PriorityLabels are the priority answers offered to the user.
var PriorityLabels = []string{"высокий", "средний", "низкий"}

// Priority accepts the Russian labels or the stored names.
func Priority(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if p, ok := priorityAliases[input]; ok {
		return string(p), nil
	}
	if p := models.Priority(input); p.Valid() {
		return string(p), nil
	}
	return "", InputError("❌ Выберите приоритет: высокий, средний или низкий")
}

var statusAliases = map[string]models.PurchaseStatus{
	"запланировано": models.StatusPlanned,
	"куплено":       models.StatusBought,
}

// StatusLabels are the purchase status answers offered to the user.
var StatusLabels = []string{"запланировано", "куплено"}

// PurchaseStatus accepts the Russian labels or the stored names.
func PurchaseStatus(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if s, ok := statusAliases[input]; ok {
		return string(s), nil
	}
	if s := models.PurchaseStatus(input); s.Valid() {
		return string(s), nil
	}
	return "", InputError("❌ Выберите статус: запланировано или куплено")
}

// DateFilterLabels are the relative answers accepted by DateFilter.
var DateFilterLabels = []string{"сегодня", "неделя", "месяц"}

// DateFilter accepts a period name or an exact ISO date.
func DateFilter(input string) (string, error) {
	input = strings.TrimSpace(input)
	if p, err := models.ParsePeriod(strings.ToLower(input)); err == nil && p != models.PeriodAll {
		return string(p), nil
	}
	d, err := models.ParseDate(input)
	if err != nil {
		return "", InputError("❌ Введите «сегодня», «неделя», «месяц» или дату ГГГГ-ММ-ДД")
	}
	return d.Format(models.DateLayout), nil
}

package calendar

import "time"

// WeekWindow возвращает границы календарной недели для даты t:
// понедельник 00:00:00 и воскресенье 23:59:59 в таймзоне t.
// Нумерация дней — ISO (понедельник=1 ... воскресенье=7), без привязки к локали.
func WeekWindow(t time.Time) (start, end time.Time) {
	wd := int(t.Weekday())
	if wd == 0 { // time.Sunday
		wd = 7
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = day.AddDate(0, 0, -(wd - 1))
	end = start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// InWeek сообщает, попадает ли день day в неделю даты ref (границы включительно).
func InWeek(day, ref time.Time) bool {
	start, end := WeekWindow(ref)
	return !day.Before(start) && !day.After(end)
}

// HasDateInWeek сообщает, попадает ли хотя бы одна из дат в неделю даты ref.
// Чистая проверка недельной квоты: даты подтверждённых записей передаёт вызывающий.
func HasDateInWeek(dates []time.Time, ref time.Time) bool {
	start, end := WeekWindow(ref)
	for _, d := range dates {
		if !d.Before(start) && !d.After(end) {
			return true
		}
	}
	return false
}

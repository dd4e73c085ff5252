package commandparser

import (
	"regexp"
	"remindbot/internal/core/domain/reminder"
	"strconv"
	"strings"
	"time"
)

const (
	listKeyword         = "reminders list"
	deleteKeyword       = "delete"
	dailyKeyword        = "daily"
	weeklyKeyword       = "weekly"
	dateTimeParseLayout = "02.01.2006 15:04"
)

// reDateTime matches the "DD.MM.YYYY HH:MM" pattern anywhere in the text;
// the leftmost match wins.
var reDateTime = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s*(\d{2}:\d{2})`)

type Parser struct {
	location *time.Location
}

func New(location *time.Location) reminder.CommandParser {
	if location == nil {
		location = time.Local
	}
	return &Parser{location: location}
}

func (p *Parser) Parse(raw string) (reminder.Command, error) {
	body := strings.ToLower(strings.TrimSpace(raw))

	if body == listKeyword {
		return reminder.ListCommand{}, nil
	}

	if strings.HasPrefix(body, deleteKeyword) {
		return parseDelete(body)
	}

	return p.parseCreate(body)
}

func parseDelete(body string) (reminder.Command, error) {
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return nil, reminder.ErrParseReminderID
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, reminder.ErrParseReminderID
	}
	return reminder.DeleteCommand{ReminderID: reminder.ID(id)}, nil
}

func (p *Parser) parseCreate(body string) (reminder.Command, error) {
	recurrence := reminder.RecurrenceNone
	if strings.Contains(body, dailyKeyword) {
		recurrence = reminder.RecurrenceDaily
		body = strings.TrimSpace(strings.Replace(body, dailyKeyword, "", 1))
	} else if strings.Contains(body, weeklyKeyword) {
		recurrence = reminder.RecurrenceWeekly
		body = strings.TrimSpace(strings.Replace(body, weeklyKeyword, "", 1))
	}

	match := reDateTime.FindStringSubmatchIndex(body)
	if match == nil {
		return nil, reminder.ErrParseCommand
	}

	date := body[match[2]:match[3]]
	clock := body[match[4]:match[5]]
	fireTime, err := time.ParseInLocation(dateTimeParseLayout, date+" "+clock, p.location)
	if err != nil {
		// Matched digits that do not form a calendar date, e.g. 31.02.
		return nil, reminder.ErrParseCommand
	}

	message := strings.TrimSpace(body[:match[0]] + body[match[1]:])
	return reminder.CreateCommand{
		FireTime:   fireTime,
		Message:    message,
		Recurrence: recurrence,
	}, nil
}

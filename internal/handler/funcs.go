package handler

import (
	"fmt"
	"html/template"
	"time"

	"github.com/daily3me/daily3/internal/model"
)

// TemplateFuncs returns the functions available in templates. dateLayout
// is a Go time layout used by formatDate.
func TemplateFuncs(dateLayout string, now func() time.Time) template.FuncMap {
	if now == nil {
		now = time.Now
	}
	return template.FuncMap{
		"formatDate":  func(t time.Time) string { return t.Format(dateLayout) },
		"formatMonth": func(t time.Time) string { return t.Format("Jan") },
		"formatDay":   func(t time.Time) string { return t.Format("2") },
		"timeSince":   func(t time.Time) string { return TimeSince(t, now()) },
		"now":         now,
		"postItem": func(p model.PostView, viewer bool) postItem {
			return postItem{Post: p, Viewer: viewer}
		},
	}
}

// postItem is the data of the "post" template.
type postItem struct {
	Post   model.PostView
	Viewer bool // show the favorite button
}

// TimeSince describes how long ago t was, using the largest non-zero unit:
// "3 days", "1 hour". Anything under a second is "a few seconds".
// Hours, minutes and seconds only count the part of the interval past
// the last whole day.
func TimeSince(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	const day = 24 * time.Hour
	days := int(d / day)
	secs := int((d % day) / time.Second)

	periods := []struct {
		n                int
		singular, plural string
	}{
		{days / 365, "year", "years"},
		{days / 30, "month", "months"},
		{days / 7, "week", "weeks"},
		{days, "day", "days"},
		{secs / 3600, "hour", "hours"},
		{secs / 60, "minute", "minutes"},
		{secs, "second", "seconds"},
	}
	for _, p := range periods {
		if p.n == 0 {
			continue
		}
		if p.n == 1 {
			return fmt.Sprintf("%d %s", p.n, p.singular)
		}
		return fmt.Sprintf("%d %s", p.n, p.plural)
	}
	return "a few seconds"
}

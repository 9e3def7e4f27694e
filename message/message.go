package message

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"airbnb-cleaner/models"
)

// Built-in message styles
const (
	StyleIndonesian = "indonesian"
	StyleEnglish    = "english"
)

const indonesianTemplate = `
{{- if .Empty -}}
Besok tidak ada checkout atau checkin di Bali ({{dayMonth .Reference}})
{{- else -}}
{{- with .Checkouts}}Out: {{nicknames .}}
{{end -}}
{{- range .Checkins}}In: {{.PropertyNickname}}, {{.GuestCount}} orang, {{stayRange .}}
{{end -}}
{{- end -}}`

const englishTemplate = `🏠 Cleaning Schedule - {{longDate .Reference}}

{{if .Checkouts}}📤 TOMORROW'S CHECKOUTS:
{{range .Checkouts}}• {{.PropertyName}}
  Guest: {{.GuestName}}
  People: {{.GuestCount}}
{{if and .CheckIn .CheckOut}}  Stay: {{shortDate .CheckIn}} to {{shortDate .CheckOut}} ({{.Nights}} nights)
{{else}}  Checkout: {{shortDate $.Reference}}
{{end}}
{{end}}{{end}}{{if .Checkins}}📥 TOMORROW'S CHECK-INS:
{{range .Checkins}}• {{.PropertyName}}
  Guest: {{.GuestName}}
  People: {{.GuestCount}}
{{if and .CheckIn .CheckOut}}  Stay: {{shortDate .CheckIn}} to {{shortDate .CheckOut}} ({{.Nights}} nights)
{{else}}  Check-in: {{shortDate $.Reference}}
{{end}}
{{end}}{{end}}{{if .Empty}}No check-ins or check-outs scheduled for tomorrow.

{{end}}Generated: {{timestamp .Generated}}`

// Data is what message templates are executed with
type Data struct {
	Reference time.Time
	Checkouts []models.Reservation
	Checkins  []models.Reservation
	Empty     bool
	Generated time.Time
}

// Renderer formats a schedule into the text sent to the cleaners
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a Renderer for a built-in style, or for the template file at templatePath when set
func NewRenderer(style, templatePath string) (*Renderer, error) {
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read message template: %w", err)
		}
		return parse(filepath.Base(templatePath), string(content))
	}

	switch style {
	case StyleIndonesian, "":
		return parse(StyleIndonesian, indonesianTemplate)
	case StyleEnglish:
		return parse(StyleEnglish, englishTemplate)
	default:
		return nil, fmt.Errorf("unknown message style %q", style)
	}
}

func parse(name, text string) (*Renderer, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message template %s: %w", name, err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render formats the schedule; generated is printed by styles that carry a footer
func (r *Renderer) Render(schedule models.Schedule, generated time.Time) (string, error) {
	data := Data{
		Reference: schedule.Reference,
		Checkouts: schedule.Checkouts,
		Checkins:  schedule.Checkins,
		Empty:     schedule.IsEmpty(),
		Generated: generated,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render message: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

var funcs = template.FuncMap{
	"dayMonth":  dayMonthValue,
	"shortDate": shortDate,
	"longDate":  func(t time.Time) string { return t.Format("January 02, 2006") },
	"timestamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"nicknames": nicknames,
	"stayRange": StayRange,
}

// DayMonth formats a date the way the cleaners write it: 7Aug
func DayMonth(t time.Time) string {
	return fmt.Sprintf("%d%s", t.Day(), t.Format("Jan"))
}

// StayRange renders a check-in as 7Aug-9Aug, 7Aug when the check-out is unknown, or TBC
func StayRange(r models.Reservation) string {
	switch {
	case r.CheckIn != nil && r.CheckOut != nil:
		return DayMonth(*r.CheckIn) + "-" + DayMonth(*r.CheckOut)
	case r.CheckIn != nil:
		return DayMonth(*r.CheckIn)
	default:
		return "TBC"
	}
}

func nicknames(reservations []models.Reservation) string {
	names := make([]string, 0, len(reservations))
	for _, r := range reservations {
		names = append(names, r.PropertyNickname)
	}
	return strings.Join(names, ", ")
}

func dayMonthValue(v any) string {
	t, ok := timeValue(v)
	if !ok {
		return ""
	}
	return DayMonth(t)
}

func shortDate(v any) string {
	t, ok := timeValue(v)
	if !ok {
		return ""
	}
	return t.Format("Jan 02")
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

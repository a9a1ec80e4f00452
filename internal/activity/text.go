package activity

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"

	"github.com/sadopc/pmreport/internal/api"
)

// ActionText describes what happened in one entry, without the actor.
func ActionText(a api.Activity) string {
	switch a.Action {
	case api.ActionCreated, api.ActionUpdated, api.ActionDeleted:
		return fmt.Sprintf("%s %s \"%s\"", a.Action, a.EntityType, a.EntityName)
	case api.ActionStatusChanged:
		return fmt.Sprintf("changed status of \"%s\" from %s to %s",
			a.EntityName, detail(a, "from"), detail(a, "to"))
	case api.ActionAssigned:
		return fmt.Sprintf("assigned \"%s\" to %s", a.EntityName, detail(a, "assignee"))
	case api.ActionCommented:
		return fmt.Sprintf("commented on \"%s\"", a.EntityName)
	}
	return fmt.Sprintf("performed action on \"%s\"", a.EntityName)
}

// Describe prefixes ActionText with the actor's name.
func Describe(a api.Activity) string {
	actor := a.UserName
	if actor == "" {
		actor = "Someone"
	}
	return actor + " " + ActionText(a)
}

func detail(a api.Activity, key string) string {
	v, ok := a.Details[key]
	if !ok || v == nil {
		return "?"
	}
	if s, ok := v.(string); ok {
		if st, err := api.ParseTaskStatus(s); err == nil {
			return st.Label()
		}
		return s
	}
	return fmt.Sprint(v)
}

// TimeAgo renders how long ago t was: "Just now", "5m ago", "3h ago",
// "2d ago", and a localized date from a week on. The year is added once t
// is more than a year old.
func TimeAgo(t, now time.Time, locale monday.Locale) string {
	d := now.Sub(t)
	minutes := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}

	layout := "2 Jan"
	if days > 365 {
		layout = "2 Jan 2006"
	}
	return monday.Format(t.In(now.Location()), layout, locale)
}

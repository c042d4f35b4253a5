package chatbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/kavin1231/campusconnect-event-management/internal/model"
)

type Reply struct {
	Response string
	Events   []model.Event
}

// Respond matches a free-text query against a fixed set of keyword intents
// and falls back to a substring search over titles and descriptions. Intent
// order matters: earlier intents shadow later ones.
func Respond(text string, events []model.Event, now time.Time) Reply {
	query := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(query, "next", "upcoming"):
		upcoming := filterUpcoming(events, now)
		if len(upcoming) == 0 {
			return Reply{Response: "There are no upcoming events currently scheduled."}
		}
		first := upcoming[0]
		return Reply{
			Response: fmt.Sprintf("The next upcoming event is %q on %s.", first.Title, first.Date.Format("January 2, 2006")),
			Events:   limit(upcoming, 3),
		}
	case containsAny(query, "tech", "software", "code"):
		matches := filterCategory(events, "TECH")
		return Reply{
			Response: fmt.Sprintf("I found %d technical events for you.", len(matches)),
			Events:   matches,
		}
	case containsAny(query, "sport", "run", "match"):
		matches := filterCategory(events, "SPORTS")
		return Reply{
			Response: fmt.Sprintf("There are %d sports events coming up.", len(matches)),
			Events:   matches,
		}
	case containsAny(query, "music", "band", "audition"):
		return Reply{
			Response: "We have some great musical events scheduled!",
			Events:   filterCategory(events, "MUSIC"),
		}
	case containsAny(query, "art", "paint"):
		return Reply{
			Response: "Unleash your creativity at these arts events!",
			Events:   filterCategory(events, "ARTS"),
		}
	case containsAny(query, "hello", "hi"):
		return Reply{Response: "Hello! I'm your CampusConnect assistant. Ask me about upcoming workshops, sports meets, or fests!"}
	}

	matches := search(events, query)
	if len(matches) > 0 {
		return Reply{
			Response: fmt.Sprintf("I found some events related to %q.", text),
			Events:   matches,
		}
	}
	return Reply{
		Response: "I'm sorry, I couldn't find any events matching that. Would you like to see all upcoming events?",
		Events:   limit(filterUpcoming(events, now), 3),
	}
}

func containsAny(query string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(query, keyword) {
			return true
		}
	}
	return false
}

func filterUpcoming(events []model.Event, now time.Time) []model.Event {
	matches := []model.Event{}
	for _, event := range events {
		if !event.Date.Before(now) {
			matches = append(matches, event)
		}
	}
	return matches
}

func filterCategory(events []model.Event, category string) []model.Event {
	matches := []model.Event{}
	for _, event := range events {
		if event.Category == category {
			matches = append(matches, event)
		}
	}
	return matches
}

func search(events []model.Event, query string) []model.Event {
	matches := []model.Event{}
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Title), query) ||
			strings.Contains(strings.ToLower(event.Description), query) {
			matches = append(matches, event)
		}
	}
	return matches
}

func limit(events []model.Event, n int) []model.Event {
	if len(events) <= n {
		return events
	}
	return events[:n]
}

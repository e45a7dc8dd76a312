package store

import "github.com/vzahanych/weather-lookup/internal/service"

// Reducer folds one event into a state.
type Reducer func(state AppState, ev Event) AppState

// Reduce is the application reducer. It never mutates state in place;
// events it does not know return state unchanged.
func Reduce(state AppState, ev Event) AppState {
	switch e := ev.(type) {
	case FetchStart:
		state.Loading = true
		state.Error = ""
	case FetchSuccess:
		state.Loading = false
		state.Weather = e.Payload
		state.Error = ""
	case FetchError:
		state.Loading = false
		state.Error = e.Message
	case SetSuggestions:
		state.Suggestions = cloneSuggestions(e.Suggestions)
		state.LoadingSuggestions = false
	case SuggestionsLoading:
		state.LoadingSuggestions = true
	case SuggestionsError:
		state.LoadingSuggestions = false
	case AddRecentCity:
		state.Recent = pushRecent(state.Recent, e.City)
	case SetForecastDays:
		state.ForecastDays = service.ClampForecastDays(e.Days)
	}
	return state
}

// pushRecent returns a new list with city first, any previous entry with the
// same ID removed, capped at maxRecent.
func pushRecent(recent []service.CurrentConditions, city service.CurrentConditions) []service.CurrentConditions {
	out := make([]service.CurrentConditions, 0, maxRecent)
	out = append(out, city)
	for _, c := range recent {
		if len(out) == maxRecent {
			break
		}
		if c.ID == city.ID {
			continue
		}
		out = append(out, c)
	}
	return out
}

func cloneSuggestions(list []Suggestion) []Suggestion {
	out := make([]Suggestion, len(list))
	copy(out, list)
	return out
}

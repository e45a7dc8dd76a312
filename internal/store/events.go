package store

import "github.com/vzahanych/weather-lookup/internal/service"

// Action is anything accepted by Store.Dispatch: an Event or an Intent.
type Action interface {
	isAction()
}

// Event is a completed state change. The set is closed; Reduce matches it
// exhaustively.
type Event interface {
	Action
	EventName() string
	isEvent()
}

type event struct{}

func (event) isAction() {}
func (event) isEvent()  {}

type FetchStart struct{ event }

type FetchSuccess struct {
	event
	Payload *service.WeatherPayload
}

type FetchError struct {
	event
	Message string
}

type SetSuggestions struct {
	event
	Suggestions []Suggestion
}

type SuggestionsLoading struct{ event }

type SuggestionsError struct{ event }

type AddRecentCity struct {
	event
	City service.CurrentConditions
}

type SetForecastDays struct {
	event
	Days int
}

func (FetchStart) EventName() string         { return "FETCH_START" }
func (FetchSuccess) EventName() string       { return "FETCH_SUCCESS" }
func (FetchError) EventName() string         { return "FETCH_ERROR" }
func (SetSuggestions) EventName() string     { return "SET_SUGGESTIONS" }
func (SuggestionsLoading) EventName() string { return "SUGGESTIONS_LOADING" }
func (SuggestionsError) EventName() string   { return "SUGGESTIONS_ERROR" }
func (AddRecentCity) EventName() string      { return "ADD_RECENT_CITY" }
func (SetForecastDays) EventName() string    { return "SET_FORECAST_DAYS" }

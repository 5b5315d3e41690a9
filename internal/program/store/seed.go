package store

import (
	"time"

	"raceday/internal/locale"
	"raceday/internal/program/models"
)

// raceZone is the local time of the race venue during the event weekend.
var raceZone = time.FixedZone("EEST", 3*60*60)

// DefaultProgram is the race weekend schedule served when no database is configured.
func DefaultProgram() []models.Event {
	fri := time.Date(2026, 6, 12, 0, 0, 0, 0, raceZone)
	sat := fri.AddDate(0, 0, 1)
	sun := fri.AddDate(0, 0, 2)
	at := func(day time.Time, hour, minute int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	end := func(day time.Time, hour, minute int) *time.Time {
		t := at(day, hour, minute)
		return &t
	}

	return []models.Event{
		{
			ID: "bib-pickup-fri", Date: fri, StartTime: at(fri, 14, 0), EndTime: end(fri, 20, 0),
			Title: locale.Text{
				locale.English: "Bib pick-up",
				locale.Romanian: "Ridicare kit de concurs",
				locale.French:   "Retrait des dossards",
				locale.German:   "Startnummernausgabe",
			},
			Description: locale.Text{
				locale.English:  "Race office at the town hall. Bring an ID document.",
				locale.Romanian: "Secretariatul cursei, la primărie. Aveți nevoie de act de identitate.",
			},
		},
		{
			ID: "briefing-ultra", Date: fri, StartTime: at(fri, 20, 30), EndTime: end(fri, 21, 15),
			Title: locale.Text{
				locale.English:  "Ultra race briefing",
				locale.Romanian: "Ședință tehnică ultra",
				locale.French:   "Briefing ultra",
			},
		},
		{
			ID: "start-ultra", Date: sat, StartTime: at(sat, 5, 0),
			Title: locale.Text{locale.English: "Ultra start", locale.Romanian: "Start ultra", locale.German: "Start Ultra"},
		},
		{
			ID: "start-marathon", Date: sat, StartTime: at(sat, 7, 0),
			Title: locale.Text{locale.English: "Marathon start", locale.Romanian: "Start maraton", locale.French: "Départ marathon"},
		},
		{
			ID: "start-half", Date: sat, StartTime: at(sat, 8, 30),
			Title: locale.Text{locale.English: "Half marathon start", locale.Romanian: "Start semimaraton"},
		},
		{
			ID: "start-25k", Date: sat, StartTime: at(sat, 8, 30),
			Title: locale.Text{locale.English: "25K start", locale.Romanian: "Start 25K"},
		},
		{
			ID: "start-10k", Date: sun, StartTime: at(sun, 9, 0),
			Title: locale.Text{locale.English: "10K start", locale.Romanian: "Start 10K"},
		},
		{
			ID: "awards", Date: sun, StartTime: at(sun, 14, 0), EndTime: end(sun, 16, 0),
			Title: locale.Text{
				locale.English:  "Award ceremony",
				locale.Romanian: "Festivitatea de premiere",
				locale.French:   "Remise des prix",
				locale.German:   "Siegerehrung",
			},
		},
	}
}

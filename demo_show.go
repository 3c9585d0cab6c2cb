package main

import "github.com/robmorgan/playhead/config"

// builtinShow is the fallback show used when no show.yaml is present: a
// short subtitle track with a lighting wash underneath it.
func builtinShow() *config.Show {
	return &config.Show{
		Name:   "built-in demo",
		Vector: config.ShowVector{Position: 0, Velocity: 1},
		Cues: []config.ShowCue{
			{
				Key:       "wash",
				Low:       0,
				High:      30,
				Text:      "warm wash up",
				Color:     "#FF9000",
				Fixture:   "front_par",
				Intensity: 0.6,
			},
			{
				Key:   "line-1",
				Low:   2,
				High:  6,
				Text:  "We've known each other for so long",
				Color: "#FFFFFF",
			},
			{
				Key:   "line-2",
				Low:   6,
				High:  10,
				Text:  "Your heart's been aching, but you're too shy to say it",
				Color: "#FFFFFF",
			},
			{
				Key:       "strobe-hit",
				Low:       10,
				High:      10,
				Text:      "strobe hit",
				Color:     "#FFFFFF",
				Fixture:   "strobe_par",
				Intensity: 1.0,
			},
			{
				Key:       "blue-chorus",
				Low:       10,
				High:      20,
				Text:      "chorus wash",
				Color:     "#2040FF",
				Fixture:   "back_par",
				Intensity: 0.8,
			},
		},
	}
}

package domain

import (
	"fmt"
	"sort"
)

// Priority levels for camera and battery.
const (
	PriorityHigh        = "oncelikli"
	PriorityStandard    = "standart"
	PriorityUnimportant = "onemsiz"
)

// Performance expectation.
const (
	PerformanceGaming = "oyun"
	PerformanceDaily  = "gunluk"
	PerformanceBasic  = "temel"
)

// Screen size preference.
const (
	ScreenLarge   = "buyuk"
	ScreenCompact = "kompakt"
	ScreenNoPref  = "farketmez"
)

// Operating system preference.
const (
	OSAndroid = "android"
	OSIOS     = "ios"
	OSNoPref  = "farketmez"
)

// Budget bounds in TL. The form slider moves in steps of BudgetStep.
const (
	BudgetMin  = 5000
	BudgetMax  = 100000
	BudgetStep = 2500
)

// UserPreferences is the record submitted by the preference form. It is
// immutable once submitted; a new search builds a new one.
type UserPreferences struct {
	Budget      int    `json:"budget"`
	Camera      string `json:"camera"`
	Battery     string `json:"battery"`
	Performance string `json:"performance"`
	ScreenSize  string `json:"screenSize"`
	OS          string `json:"os"`
}

// PhoneSpecs holds the six core technical attributes of a recommended phone.
// All fields are required by the response schema.
type PhoneSpecs struct {
	Display   string `json:"display"`
	Battery   string `json:"battery"`
	Camera    string `json:"camera"`
	Processor string `json:"processor"`
	RAM       string `json:"ram"`
	Storage   string `json:"storage"`
}

// PhoneRecommendation is produced only by the generative model and treated as
// an opaque validated record afterwards. Model is the unique key within a
// result list; comparison, favorite and filter membership all test exact
// equality on it.
type PhoneRecommendation struct {
	Model          string     `json:"model"`
	Brand          string     `json:"brand"`
	OS             string     `json:"os"`
	EstimatedPrice string     `json:"estimatedPrice"`
	Summary        string     `json:"summary"`
	Pros           []string   `json:"pros"`
	Cons           []string   `json:"cons"`
	Specs          PhoneSpecs `json:"specs"`
	MatchScore     int        `json:"matchScore"`
	MismatchReason string     `json:"mismatchReason,omitempty"`
}

// FeatureValue pairs a phone model with its value for one spec row, for the
// deep feature comparison call.
type FeatureValue struct {
	Model string `json:"model"`
	Value string `json:"value"`
}

// FilterAll is the sentinel meaning "no filtering on this facet".
const FilterAll = "all"

// Filters is the active facet filter pair over a result list.
type Filters struct {
	Brand string `json:"brand"`
	OS    string `json:"os"`
}

// NoFilters returns the reset state {all, all}.
func NoFilters() Filters {
	return Filters{Brand: FilterAll, OS: FilterAll}
}

// Validate checks the form invariants: budget inside its slider range and on
// a step boundary, every axis one of its enumerated values.
func (p UserPreferences) Validate() error {
	if p.Budget < BudgetMin || p.Budget > BudgetMax {
		return fmt.Errorf("budget must be between %d and %d", BudgetMin, BudgetMax)
	}
	if p.Budget%BudgetStep != 0 {
		return fmt.Errorf("budget must be a multiple of %d", BudgetStep)
	}

	switch p.Camera {
	case PriorityHigh, PriorityStandard, PriorityUnimportant:
	default:
		return fmt.Errorf("invalid camera priority %q", p.Camera)
	}

	switch p.Battery {
	case PriorityHigh, PriorityStandard, PriorityUnimportant:
	default:
		return fmt.Errorf("invalid battery priority %q", p.Battery)
	}

	switch p.Performance {
	case PerformanceGaming, PerformanceDaily, PerformanceBasic:
	default:
		return fmt.Errorf("invalid performance expectation %q", p.Performance)
	}

	switch p.ScreenSize {
	case ScreenLarge, ScreenCompact, ScreenNoPref:
	default:
		return fmt.Errorf("invalid screen size preference %q", p.ScreenSize)
	}

	switch p.OS {
	case OSAndroid, OSIOS, OSNoPref:
	default:
		return fmt.Errorf("invalid os preference %q", p.OS)
	}

	return nil
}

// SortByMatchScore orders recommendations by matchScore descending, in place.
// The model is instructed to return results pre-sorted, but the ordering is
// not guaranteed, so consumers re-sort.
func SortByMatchScore(recs []PhoneRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
}

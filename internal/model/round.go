package model

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/athletix/internal/textfold"
)

// Round is the competitive stage of an event.
type Round string

const (
	RoundQualification  Round = "QUALIFICATION"
	RoundQualificationA Round = "QUALIFICATION_A"
	RoundQualificationB Round = "QUALIFICATION_B"
	RoundQualificationC Round = "QUALIFICATION_C"
	RoundSemifinal      Round = "SEMIFINAL"
	RoundFinal          Round = "FINAL"
)

// Stage returns the fixed ordering rank of the round: all qualification
// variants share stage 0, semifinals are 1 and finals 2.
func (r Round) Stage() int {
	switch r {
	case RoundSemifinal:
		return 1
	case RoundFinal:
		return 2
	default:
		return 0
	}
}

// IsQualification reports whether r is any qualification variant.
func (r Round) IsQualification() bool {
	return r.Stage() == 0
}

// Valid reports whether r is one of the known rounds.
func (r Round) Valid() bool {
	switch r {
	case RoundQualification, RoundQualificationA, RoundQualificationB, RoundQualificationC,
		RoundSemifinal, RoundFinal:
		return true
	}
	return false
}

// roundAliases maps folded spellings seen in start lists to rounds.
var roundAliases = map[string]Round{
	"qualification":   RoundQualification,
	"q":               RoundQualification,
	"heats":           RoundQualification,
	"eliminacje":      RoundQualification,
	"qualification a": RoundQualificationA,
	"qualification_a": RoundQualificationA,
	"group a":         RoundQualificationA,
	"grupa a":         RoundQualificationA,
	"qualification b": RoundQualificationB,
	"qualification_b": RoundQualificationB,
	"group b":         RoundQualificationB,
	"grupa b":         RoundQualificationB,
	"qualification c": RoundQualificationC,
	"qualification_c": RoundQualificationC,
	"group c":         RoundQualificationC,
	"grupa c":         RoundQualificationC,
	"semifinal":       RoundSemifinal,
	"semi-final":      RoundSemifinal,
	"sf":              RoundSemifinal,
	"polfinal":        RoundSemifinal,
	"final":           RoundFinal,
	"f":               RoundFinal,
	"final a":         RoundFinal,
}

// ParseRound accepts canonical round names and common start-list spellings.
// An empty string is the default qualification round.
func ParseRound(s string) (Round, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoundQualification, nil
	}
	if r := Round(strings.ToUpper(s)); r.Valid() {
		return r, nil
	}
	if r, ok := roundAliases[textfold.Fold(s)]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown round %q", s)
}

// DisciplineKey folds a discipline name so that "1500 m", "1500m" and
// "1500M" share one key. Athlete PB/SB maps are keyed by it.
func DisciplineKey(discipline string) string {
	return strings.ReplaceAll(textfold.Fold(discipline), " ", "")
}

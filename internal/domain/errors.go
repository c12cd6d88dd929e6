package domain

import (
	"fmt"
	"strings"
)

type MissingInputFileError struct {
	Path string
	Hint string
}

func (e MissingInputFileError) Error() string {
	msg := fmt.Sprintf("could not find input file '%s'", e.Path)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

type MissingColumnError struct {
	Table    string
	Expected []string
	Found    []string
}

func (e MissingColumnError) Error() string {
	return fmt.Sprintf(
		"missing column(s) [%s] in %s. found: [%s]",
		strings.Join(e.Expected, ", "),
		e.Table,
		strings.Join(e.Found, ", "),
	)
}

// JoinCardinalityError is returned when a one-to-one join sees a
// repeated key on one side
type JoinCardinalityError struct {
	Side       string
	Key        string
	Duplicates []string
}

func (e JoinCardinalityError) Error() string {
	return fmt.Sprintf(
		"join on '%s' is not one-to-one: %s has duplicate keys [%s]",
		e.Key,
		e.Side,
		strings.Join(e.Duplicates, ", "),
	)
}

type TickerNotFoundError struct {
	Ticker string
}

func (e TickerNotFoundError) Error() string {
	return fmt.Sprintf("Ticker '%s' not found.", e.Ticker)
}

type InvalidTickerError struct {
	Ticker string
}

func (e InvalidTickerError) Error() string {
	if e.Ticker == "" {
		return "No ticker provided"
	}
	return fmt.Sprintf("invalid ticker '%s'", e.Ticker)
}

type ShapeMismatchError struct {
	What     string
	Expected int
	Got      int
}

func (e ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s shape mismatch: expected %d, got %d", e.What, e.Expected, e.Got)
}

package config

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Configuration errors
	ErrStackMode = errors.New(f("config stack mode invalid"))
	ErrNegative  = errors.New(f("config value negative"))
	ErrInterval  = errors.New(f("config interval invalid"))
)

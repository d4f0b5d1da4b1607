package config

import "errors"

var (
	ErrConfig  = errors.New("invalid configuration")
	ErrLoading = errors.New("failed to load configuration")
)

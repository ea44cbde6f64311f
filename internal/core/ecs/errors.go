package ecs

import "errors"

var (
	ErrUnknownConstructor = errors.New("unknown component constructor")
	ErrConstructorExists  = errors.New("component constructor already registered")
	ErrInvalidParam       = errors.New("invalid constructor parameter")
	ErrEmptyPrefab        = errors.New("prefab has no components")
)

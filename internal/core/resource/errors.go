package resource

import "errors"

var ErrNotLoaded = errors.New("resource not loaded")

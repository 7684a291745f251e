package repo

import "errors"

var errNoID = errors.New("no id returned")

package srcloc

import "errors"

var errShortMarker = errors.New("srcloc: line-mark path shorter than prefix")

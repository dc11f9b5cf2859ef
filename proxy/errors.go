package proxy

import "errors"

// ErrBadPort indicates a listen port outside the valid TCP range.
var ErrBadPort = errors.New("proxy: invalid listen port")

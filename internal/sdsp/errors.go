package sdsp

import "github.com/mewkiz/pkg/errutil"

// ErrInvalidWindowFunctionType is returned by MakeWindow for an out-of-range
// WindowType.
var ErrInvalidWindowFunctionType = errutil.Newf("sdsp: invalid window function type")

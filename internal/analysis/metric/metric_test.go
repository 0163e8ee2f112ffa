package metric_test

import "errors"

// errForced is the scripted failure shared by the metric tests.
var errForced = errors.New("forced failure")

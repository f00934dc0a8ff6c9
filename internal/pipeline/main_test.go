package pipeline

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain checks for leaked goroutines. The opencensus view worker started
// by gocloud's package init lives for the whole process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

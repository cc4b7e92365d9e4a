package launch

import (
	"testing"

	"go.uber.org/goleak"
)

// Every child process must be waited for, including its stdio copiers.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveTest(t *testing.T) {
	c := NewCollector()
	c.ObserveTest("samples.Calc", "Passed", 10*time.Millisecond, 2)
	c.ObserveTest("samples.Calc", "Passed", 20*time.Millisecond, 1)
	c.ObserveTest("samples.Calc", "Failed", time.Millisecond, 1)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "gunit_tests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"Passed": 2, "Failed": 1}, counts)
}

func TestCollector_Write(t *testing.T) {
	c := NewCollector()
	c.ObserveTest("samples.Calc", "Passed", time.Millisecond, 0)
	c.ObserveRun(3, time.Second)

	path := filepath.Join(t.TempDir(), "out", "gunit.prom")
	require.NoError(t, c.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `gunit_tests_total{status="Passed"} 1`), text)
	assert.Contains(t, text, "gunit_workers 3")
	assert.Contains(t, text, "gunit_run_duration_seconds 1")
}

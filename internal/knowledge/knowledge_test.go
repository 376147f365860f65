package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
)

func TestLoadParsesBothModes(t *testing.T) {
	b, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Contains(t, b.CoreInstructions(domain.ModeDiscovery), "Discover & Frame")
	assert.Contains(t, b.CoreInstructions(domain.ModeEvaluate), "Evaluate Solution")
	assert.NotEmpty(t, b.ProbeNames(domain.ModeDiscovery))
	assert.NotEmpty(t, b.ProbeNames(domain.ModeEvaluate))
}

func TestLookupProbeAcrossModes(t *testing.T) {
	b, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Contains(t, b.LookupProbe("Why Now"), "Probe 2: Why Now")
	assert.Contains(t, b.LookupProbe("Solution-Problem Fit"), "Probe 1: Solution-Problem Fit")
	assert.Contains(t, b.LookupProbe("Solution-Problem Separation"), "Probe 1: Solution-Problem Separation")
}

func TestLookupMissReturnsEmpty(t *testing.T) {
	b, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, b.LookupProbe("Probe That Does Not Exist"))
	assert.Empty(t, b.LookupProbe(""))
}

func TestLookupPatternsSkipsUnknown(t *testing.T) {
	b, err := Load(zap.NewNop())
	require.NoError(t, err)

	text := b.LookupPatterns([]string{"Data Optimism", "No Such Pattern", "Talent Drain"})
	assert.Contains(t, text, "Data Optimism")
	assert.Contains(t, text, "Talent Drain")
	assert.NotContains(t, text, "No Such Pattern")

	assert.Empty(t, b.LookupPatterns(nil))
}

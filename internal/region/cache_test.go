package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClassifier struct {
	calls int
}

func (c *countingClassifier) Classify(address string) Name {
	c.calls++
	return Parser{}.Classify(address)
}

func TestCachedClassifier_Hit(t *testing.T) {
	inner := &countingClassifier{}
	cached, err := NewCachedClassifier(inner, 10, nil)
	require.NoError(t, err)

	n1 := cached.Classify("台北市中正區忠孝西路100號")
	n2 := cached.Classify("台北市中正區忠孝西路100號")

	assert.Equal(t, n1, n2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")

	hits, misses := cached.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCachedClassifier_VariantSpellingSharesEntry(t *testing.T) {
	inner := &countingClassifier{}
	cached, err := NewCachedClassifier(inner, 10, nil)
	require.NoError(t, err)

	cached.Classify("臺北市中正區忠孝西路100號")
	n := cached.Classify("台北市中正區忠孝西路100號")

	assert.Equal(t, Name{City: Taipei, District: "中正區"}, n)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedClassifier_Eviction(t *testing.T) {
	inner := &countingClassifier{}
	cached, err := NewCachedClassifier(inner, 2, nil)
	require.NoError(t, err)

	cached.Classify("台北市中正區")
	cached.Classify("台中市西屯區")
	cached.Classify("高雄市苓雅區") // evicts 台北市中正區
	cached.Classify("台北市中正區")

	assert.Equal(t, 4, inner.calls)
}

func TestCachedClassifier_OnLookup(t *testing.T) {
	var results []bool
	cached, err := NewCachedClassifier(Parser{}, 10, func(hit bool) {
		results = append(results, hit)
	})
	require.NoError(t, err)

	cached.Classify("台北市中正區")
	cached.Classify("台北市中正區")

	assert.Equal(t, []bool{false, true}, results)
}

func TestNewCachedClassifier_InvalidSize(t *testing.T) {
	_, err := NewCachedClassifier(Parser{}, 0, nil)
	assert.Error(t, err)
}

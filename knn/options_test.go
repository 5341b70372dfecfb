package knn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableOptions(t *testing.T) {
	testCases := []struct {
		description string
		args        []string
		expect      tableOptions
		expectErr   bool
	}{
		{description: "defaults", expect: tableOptions{kind: indexAuto}},
		{description: "dims and index", args: []string{"dims=3", " index = KD "}, expect: tableOptions{dims: 3, kind: indexKD}},
		{description: "quoted values", args: []string{"dimensions='2'", `index="brute"`}, expect: tableOptions{dims: 2, kind: indexBrute}},
		{description: "unknown keys ignored", args: []string{"colour=blue", "flag"}, expect: tableOptions{kind: indexAuto}},
		{description: "bad dims", args: []string{"dims=zero"}, expectErr: true},
		{description: "non positive dims", args: []string{"dims=0"}, expectErr: true},
		{description: "bad index", args: []string{"index=cover"}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := parseTableOptions(testCase.args)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestResolveIndexKind(t *testing.T) {
	auto := tableOptions{kind: indexAuto}
	assert.Equal(t, indexBrute, auto.resolveIndexKind(autoKDMinPoints-1, 3))
	assert.Equal(t, indexKD, auto.resolveIndexKind(autoKDMinPoints, 3))
	assert.Equal(t, indexBrute, auto.resolveIndexKind(100000, autoKDMaxDims+1))
	assert.Equal(t, indexKD, tableOptions{kind: indexKD}.resolveIndexKind(1, 128))
	assert.Equal(t, indexBrute, tableOptions{kind: indexBrute}.resolveIndexKind(100000, 2))
}

func TestAsInt(t *testing.T) {
	for _, v := range []interface{}{int64(4), float64(4), "4", []byte("4")} {
		n, err := asInt(v)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	}
	_, err := asInt("four")
	assert.Error(t, err)
	_, err = asInt(true)
	assert.Error(t, err)
}

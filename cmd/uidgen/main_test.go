package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/snowflake"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNextCmd(t *testing.T) {
	out, err := run(t, "next", "--worker", "3", "--datacenter", "4", "-n", "5")
	require.NoError(t, err)

	lines := strings.Fields(out)
	require.Len(t, lines, 5)

	var prev int64
	for _, line := range lines {
		id, err := strconv.ParseInt(line, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id

		info := snowflake.ParseID(id)
		assert.Equal(t, int64(3), info.WorkerID)
		assert.Equal(t, int64(4), info.DatacenterID)
	}
}

func TestNextCmd_InvalidIdentity(t *testing.T) {
	_, err := run(t, "next", "--worker", "32")
	assert.ErrorIs(t, err, core.ErrInvalidWorkerID)

	_, err = run(t, "next", "--datacenter=-1")
	assert.ErrorIs(t, err, core.ErrInvalidDatacenterID)
}

func TestParseCmd(t *testing.T) {
	id := int64(100)<<22 | 1<<17 | 1<<12 | 1
	out, err := run(t, "parse", strconv.FormatInt(id, 10), "0x"+strconv.FormatInt(id, 16))
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	for i := 0; i < 2; i++ {
		var info core.IDInfo
		require.NoError(t, dec.Decode(&info))
		assert.Equal(t, id, info.ID)
		assert.Equal(t, snowflake.Epoch+100, info.Timestamp)
		assert.Equal(t, int64(1), info.Sequence)
	}

	out, err = run(t, "parse", "0x8000000000000000")
	require.NoError(t, err)
	var info core.IDInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, *snowflake.ParseID(math.MinInt64), info)

	_, err = run(t, "parse", "nope")
	assert.Error(t, err)

	_, err = run(t, "parse")
	assert.Error(t, err)
}

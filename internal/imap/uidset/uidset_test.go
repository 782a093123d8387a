package uidset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		name string
		uids []uint32
		want []string
	}{
		{name: "empty", uids: nil, want: nil},
		{name: "single", uids: []uint32{42}, want: []string{"42"}},
		{name: "runs and singles", uids: []uint32{1, 2, 3, 5, 7, 8, 9}, want: []string{"1:3,5,7:9"}},
		{name: "unsorted with duplicates", uids: []uint32{9, 1, 3, 2, 2, 8, 7, 5}, want: []string{"1:3,5,7:9"}},
		{name: "pair collapses", uids: []uint32{10, 11}, want: []string{"10:11"}},
		{name: "max uid", uids: []uint32{4294967294, 4294967295}, want: []string{"4294967294:4294967295"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Encode(tc.uids))
		})
	}
}

func TestEncodeChunksAtCommaBoundaries(t *testing.T) {
	var uids []uint32
	for i := uint32(1); i <= 6000; i++ {
		uids = append(uids, i*2)
	}

	chunks := Encode(uids)
	require.Greater(t, len(chunks), 1)

	var decoded []uint32
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), MaxChunkLen)
		assert.NotEmpty(t, chunk)
		assert.False(t, strings.HasPrefix(chunk, ","))
		assert.False(t, strings.HasSuffix(chunk, ","))
		got, err := Decode(chunk)
		require.NoError(t, err)
		decoded = append(decoded, got...)
	}
	assert.Equal(t, uids, decoded)
}

func TestEncodeLimitSmall(t *testing.T) {
	chunks := EncodeLimit([]uint32{1, 3, 5, 7}, 3)
	assert.Equal(t, []string{"1,3", "5,7"}, chunks)
}

func TestDecode(t *testing.T) {
	got, err := Decode("1:3,7,5:5,3")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 5, 7}, got)

	got, err = Decode("4:2")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3, 4}, got)

	for _, bad := range []string{"*", "1:*", "a", "0", "1,,2"} {
		_, err := Decode(bad)
		assert.Error(t, err, bad)
	}
}

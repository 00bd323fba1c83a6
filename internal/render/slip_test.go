package render

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"voterroll/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVoter() *types.Voter {
	name := "Asha Patil"
	age := "34"
	return &types.Voter{ID: 1, EpicNo: "ZZT4871471", VoterFields: types.VoterFields{FullName: &name, Age: &age}}
}

func TestVoterSlipWithoutPoster(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, VoterSlip(&buf, testVoter(), ""))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestVoterSlipMissingPosterIsIgnored(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, VoterSlip(&buf, testVoter(), filepath.Join(t.TempDir(), "poster.jpg")))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestVoterSlipWithPoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 10))))
	require.NoError(t, f.Close())

	var without, with bytes.Buffer
	require.NoError(t, VoterSlip(&without, testVoter(), ""))
	require.NoError(t, VoterSlip(&with, testVoter(), path))

	assert.True(t, bytes.HasPrefix(with.Bytes(), []byte("%PDF-")))
	assert.Greater(t, with.Len(), without.Len())
}

func TestPosterType(t *testing.T) {
	dir := t.TempDir()
	webp := filepath.Join(dir, "poster.webp")
	require.NoError(t, os.WriteFile(webp, []byte("x"), 0o600))

	_, ok := posterType(webp)
	assert.False(t, ok)

	_, ok = posterType(dir + "/missing.png")
	assert.False(t, ok)
}

func TestValueFallsBack(t *testing.T) {
	blank := "  "
	assert.Equal(t, "N/A", value(nil))
	assert.Equal(t, "N/A", value(&blank))
	assert.Equal(t, "ZZT4871471.pdf", SlipFilename(testVoter())[len("voter-slip-"):])
}

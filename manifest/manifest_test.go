package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestLoad_FiltersOutOfRangeLabels(t *testing.T) {
	// gender is column 2 with max label 1; the third row exceeds it.
	path := writeList(t,
		"a.jpg 0 0 23 100\n"+
			"b.jpg 1 1 30 101\n"+
			"c.jpg 2 2 41 102\n")

	m, err := Load(path, AttributeGender)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	require.Equal(t, "a.jpg", m.Entries[0].Sample)
	require.Equal(t, 0, m.Entries[0].Label)
	require.Equal(t, "b.jpg", m.Entries[1].Sample)
	require.Equal(t, 1, m.Entries[1].Label)
	require.Equal(t, 2, m.ClassNum)
}

func TestLoad_DropsNegativeLabels(t *testing.T) {
	path := writeList(t,
		"a.jpg 3 0 23 100\n"+
			"b.jpg -1 1 30 101\n")

	m, err := Load(path, AttributeRace)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	require.Equal(t, 3, m.Entries[0].Label)
	require.Equal(t, 4, m.ClassNum)
}

func TestLoad_ClassNumAgeUsesObservedMax(t *testing.T) {
	path := writeList(t,
		"a.jpg 0 0 23 100\n"+
			"b.jpg 0 0 67 101\n")

	m, err := Load(path, AttributeAge)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	// age is a bounded regression target, not a one-hot class, so the
	// class count is the maximum itself rather than max+1.
	require.Equal(t, 67, m.ClassNum)
}

func TestLoad_AgeUnboundedAbove(t *testing.T) {
	path := writeList(t, "a.jpg 0 0 140 100\n")

	m, err := Load(path, AttributeAge)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	require.Equal(t, 140, m.Entries[0].Label)
}

func TestLoad_PreservesRowOrder(t *testing.T) {
	path := writeList(t,
		"c.jpg 1 0 23 100\n"+
			"a.jpg 2 0 30 101\n"+
			"b.jpg 0 0 41 102\n")

	m, err := Load(path, AttributeRace)
	require.NoError(t, err)
	require.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"},
		[]string{m.Entries[0].Sample, m.Entries[1].Sample, m.Entries[2].Sample})
}

func TestLoad_SourceAndMaskRoots(t *testing.T) {
	path := writeList(t, "ids/0001/a.jpg 1 0 23 100\n")

	m, err := Load(path, AttributeRace,
		WithSourceRoot("/data/images"),
		WithMaskRoot("/data/masks"),
	)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	require.Equal(t, filepath.Join("/data/images", "ids/0001/a.jpg"), m.Entries[0].Sample)
	require.Equal(t, filepath.Join("/data/masks", "ids/0001/a")+"_mask.png", m.Entries[0].Mask)
}

func TestLoad_MaskRequiresSourceRoot(t *testing.T) {
	path := writeList(t, "a.jpg 1 0 23 100\n")

	m, err := Load(path, AttributeRace, WithMaskRoot("/data/masks"))
	require.NoError(t, err)
	require.Empty(t, m.Entries[0].Mask)
}

func TestLoad_UnknownAttribute(t *testing.T) {
	path := writeList(t, "a.jpg 1 0 23 100\n")

	_, err := Load(path, Attribute("height"))
	require.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestLoad_MalformedRows(t *testing.T) {
	t.Run("non-integer label", func(t *testing.T) {
		path := writeList(t, "a.jpg 1 x 23 100\n")

		_, err := Load(path, AttributeGender)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1, perr.Line)
	})

	t.Run("missing columns", func(t *testing.T) {
		path := writeList(t,
			"a.jpg 1 0 23 100\n"+
				"b.jpg 1\n")

		_, err := Load(path, AttributeGender)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 2, perr.Line)
	})

	t.Run("sample too short for mask derivation", func(t *testing.T) {
		path := writeList(t, "a 1 0 23 100\n")

		_, err := Load(path, AttributeRace,
			WithSourceRoot("i"),
			WithMaskRoot("m"),
		)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, 1, perr.Line)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), AttributeGender)
		require.Error(t, err)
	})
}

func TestLoad_EmptyAfterFiltering(t *testing.T) {
	path := writeList(t, "a.jpg -1 -1 -1 -1\n")

	m, err := Load(path, AttributeGender)
	require.NoError(t, err)
	require.Empty(t, m.Entries)
	require.Zero(t, m.ClassNum)
}

func TestAttribute_Valid(t *testing.T) {
	for _, attr := range Attributes() {
		require.True(t, attr.Valid(), attr)
	}
	require.False(t, Attribute("pose").Valid())
}

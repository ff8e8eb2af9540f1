package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/liberr"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestChangesetAbsentFieldsProduceNoEntries(t *testing.T) {
	cs, err := MetadataInput{}.Changeset()
	require.NoError(t, err)
	assert.Equal(t, 0, cs.Len())
}

func TestChangesetMapsOnlyPresentFields(t *testing.T) {
	in := MetadataInput{
		Title:  strp("Watchmen"),
		Status: strp("Ended"),
	}
	cs, err := in.Changeset()
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Len())
}

func TestChangesetExplicitEmptyIsPresent(t *testing.T) {
	// an explicit "" clears the field, it is not the same as absent
	in := MetadataInput{Summary: strp("")}
	cs, err := in.Changeset()
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())
}

func TestChangesetNormalizesCategoricalValues(t *testing.T) {
	cases := map[string]string{
		"Ended":     "ended",
		"COMPLETED": "ended",
		"ongoing":   "continuing",
		"Canceled":  "cancelled",
		"On Hiatus": "hiatus",
	}
	for raw, want := range cases {
		got := normalizeStatus(raw)
		assert.Equal(t, want, got, "status %q", raw)
	}

	assert.Equal(t, "oneshot", normalizeBooktype("One-Shot"))
	assert.Equal(t, "tpb", normalizeBooktype("Trade Paperback"))
	assert.Equal(t, "hc", normalizeBooktype("HARDCOVER"))
}

func TestChangesetRejectsUnknownStatus(t *testing.T) {
	in := MetadataInput{Status: strp("paused")}
	cs, err := in.Changeset()
	assert.Nil(t, cs)
	require.Error(t, err)

	var ifv *liberr.InvalidFieldValueError
	require.ErrorAs(t, err, &ifv)
	assert.Equal(t, "status", ifv.Field)
	assert.Equal(t, "paused", ifv.Value)
}

func TestChangesetRejectsUnknownBooktype(t *testing.T) {
	_, err := MetadataInput{Booktype: strp("scroll")}.Changeset()
	assert.True(t, liberr.IsInvalidFieldValue(err))
}

func TestChangesetRejectsNegativeNumericFields(t *testing.T) {
	_, err := MetadataInput{AgeRating: intp(-1)}.Changeset()
	assert.True(t, liberr.IsInvalidFieldValue(err))

	_, err = MetadataInput{Volume: intp(-3)}.Changeset()
	assert.True(t, liberr.IsInvalidFieldValue(err))
}

func TestChangesetAllowsClearingCategoricalWithEmpty(t *testing.T) {
	cs, err := MetadataInput{Status: strp("")}.Changeset()
	require.NoError(t, err)
	assert.Equal(t, 1, cs.Len())
}

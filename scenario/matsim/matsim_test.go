package matsim

import (
	"encoding/xml"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_SetReplacesInPlace_OrderPreserved(t *testing.T) {
	// GIVEN attributes a, b
	var attrs Attributes
	attrs.SetString("a", "1")
	attrs.SetString("b", "2")

	// WHEN a is overwritten with a double
	attrs.SetFloat("a", 3.5)

	// THEN a keeps its position and gets the new class
	require.Equal(t, 2, attrs.Len())
	assert.Equal(t, Attribute{Name: "a", Class: ClassDouble, Value: "3.5"}, attrs.Items[0])
	v, ok := attrs.Float("a")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
}

func TestAttributes_Remove_ReportsPresence(t *testing.T) {
	var attrs Attributes
	attrs.SetString("vehicles", "{}")

	assert.True(t, attrs.Remove("vehicles"))
	assert.False(t, attrs.Remove("vehicles"))
	assert.False(t, attrs.Has("vehicles"))
}

func TestAttributes_EmptyBlockIsOmitted(t *testing.T) {
	type holder struct {
		XMLName    xml.Name   `xml:"holder"`
		Attributes Attributes `xml:"attributes"`
	}
	out, err := xml.Marshal(holder{})
	require.NoError(t, err)
	assert.Equal(t, "<holder></holder>", string(out))

	h := holder{}
	h.Attributes.SetString("k", "v")
	out, err = xml.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `<holder><attributes><attribute name="k" class="java.lang.String">v</attribute></attributes></holder>`, string(out))
}

func TestFloat_NoExponentForLargeCoordinates(t *testing.T) {
	type pt struct {
		XMLName xml.Name `xml:"node"`
		X       Float    `xml:"x,attr"`
	}
	out, err := xml.Marshal(pt{X: 4621234.5})
	require.NoError(t, err)
	assert.Equal(t, `<node x="4621234.5"></node>`, string(out))
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"08:00:00", 28800},
		{"36:00:00", 129600},
		{"00:30", 1800},
		{"3600", 3600},
	}
	for _, tc := range tests {
		got, err := ParseTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := ParseTime("undefined")
	assert.Error(t, err)
	assert.Equal(t, "36:00:00", FormatTime(129600))
}

func TestWriteReadXML_GzipRoundTrip(t *testing.T) {
	type doc struct {
		XMLName xml.Name `xml:"doc"`
		Name    string   `xml:"name,attr"`
	}
	path := filepath.Join(t.TempDir(), "nested", "doc.xml.gz")

	require.NoError(t, WriteXML(path, `<!DOCTYPE doc SYSTEM "doc.dtd">`, doc{Name: "dresden"}))

	var got doc
	require.NoError(t, ReadXML(path, &got))
	assert.Equal(t, "dresden", got.Name)
}

func TestTrimExtensions(t *testing.T) {
	assert.Equal(t, "out/freight", TrimExtensions("out/freight.xml.gz"))
	assert.Equal(t, "out/freight", TrimExtensions("out/freight.xml"))
	assert.True(t, strings.HasSuffix(TrimExtensions("a.plans"), "plans"))
}

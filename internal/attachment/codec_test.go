package attachment

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	large := make([]byte, 2<<20)
	_, err := rand.Read(large)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"empty":  {},
		"text":   []byte("%PDF-1.4 hello"),
		"binary": {0x00, 0xff, 0x10, 0x80, 0x7f},
		"large":  large,
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			encoded := Encode("application/pdf", in)
			require.True(t, strings.HasPrefix(encoded, "data:application/pdf;base64,"))

			out, err := Decode(encoded)
			require.NoError(t, err)
			require.True(t, bytes.Equal(in, out))
		})
	}
}

func TestEncode_DefaultMIME(t *testing.T) {
	require.Equal(t, "data:application/octet-stream;base64,YWJj", Encode("", []byte("abc")))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode("no comma here")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Decode("data:application/pdf;base64,***not base64***")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeReader(t *testing.T) {
	encoded, err := EncodeReader("application/pdf", strings.NewReader("abc"), 3)
	require.NoError(t, err)
	require.Equal(t, "data:application/pdf;base64,YWJj", encoded)

	_, err = EncodeReader("application/pdf", strings.NewReader("abcd"), 3)
	require.ErrorIs(t, err, ErrTooLarge)

	encoded, err = EncodeReader("application/pdf", strings.NewReader("abcd"), 0)
	require.NoError(t, err)
	require.Equal(t, "data:application/pdf;base64,YWJjZA==", encoded)
}

func TestDownload(t *testing.T) {
	stored := Encode("application/pdf", []byte("pdf"))

	blob, err := Download(stored, "offerta.pdf", "preventivo.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("pdf"), blob.Data)
	require.Equal(t, PDFContentType, blob.ContentType)
	require.Equal(t, "offerta.pdf", blob.FileName)

	blob, err = Download(stored, "", "contratto.pdf")
	require.NoError(t, err)
	require.Equal(t, "contratto.pdf", blob.FileName)

	_, err = Download("garbage", "x.pdf", "contratto.pdf")
	require.ErrorIs(t, err, ErrMalformed)
}

package imager

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/kataras/psd-extractor/pkg/errors"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	pngColorTypeRGBA = 6
	pngBitDepth      = 8
)

// Fixed colour metadata, scaled by 100000 as PNG stores it.
const (
	// gamma 1/2.2
	pngGamma = 45455
)

// sRGB primaries and D65 white point: white, red, green, blue as x,y pairs.
var pngChromaticities = [8]uint32{
	31270, 32900,
	64000, 33000,
	30000, 60000,
	15000, 6000,
}

// WritePNG writes an 8-bit RGBA PNG to path, creating missing parent
// directories. The file carries a gAMA chunk of 1/2.2 and a cHRM chunk with
// the sRGB primaries.
//
// A buffer that does not hold width*height RGBA pixels fails with
// ErrCodeEncode before anything touches the disk; directory and file errors
// fail with ErrCodeIO.
func WritePNG(path string, width, height int, pix []byte) error {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return errors.New(errors.ErrCodeEncode, "%dx%d image needs %d bytes, got %d", width, height, width*height*4, len(pix))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create directory for %q", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %q", path)
	}

	w := bufio.NewWriter(f)
	if err := EncodePNG(w, width, height, pix); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %q", path)
	}
	return nil
}

// EncodePNG writes the PNG stream for pix to w. See WritePNG.
func EncodePNG(w io.Writer, width, height int, pix []byte) error {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return errors.New(errors.ErrCodeEncode, "%dx%d image needs %d bytes, got %d", width, height, width*height*4, len(pix))
	}

	idat, err := compressRows(width, height, pix)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "compress image data")
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(height))
	ihdr[8] = pngBitDepth
	ihdr[9] = pngColorTypeRGBA
	// compression, filter and interlace methods stay 0

	gama := make([]byte, 4)
	binary.BigEndian.PutUint32(gama, pngGamma)

	chrm := make([]byte, 32)
	for i, v := range pngChromaticities {
		binary.BigEndian.PutUint32(chrm[i*4:], v)
	}

	if _, err := w.Write(pngSignature); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write png signature")
	}
	// gAMA and cHRM must come before IDAT.
	for _, c := range []struct {
		typ  string
		data []byte
	}{
		{"IHDR", ihdr},
		{"gAMA", gama},
		{"cHRM", chrm},
		{"IDAT", idat},
		{"IEND", nil},
	} {
		if err := writeChunk(w, c.typ, c.data); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s chunk", c.typ)
		}
	}
	return nil
}

// compressRows zlib-compresses the scanlines, each prefixed with filter
// type 0 (none).
func compressRows(width, height int, pix []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)

	stride := width * 4
	filter := []byte{0}
	for y := 0; y < height; y++ {
		if _, err := zw.Write(filter); err != nil {
			return nil, err
		}
		if _, err := zw.Write(pix[y*stride : (y+1)*stride]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeChunk(w io.Writer, typ string, data []byte) error {
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:], uint32(len(data)))
	copy(header[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(data)

	footer := make([]byte, 4)
	binary.BigEndian.PutUint32(footer, crc.Sum32())

	for _, b := range [][]byte{header, data, footer} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// Package pngcodec packs arbitrary bytes into the pixels of a PNG image and
// back. Each pixel carries three bytes in its RGB channels, shifted by 128.
// The payload is prefixed with its length as a 4 byte big-endian integer,
// and the whole frame may be gzip compressed before packing.
package pngcodec

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

const (
	headerSize    = 4
	channelOffset = 128
)

var (
	// ErrImageTooSmall is returned when the requested dimensions cannot hold
	// the framed payload.
	ErrImageTooSmall = errors.New("pngcodec: need to increase image size")
	// ErrInvalidSize is returned for non-positive dimensions.
	ErrInvalidSize = errors.New("pngcodec: invalid image size")
	// ErrCorrupt is returned when decoded pixels do not hold a frame.
	ErrCorrupt = errors.New("pngcodec: can't deserialize bytes")
	// ErrInvalidImage is returned when the input is not a PNG.
	ErrInvalidImage = errors.New("pngcodec: can't read image")
)

// Options controls image sizing and compression. A nil Width and Height
// produce the smallest square; a single nil side is derived from the other.
type Options struct {
	Width  *int
	Height *int
	GZIP   bool
}

// Encode returns the PNG encoding of data.
func Encode(data []byte, opts Options) ([]byte, error) {
	frame, err := serialize(data, opts.GZIP)
	if err != nil {
		return nil, err
	}

	width, height, err := dimensions(len(frame), opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	if len(frame) > width*height*3 {
		return nil, fmt.Errorf("%w: %d bytes do not fit %dx%d", ErrImageTooSmall, len(frame), width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	index := 0
	for y := 0; y < height && index < len(frame); y++ {
		for x := 0; x < width && index < len(frame); x++ {
			var rgb [3]uint8
			for c := range rgb {
				rgb[c] = channelOffset
				if index < len(frame) {
					rgb[c] = frame[index] + channelOffset
					index++
				}
			}
			img.SetNRGBA(x, y, color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff})
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("pngcodec: can't write image: %w", err)
	}
	return out.Bytes(), nil
}

// Decode extracts the payload packed into a PNG image by Encode. useGZIP
// must match the flag used when encoding.
func Decode(pngBytes []byte, useGZIP bool) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	raw := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			raw = append(raw, px.R-channelOffset, px.G-channelOffset, px.B-channelOffset)
		}
	}

	if useGZIP {
		raw, err = gunzip(raw)
		if err != nil {
			return nil, err
		}
	}
	return deserialize(raw)
}

func dimensions(frameLen int, width, height *int) (int, int, error) {
	pixels := float64(frameLen) / 3
	switch {
	case width == nil && height == nil:
		size := int(math.Ceil(math.Sqrt(pixels)))
		return size, size, nil
	case width == nil:
		if *height <= 0 {
			return 0, 0, fmt.Errorf("%w: height %d", ErrInvalidSize, *height)
		}
		return int(math.Ceil(pixels / float64(*height))), *height, nil
	case height == nil:
		if *width <= 0 {
			return 0, 0, fmt.Errorf("%w: width %d", ErrInvalidSize, *width)
		}
		return *width, int(math.Ceil(pixels / float64(*width))), nil
	}
	if *width <= 0 || *height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, *width, *height)
	}
	return *width, *height, nil
}

func serialize(data []byte, useGZIP bool) ([]byte, error) {
	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	if !useGZIP {
		frame := make([]byte, 0, headerSize+len(data))
		frame = append(frame, header[:]...)
		return append(frame, data...), nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(header[:]); err != nil {
		return nil, fmt.Errorf("pngcodec: can't serialize image: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("pngcodec: can't serialize image: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pngcodec: can't serialize image: %w", err)
	}
	return buf.Bytes(), nil
}

// gunzip reads a single gzip member; the padding pixels after it are
// ignored.
func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	zr.Multistream(false)
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

func deserialize(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(frame))
	}
	length := int(binary.BigEndian.Uint32(frame[:headerSize]))
	length = min(length, len(frame)-headerSize)
	out := make([]byte, length)
	copy(out, frame[headerSize:headerSize+length])
	return out, nil
}

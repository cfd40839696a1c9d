// Package compress wraps the record stream in a zlib container.
//
// The zlib Adler-32 trailer lets decoding reject corrupted payloads that
// would otherwise inflate to a plausible-looking record stream.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/wippyai/chartclip/errors"
)

// DefaultMaxDecompressedSize caps inflated output. A record is at most 22
// bytes, so this admits selections far beyond any real chart.
const DefaultMaxDecompressedSize = 4 << 20

// level is not part of the wire contract; any zlib stream decodes.
const level = zlib.BestCompression

// Compress deflates data into a zlib stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInternal, err, "create zlib writer")
	}
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInternal, err, "compress record stream")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInternal, err, "flush zlib stream")
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream, producing at most maxSize bytes.
// maxSize <= 0 selects DefaultMaxDecompressedSize. The whole of data must
// be a single zlib stream.
func Decompress(data []byte, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDecompressedSize
	}

	// bytes.Reader is an io.ByteReader, so inflate never reads past the
	// end of the stream and src.Len() reports true trailing bytes.
	src := bytes.NewReader(data)
	zr, err := zlib.NewReader(src)
	if err != nil {
		return nil, errors.Decompression("invalid zlib header", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(maxSize)+1))
	if err != nil {
		return nil, errors.Decompression("corrupt compressed stream", err)
	}
	if len(out) > maxSize {
		return nil, errors.DecompressionBomb(maxSize)
	}
	if src.Len() > 0 {
		return nil, errors.Decompression(fmt.Sprintf("%d byte(s) after end of compressed stream", src.Len()), nil)
	}
	return out, nil
}

package screenshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// maxWidth bounds stored screenshots; anything wider is scaled down before
// encoding so the base64 column stays a reasonable size.
const maxWidth = 1280

// Processed is a normalized screenshot ready for persistence. SHA256 is the
// fingerprint of the normalized JPEG bytes and serves as the duplicate
// detection key, so the same source image always yields the same fingerprint.
type Processed struct {
	Base64 string
	SHA256 string
	Size   int
}

// Process decodes an uploaded image, normalizes it to a bounded JPEG and
// returns the base64 payload plus its fingerprint. Undecodable input is an
// error surfaced at the validation boundary.
func Process(r io.Reader) (*Processed, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())

	return &Processed{
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		SHA256: hex.EncodeToString(sum[:]),
		Size:   buf.Len(),
	}, nil
}

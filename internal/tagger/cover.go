package tagger

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png" // registers the PNG decoder for image.Decode
	"io"
	"net/http"

	"github.com/nfnt/resize"
)

// minCoverSourceDimension is the smallest source width or height accepted.
const minCoverSourceDimension = 300

// maxCoverOutputDimension bounds both dimensions of the re-encoded cover.
const maxCoverOutputDimension = 1000

// coverJPEGQuality is the quality used when re-encoding the downscaled cover.
const coverJPEGQuality = 90

// ErrCoverTooSmall indicates the source image falls below the minimum accepted dimension.
var ErrCoverTooSmall = errors.New("cover art source image is smaller than the minimum accepted dimension")

// FetchAndDownscaleCover downloads the image at url, rejects it if either
// source dimension is below minCoverSourceDimension, and returns it
// re-encoded as JPEG with both dimensions capped at maxCoverOutputDimension.
func FetchAndDownscaleCover(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("cover art request returned status " + resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return DownscaleCover(data)
}

// DownscaleCover re-encodes raw image bytes to a JPEG capped at
// maxCoverOutputDimension per side, rejecting sources smaller than
// minCoverSourceDimension on either side.
func DownscaleCover(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() < minCoverSourceDimension || bounds.Dy() < minCoverSourceDimension {
		return nil, ErrCoverTooSmall
	}

	targetWidth, targetHeight := scaledDimensions(bounds.Dx(), bounds.Dy())

	resized := resize.Resize(uint(targetWidth), uint(targetHeight), img, resize.Lanczos3) //nolint:gosec // dimensions are small and positive.

	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: coverJPEGQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func scaledDimensions(width, height int) (int, int) {
	if width <= maxCoverOutputDimension && height <= maxCoverOutputDimension {
		return width, height
	}

	if width >= height {
		return maxCoverOutputDimension, height * maxCoverOutputDimension / width
	}

	return width * maxCoverOutputDimension / height, maxCoverOutputDimension
}

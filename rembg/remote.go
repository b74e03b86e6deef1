package rembg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"log/slog"
	"strings"
	"time"

	nhttp "github.com/chaos-io/pixelforge/util/http"
)

const DefaultModel = "Xenova/segformer-b0-finetuned-ade-512-512"

type RemoteConfig struct {
	// Endpoint receives the JPEG payload as the request body.
	Endpoint string
	Model    string
	Token    string
	Timeout  time.Duration
	// InvertMask flips masks from models that mark foreground with 1.
	InvertMask bool
}

// RemoteSegmenter calls an image-segmentation inference endpoint that
// answers with [{"label", "score", "mask": base64 PNG}].
type RemoteSegmenter struct {
	cfg RemoteConfig
	cli nhttp.IClient
}

func NewRemoteSegmenter(cfg RemoteConfig, cli nhttp.IClient) *RemoteSegmenter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cli == nil {
		cli = nhttp.NewHTTPClientWithTimeout(cfg.Timeout)
	}
	return &RemoteSegmenter{cfg: cfg, cli: cli}
}

// RemoteLoader builds a RemoteSegmenter for use with NewEngine.
func RemoteLoader(cfg RemoteConfig, cli nhttp.IClient) Loader {
	return func(ctx context.Context) (Segmenter, error) {
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("segmentation endpoint is not configured")
		}
		return NewRemoteSegmenter(cfg, cli), nil
	}
}

type segmentResp struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Mask  string  `json:"mask"`
}

func (r *RemoteSegmenter) Segment(ctx context.Context, payload []byte) ([]Segment, error) {
	header := map[string]string{"Content-Type": "image/jpeg"}
	if r.cfg.Token != "" {
		header["Authorization"] = "Bearer " + r.cfg.Token
	}

	var resp []segmentResp
	reqParam := &nhttp.RequestParam{
		RequestURI: r.requestURI(),
		Method:     "POST",
		Header:     header,
		Body:       payload,
		Response:   &resp,
	}
	if err := r.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	slog.Debug("get the segmentation response", "model", r.cfg.Model, "segments", len(resp))

	segments := make([]Segment, 0, len(resp))
	for i, s := range resp {
		seg := Segment{Label: s.Label, Score: s.Score}
		if s.Mask != "" {
			mask, err := decodeMask(s.Mask, r.cfg.InvertMask)
			if err != nil {
				return nil, fmt.Errorf("%w: segment %d: %v", ErrInvalidSegmentationResult, i, err)
			}
			seg.Mask = mask
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// requestURI 支持 {model} 占位符，例如 https://host/models/{model}
func (r *RemoteSegmenter) requestURI() string {
	return strings.ReplaceAll(r.cfg.Endpoint, "{model}", r.cfg.Model)
}

// decodeMask 把 base64 编码的灰度 PNG 转成 [0,1] 浮点 mask
func decodeMask(encoded string, invert bool) (*Mask, error) {
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mask image: %w", err)
	}

	b := img.Bounds()
	mask := &Mask{Width: b.Dx(), Height: b.Dy(), Data: make([]float32, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			v := float32(g.Y) / 0xffff
			if invert {
				v = 1 - v
			}
			mask.Data[(y-b.Min.Y)*mask.Width+(x-b.Min.X)] = v
		}
	}
	return mask, nil
}
